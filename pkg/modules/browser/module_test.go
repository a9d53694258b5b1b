package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/pkg/client"
	"github.com/capturekit/capture-mcp-server/pkg/output"
)

type fakeBackend struct {
	hits    int32
	respond string

	mu   sync.Mutex
	path string
	body map[string]any
}

func (b *fakeBackend) last() (string, map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path, b.body
}

func newTestModule(t *testing.T, backend *fakeBackend) (*Module, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&backend.hits, 1)
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		backend.mu.Lock()
		backend.path = r.URL.Path
		backend.body = body
		backend.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(backend.respond))
	}))
	t.Cleanup(srv.Close)

	apiClient, err := client.New(&client.Config{Endpoint: srv.URL, APIKey: "test-key"}, zap.NewNop())
	require.NoError(t, err)

	writer, err := output.NewWriter(t.TempDir())
	require.NoError(t, err)

	m, err := New(&Config{}, apiClient, writer, zap.NewNop())
	require.NoError(t, err)
	return m, writer.BaseDir
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "first content should be text, got %T", result.Content[0])
	return text.Text
}

func TestValidateActions(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
		wantErr string
	}{
		{name: "empty", actions: nil, wantErr: "non-empty"},
		{name: "unknown type", actions: []Action{{Type: "teleport"}}, wantErr: "invalid action type"},
		{name: "missing selector", actions: []Action{{Type: "click"}}, wantErr: "selector is required"},
		{name: "missing value", actions: []Action{{Type: "fill", Selector: "#email"}}, wantErr: "value is required"},
		{name: "bad navigate url", actions: []Action{{Type: "navigate", Value: "javascript:alert(1)"}}, wantErr: "must start with http"},
		{name: "timeout too long", actions: []Action{{Type: "wait", Timeout: 120000}}, wantErr: "timeout"},
		{name: "valid", actions: []Action{{Type: " Click ", Selector: "#go"}, {Type: "wait", Timeout: 500}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateActions(tt.actions)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "click", tt.actions[0].Type)
		})
	}
}

func TestSequenceRejectsInvalidInputWithoutBackendCall(t *testing.T) {
	backend := &fakeBackend{respond: `{"success":true,"steps":[]}`}
	m, _ := newTestModule(t, backend)

	cases := []map[string]any{
		{"actions": []any{map[string]any{"type": "wait"}}},
		{"url": "https://example.com"},
		{"url": "https://example.com", "actions": []any{}},
		{"url": "https://example.com", "actions": "not json"},
		{"url": "https://example.com", "actions": []any{map[string]any{"type": "click"}}},
		{"url": "https://example.com", "actions": []any{map[string]any{"type": "wait"}}, "output_path": "../shot.png"},
	}
	for _, args := range cases {
		result, err := m.handleSequence(context.Background(), callRequest(args))
		require.NoError(t, err)
		assert.True(t, result.IsError, "args %v", args)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.hits))
}

func TestSequenceSuccessWithScreenshot(t *testing.T) {
	shot := base64.StdEncoding.EncodeToString([]byte("\x89PNG shot"))
	backend := &fakeBackend{respond: `{"success":true,"took":812,"finalUrl":"https://example.com/done",` +
		`"steps":[{"index":0,"action":"fill","selector":"#q","success":true,"took":35},` +
		`{"index":1,"action":"click","selector":"#go","success":true,"took":120}],` +
		`"screenshot":"` + shot + `","extracted":{"title":"Done"}}`}
	m, _ := newTestModule(t, backend)

	result, err := m.handleSequence(context.Background(), callRequest(map[string]any{
		"url": "https://example.com",
		"actions": []any{
			map[string]any{"type": "fill", "selector": "#q", "value": "capture"},
			map[string]any{"type": "click", "selector": "#go"},
		},
		"screenshot": true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, textOf(t, result))

	text := textOf(t, result)
	assert.Contains(t, text, "succeeded")
	assert.Contains(t, text, "Final URL: https://example.com/done")
	assert.Contains(t, text, "Took: 812 ms")
	assert.Contains(t, text, "1. fill #q: ok (35 ms)")
	assert.Contains(t, text, "2. click #go: ok (120 ms)")
	assert.Contains(t, text, `"title": "Done"`)

	require.Len(t, result.Content, 2)
	image, ok := result.Content[1].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, shot, image.Data)
	assert.Equal(t, "image/png", image.MIMEType)

	path, body := backend.last()
	assert.Equal(t, EndpointAutomate, path)
	assert.Equal(t, true, body["screenshot"])
	actions, ok := body["actions"].([]any)
	require.True(t, ok)
	assert.Len(t, actions, 2)
}

func TestSequenceFailureCarriesSteps(t *testing.T) {
	backend := &fakeBackend{respond: `{"success":false,"took":3000,` +
		`"steps":[{"action":"click","selector":"#missing","success":false,"error":"element not found"}]}`}
	m, _ := newTestModule(t, backend)

	result, err := m.handleSequence(context.Background(), callRequest(map[string]any{
		"url":     "https://example.com",
		"actions": `[{"type":"click","selector":"#missing"}]`,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text := textOf(t, result)
	assert.Contains(t, text, "failed")
	assert.Contains(t, text, "1. click #missing: failed: element not found")
}

func TestSequenceAcceptsScalarValues(t *testing.T) {
	backend := &fakeBackend{respond: `{"success":true,"steps":[]}`}
	m, _ := newTestModule(t, backend)

	result, err := m.handleSequence(context.Background(), callRequest(map[string]any{
		"url": "https://example.com",
		"actions": []any{
			map[string]any{"type": "scroll", "value": float64(500)},
			map[string]any{"type": "select", "selector": "#opt-in", "value": true},
		},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, textOf(t, result))

	_, body := backend.last()
	actions, ok := body["actions"].([]any)
	require.True(t, ok)
	require.Len(t, actions, 2)
	assert.Equal(t, "500", actions[0].(map[string]any)["value"])
	assert.Equal(t, "true", actions[1].(map[string]any)["value"])
}

func TestActionValueRejectsObjects(t *testing.T) {
	var actions []Action
	err := json.Unmarshal([]byte(`[{"type":"fill","selector":"#q","value":{"text":"x"}}]`), &actions)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`[{"type":"fill","selector":"#q","value":null}]`), &actions))
	assert.Equal(t, ActionValue(""), actions[0].Value)
}

func TestSummarizeNumbersStepsFromBackendIndex(t *testing.T) {
	second, fourth := 1, 3
	text := summarize("https://example.com", &SequenceResult{
		Success: false,
		Steps: []StepResult{
			{Index: &second, Action: "click", Selector: "#next", Success: true},
			{Index: &fourth, Action: "fill", Selector: "#q", Success: false, Error: "detached"},
			{Action: "wait", Success: true},
		},
	})

	assert.Contains(t, text, "  2. click #next: ok")
	assert.Contains(t, text, "  4. fill #q: failed: detached")
	assert.Contains(t, text, "  3. wait: ok")
	assert.NotContains(t, text, "  1. ")
}

func TestSequenceSavesScreenshot(t *testing.T) {
	shot := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	backend := &fakeBackend{respond: `{"success":true,"steps":[],"screenshot":"data:image/png;base64,` + shot + `"}`}
	m, base := newTestModule(t, backend)

	result, err := m.handleSequence(context.Background(), callRequest(map[string]any{
		"url":         "https://example.com",
		"actions":     []any{map[string]any{"type": "wait", "timeout": float64(100)}},
		"output_path": "shots/final.png",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, textOf(t, result))
	assert.Contains(t, textOf(t, result), "Saved to: "+filepath.Join(base, "shots", "final.png"))

	data, err := os.ReadFile(filepath.Join(base, "shots", "final.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	_, body := backend.last()
	assert.Equal(t, true, body["screenshot"])
}

func TestInspectReturnsIndentedJSON(t *testing.T) {
	backend := &fakeBackend{respond: `{"title":"Example","links":[{"href":"https://example.com/a"}]}`}
	m, _ := newTestModule(t, backend)

	result, err := m.handleInspect(context.Background(), callRequest(map[string]any{
		"url":           "https://example.com",
		"include_links": true,
		"include_meta":  false,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, textOf(t, result))
	assert.Contains(t, textOf(t, result), "\n  \"title\": \"Example\"")

	path, body := backend.last()
	assert.Equal(t, EndpointInspect, path)
	assert.Equal(t, true, body["includeLinks"])
	assert.Equal(t, false, body["includeMeta"])
	assert.NotContains(t, body, "includeHeadings")
}

func TestInspectRequiresURL(t *testing.T) {
	backend := &fakeBackend{respond: `{}`}
	m, _ := newTestModule(t, backend)

	result, err := m.handleInspect(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.hits))
}

func TestBuildToolsHonoursConfig(t *testing.T) {
	backend := &fakeBackend{respond: `{}`}
	m, _ := newTestModule(t, backend)
	m.config.Tools.Prefix = "ck-"

	cfg := GetDefaultToolsConfig()
	cfg.Inspect.Enabled = false

	tools := m.BuildTools(cfg)
	require.Len(t, tools, 1)
	assert.Equal(t, "ck-run-browser-sequence", tools[0].Tool.Name)
}
