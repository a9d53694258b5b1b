package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/pkg/config"
	"github.com/capturekit/capture-mcp-server/pkg/docs"
)

func testConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()
	return &config.Config{
		API:       config.APIConfig{Endpoint: endpoint, APIKey: "test-key", Timeout: 5},
		Output:    config.OutputConfig{BaseDir: t.TempDir()},
		Capture:   config.CaptureConfig{Enabled: true},
		Browser:   config.BrowserConfig{Enabled: true},
		Prompts:   config.PromptsConfig{Enabled: true},
		Resources: config.ResourcesConfig{Enabled: true},
	}
}

func TestNewRegistersEnabledModules(t *testing.T) {
	s, err := New(testConfig(t, "https://api.example.com"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 6, s.ToolCount())

	info := s.Collector().CollectToolsInfo()
	assert.Equal(t, []string{"capture", "browser"}, info.Modules)
	assert.Len(t, info.Prompts, 4)
	assert.Len(t, info.Resources, 3)
}

func TestNewHonoursDisabledModulesAndPrefix(t *testing.T) {
	cfg := testConfig(t, "https://api.example.com")
	cfg.Browser.Enabled = false
	cfg.Prompts.Enabled = false
	cfg.Resources.Enabled = false
	cfg.Capture.Tools.Prefix = "ck_"

	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 4, s.ToolCount())

	var names []string
	for _, tool := range s.Collector().CollectToolsInfo().Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"ck_generate-og-image", "ck_generate-pdf", "ck_record-video", "ck_take-screenshot"}, names)
}

func TestCallToolThroughMCP(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"selector #missing not found"}`))
	}))
	defer backend.Close()

	s, err := New(testConfig(t, backend.URL), zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	c, err := mcpclient.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	var initReq mcp.InitializeRequest
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}
	initResult, err := c.Initialize(ctx, initReq)
	require.NoError(t, err)
	assert.Equal(t, "capture-mcp-server", initResult.ServerInfo.Name)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 6)

	var callReq mcp.CallToolRequest
	callReq.Params.Name = "take-screenshot"
	callReq.Params.Arguments = map[string]any{"url": "https://example.com", "selector": "#missing"}
	result, err := c.CallTool(ctx, callReq)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "selector #missing not found")
}

func TestHandlerServesDocsAndHealth(t *testing.T) {
	cfg := testConfig(t, "https://api.example.com")
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + DefaultDocsPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info docs.ToolsInfoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, 6, info.TotalTools)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	// metrics endpoint is off unless telemetry.metrics is set
	missing, err := http.Get(srv.URL + DefaultMetricsPath)
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, zap.NewNop())
	assert.Error(t, err)
}
