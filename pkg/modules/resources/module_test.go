package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/mcptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/pkg/client"
	"github.com/capturekit/capture-mcp-server/pkg/docs"
	"github.com/capturekit/capture-mcp-server/pkg/modules/browser"
	"github.com/capturekit/capture-mcp-server/pkg/output"
)

func newTestModule(t *testing.T, handler http.HandlerFunc) *Module {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	apiClient, err := client.New(&client.Config{Endpoint: srv.URL, APIKey: "test-key"}, zap.NewNop())
	require.NoError(t, err)

	m, err := New(apiClient, docs.NewCollector(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return m
}

func readRequest(uri string) mcp.ReadResourceRequest {
	var req mcp.ReadResourceRequest
	req.Params.URI = uri
	return req
}

func textContents(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "got %T", contents[0])
	return text
}

func TestUsageRelaysBackend(t *testing.T) {
	m := newTestModule(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EndpointUsage, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"plan":"pro","used":42,"limit":1000}`))
	})

	contents, err := m.handleUsage(context.Background(), readRequest(URIUsage))
	require.NoError(t, err)

	text := textContents(t, contents)
	assert.Equal(t, "application/json", text.MIMEType)
	assert.JSONEq(t, `{"plan":"pro","used":42,"limit":1000}`, text.Text)
	assert.Contains(t, text.Text, "\n  \"plan\"")
}

func TestUsageBackendError(t *testing.T) {
	m := newTestModule(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid API key"}`))
	})

	_, err := m.handleUsage(context.Background(), readRequest(URIUsage))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API key")
}

func TestToolsCatalogReflectsCollector(t *testing.T) {
	m := newTestModule(t, func(w http.ResponseWriter, r *http.Request) {})

	b, err := browser.New(&browser.Config{}, m.client, mustWriter(t), zap.NewNop())
	require.NoError(t, err)
	m.collector.AddTools("browser", b.GetTools())

	contents, err := m.handleTools(context.Background(), readRequest(URITools))
	require.NoError(t, err)

	var catalog docs.ToolsInfoResponse
	require.NoError(t, json.Unmarshal([]byte(textContents(t, contents).Text), &catalog))
	assert.Equal(t, "capture-mcp-server", catalog.Service)
	assert.Equal(t, 2, catalog.TotalTools)
	assert.Equal(t, []string{"browser"}, catalog.Modules)
	assert.Equal(t, "run-browser-sequence", catalog.Tools[0].Name)
}

func TestFormatsReferenceOverMCP(t *testing.T) {
	m := newTestModule(t, func(w http.ResponseWriter, r *http.Request) {})

	srv := mcptest.NewUnstartedServer(t)
	defer srv.Close()
	srv.AddResources(m.GetResources()...)
	require.NoError(t, srv.Start(context.Background()))

	result, err := srv.Client().ReadResource(context.Background(), readRequest(URIFormats))
	require.NoError(t, err)

	text := textContents(t, result.Contents)
	assert.Equal(t, "text/markdown", text.MIMEType)
	assert.Contains(t, text.Text, "## PDF page sizes")
	assert.Contains(t, text.Text, "- `Letter`")
	assert.Contains(t, text.Text, "- `wait_for_selector`")
}

func mustWriter(t *testing.T) *output.Writer {
	t.Helper()
	w, err := output.NewWriter(t.TempDir())
	require.NoError(t, err)
	return w
}
