package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassifyError(t *testing.T) {
	tests := map[string]string{
		"output path resolves outside the working directory: ../x": "unsafe_path",
		"one of url, html or markdown is required":                 "invalid_input",
		"capture API error (404): page not found":                  "not_found",
		"context deadline exceeded":                                "timeout",
		"capture API error (401): Unauthorized":                    "auth_error",
		"failed to execute request: connection refused":            "network_error",
		"capture API error (500): render crashed":                  "backend_error",
		"something odd":                                            "unknown",
	}
	for msg, want := range tests {
		assert.Equal(t, want, ClassifyError(errors.New(msg)), msg)
	}
	assert.Empty(t, ClassifyError(nil))
}

func TestWrapToolHandlerCountsErrorResults(t *testing.T) {
	m := Init(zap.NewNop())
	require.NotNil(t, m)

	failing := WrapToolHandler(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("url is required"), nil
	}, "wrapped-failing", "test")
	ok := WrapToolHandler(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("done"), nil
	}, "wrapped-ok", "test")

	result, err := failing(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	_, err = ok(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MCPToolCallsTotal.WithLabelValues("wrapped-failing", "test", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MCPToolErrorsTotal.WithLabelValues("wrapped-failing", "test", "invalid_input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MCPToolCallsTotal.WithLabelValues("wrapped-ok", "test", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ModuleRequestsTotal.WithLabelValues("test")))
}

func TestHTTPMetricsMiddlewareRecordsStatus(t *testing.T) {
	m := Init(zap.NewNop())

	handler := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418")))
}
