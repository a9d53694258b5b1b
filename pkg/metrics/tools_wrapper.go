package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// WrapToolHandler wraps a tool handler with metrics collection.
// A result flagged IsError counts as a failed call just like a returned error.
func WrapToolHandler(handler server.ToolHandlerFunc, toolName, moduleName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		RecordModuleRequest(moduleName)

		result, err := handler(ctx, request)

		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = errors.New(resultText(result))
		}

		RecordMCPToolCall(toolName, moduleName, time.Since(start), failure == nil)
		if failure != nil {
			RecordMCPToolError(toolName, moduleName, ClassifyError(failure))
		}

		return result, err
	}
}

// ClassifyError maps an error message onto a small set of metric labels
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "outside the working directory"):
		return "unsafe_path"
	case strings.Contains(errStr, "required"), strings.Contains(errStr, "invalid"), strings.Contains(errStr, "must be"):
		return "invalid_input"
	case strings.Contains(errStr, "not found"):
		return "not_found"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline"):
		return "timeout"
	case strings.Contains(errStr, "unauthorized"), strings.Contains(errStr, "forbidden"), strings.Contains(errStr, "api key"):
		return "auth_error"
	case strings.Contains(errStr, "connection"), strings.Contains(errStr, "network"):
		return "network_error"
	case strings.Contains(errStr, "capture api"):
		return "backend_error"
	}
	return "unknown"
}

func resultText(result *mcp.CallToolResult) string {
	var b strings.Builder
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			b.WriteString(text.Text)
		}
	}
	return b.String()
}

// RecordMCPToolCall records an MCP tool call
func RecordMCPToolCall(toolName, module string, duration time.Duration, success bool) {
	m := Get()
	if m == nil {
		return
	}

	status := "failure"
	if success {
		status = "success"
	}

	m.MCPToolCallsTotal.WithLabelValues(toolName, module, status).Inc()
	m.MCPToolCallDuration.WithLabelValues(toolName, module).Observe(duration.Seconds())
}

// RecordMCPToolError records an MCP tool error
func RecordMCPToolError(toolName, module, errorType string) {
	if m := Get(); m != nil {
		m.MCPToolErrorsTotal.WithLabelValues(toolName, module, errorType).Inc()
	}
}

// RecordModuleRequest records a module request
func RecordModuleRequest(moduleName string) {
	if m := Get(); m != nil {
		m.ModuleRequestsTotal.WithLabelValues(moduleName).Inc()
	}
}
