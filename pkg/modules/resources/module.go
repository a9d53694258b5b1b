package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/pkg/client"
	"github.com/capturekit/capture-mcp-server/pkg/docs"
	"github.com/capturekit/capture-mcp-server/pkg/modules/browser"
	"github.com/capturekit/capture-mcp-server/pkg/modules/capture"
)

const moduleName = "resources"

// Resource URIs
const (
	URIUsage   = "capture://usage"
	URITools   = "capture://tools"
	URIFormats = "capture://formats"
)

// EndpointUsage reports the account quota
const EndpointUsage = "/v1/usage"

// Module exposes read-only MCP resources
type Module struct {
	logger    *zap.Logger
	client    *client.Client
	collector *docs.Collector
}

// New creates a new resources module
func New(apiClient *client.Client, collector *docs.Collector, logger *zap.Logger) (*Module, error) {
	if apiClient == nil {
		return nil, fmt.Errorf("capture API client is required")
	}
	if collector == nil {
		return nil, fmt.Errorf("docs collector is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Module{
		logger:    logger.Named(moduleName),
		client:    apiClient,
		collector: collector,
	}, nil
}

// GetResources returns all resources
func (m *Module) GetResources() []server.ServerResource {
	return []server.ServerResource{
		{
			Resource: mcp.NewResource(URIUsage, "API usage",
				mcp.WithResourceDescription("Current capture API quota and usage for the configured key"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: m.handleUsage,
		},
		{
			Resource: mcp.NewResource(URITools, "Tool catalog",
				mcp.WithResourceDescription("Every registered tool, prompt and resource with its parameters"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: m.handleTools,
		},
		{
			Resource: mcp.NewResource(URIFormats, "Formats reference",
				mcp.WithResourceDescription("Supported output formats, page sizes, device presets and automation actions"),
				mcp.WithMIMEType("text/markdown"),
			),
			Handler: m.handleFormats,
		},
	}
}

func (m *Module) handleUsage(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var usage json.RawMessage
	if err := m.client.Get(ctx, EndpointUsage, &usage); err != nil {
		m.logger.Error("Failed to fetch usage", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch usage: %w", err)
	}

	text, err := indent(usage)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: URIUsage, MIMEType: "application/json", Text: text},
	}, nil
}

func (m *Module) handleTools(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(m.collector.CollectToolsInfo(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: URITools, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func (m *Module) handleFormats(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: URIFormats, MIMEType: "text/markdown", Text: formatsReference()},
	}, nil
}

func indent(raw json.RawMessage) (string, error) {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode usage: %w", err)
	}
	return string(data), nil
}

func formatsReference() string {
	var b strings.Builder
	section := func(title string, values []string) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, v := range values {
			fmt.Fprintf(&b, "- `%s`\n", v)
		}
		b.WriteString("\n")
	}

	b.WriteString("# Capture formats\n\n")
	section("Image formats", capture.ImageFormats)
	section("Video formats", capture.VideoFormats)
	section("PDF page sizes", capture.PageSizes)
	section("Device presets", capture.DevicePresets)
	section("Scroll speeds", capture.ScrollSpeeds)
	section("Automation actions", browser.ActionTypes)
	return strings.TrimRight(b.String(), "\n") + "\n"
}
