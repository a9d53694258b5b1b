package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/pkg/modules/common"
)

const maxActionTimeout = 60000

// BrowserToolsConfig defines configuration for all tools
type BrowserToolsConfig struct {
	Sequence common.ToolConfig
	Inspect  common.ToolConfig
}

// GetDefaultToolsConfig returns default tool configuration
func GetDefaultToolsConfig() BrowserToolsConfig {
	return BrowserToolsConfig{
		Sequence: common.ToolConfig{
			Name:        "run-browser-sequence",
			Description: "Open a page and run a sequence of browser actions (click, fill, wait, extract...). Returns per-step results and an optional final screenshot.",
			Enabled:     true,
		},
		Inspect: common.ToolConfig{
			Name:        "inspect-page",
			Description: "Load a page and return its structure as JSON: title, meta tags, headings and links.",
			Enabled:     true,
		},
	}
}

// Tool definition builder methods
func (m *Module) buildSequenceToolDefinition(config common.ToolConfig) mcp.Tool {
	return mcp.NewTool(m.BuildToolName(config.Name),
		mcp.WithDescription(config.Description),
		mcp.WithString("url", mcp.Required(), mcp.Description("Absolute http(s) URL to open before the first action")),
		mcp.WithArray("actions",
			mcp.Required(),
			mcp.Description("Ordered browser actions"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{
						"type":        "string",
						"enum":        ActionTypes,
						"description": "Action to perform",
					},
					"selector": map[string]any{
						"type":        "string",
						"description": "CSS selector the action targets",
					},
					"value": map[string]any{
						"type":        []string{"string", "number", "boolean"},
						"description": "Text to type, option to select, key to press, pixels to scroll, URL to navigate to or script to evaluate",
					},
					"timeout": map[string]any{
						"type":        "number",
						"description": fmt.Sprintf("Milliseconds to wait for the step (max %d)", maxActionTimeout),
					},
				},
				"required": []string{"type"},
			}),
		),
		mcp.WithBoolean("screenshot", mcp.Description("Take a screenshot after the last action")),
		mcp.WithNumber("width", mcp.Description("Viewport width in pixels (default 1280)")),
		mcp.WithNumber("height", mcp.Description("Viewport height in pixels (default 800)")),
		mcp.WithString("output_path", mcp.Description("Optional file path, inside the server's working directory, to save the final screenshot to")),
	)
}

func (m *Module) buildInspectToolDefinition(config common.ToolConfig) mcp.Tool {
	return mcp.NewTool(m.BuildToolName(config.Name),
		mcp.WithDescription(config.Description),
		mcp.WithString("url", mcp.Required(), mcp.Description("Absolute http(s) URL of the page to inspect")),
		mcp.WithBoolean("include_links", mcp.Description("Include the list of links")),
		mcp.WithBoolean("include_meta", mcp.Description("Include meta and Open Graph tags")),
		mcp.WithBoolean("include_headings", mcp.Description("Include the heading outline")),
		mcp.WithString("wait_for_selector", mcp.Description("CSS selector to wait for before inspecting")),
	)
}

// Tool handler methods
func (m *Module) handleSequence(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := common.RequireURL(request)
	if err != nil {
		return common.Failure(err), nil
	}

	var actions []Action
	if _, err := common.DecodeArgument(request, "actions", &actions); err != nil {
		return common.Failure(err), nil
	}
	if err := validateActions(actions); err != nil {
		return common.Failure(err), nil
	}

	width, err := common.IntRange(request, "width", 1, 7680)
	if err != nil {
		return common.Failure(err), nil
	}
	height, err := common.IntRange(request, "height", 1, 7680)
	if err != nil {
		return common.Failure(err), nil
	}

	outputPath := strings.TrimSpace(request.GetString("output_path", ""))
	payload := SequenceRequest{
		URL:        url,
		Actions:    actions,
		Screenshot: request.GetBool("screenshot", false) || outputPath != "",
		Width:      width,
		Height:     height,
	}

	return m.runSequence(ctx, payload, outputPath)
}

func (m *Module) handleInspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := common.RequireURL(request)
	if err != nil {
		return common.Failure(err), nil
	}

	payload := InspectRequest{
		URL:             url,
		IncludeLinks:    boolArg(request, "include_links"),
		IncludeMeta:     boolArg(request, "include_meta"),
		IncludeHeadings: boolArg(request, "include_headings"),
		WaitForSelector: strings.TrimSpace(request.GetString("wait_for_selector", "")),
	}

	m.logger.Info("Inspecting page", zap.String("url", url))

	resp, err := m.client.PostJSON(ctx, EndpointInspect, payload)
	if err != nil {
		m.logger.Error("Inspection failed", zap.String("url", url), zap.Error(err))
		return common.Failure(err), nil
	}

	text, err := indentJSON(resp.Body)
	if err != nil {
		return common.Failure(err), nil
	}
	return mcp.NewToolResultText(text), nil
}
