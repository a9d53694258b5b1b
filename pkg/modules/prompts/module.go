package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/pkg/modules/browser"
	"github.com/capturekit/capture-mcp-server/pkg/modules/capture"
	"github.com/capturekit/capture-mcp-server/pkg/modules/common"
)

const moduleName = "prompts"

// Config contains prompts module configuration. The tool name settings must
// match the ones the capture and browser modules were registered with.
type Config struct {
	CaptureTools common.ToolsConfig `mapstructure:"capture_tools" json:"capture_tools" yaml:"capture_tools"`
	BrowserTools common.ToolsConfig `mapstructure:"browser_tools" json:"browser_tools" yaml:"browser_tools"`
}

// Module serves prompt templates that walk an assistant through the tools
type Module struct {
	config *Config
	logger *zap.Logger
}

// New creates a new prompts module
func New(config *Config, logger *zap.Logger) (*Module, error) {
	if config == nil {
		return nil, fmt.Errorf("prompts config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Module{
		config: config,
		logger: logger.Named(moduleName),
	}, nil
}

// GetPrompts returns all prompt templates
func (m *Module) GetPrompts() []server.ServerPrompt {
	return []server.ServerPrompt{
		{
			Prompt: mcp.NewPrompt("capture-page",
				mcp.WithPromptDescription("Take a screenshot of a page and describe what it shows"),
				mcp.WithArgument("url", mcp.RequiredArgument(), mcp.ArgumentDescription("Page to capture")),
				mcp.WithArgument("format", mcp.ArgumentDescription("Image format: png, jpeg or webp")),
			),
			Handler: m.handleCapturePage,
		},
		{
			Prompt: mcp.NewPrompt("save-as-pdf",
				mcp.WithPromptDescription("Render a page to PDF and check the result"),
				mcp.WithArgument("url", mcp.RequiredArgument(), mcp.ArgumentDescription("Page to render")),
				mcp.WithArgument("page_size", mcp.ArgumentDescription("Paper size, e.g. A4 or Letter")),
			),
			Handler: m.handleSaveAsPDF,
		},
		{
			Prompt: mcp.NewPrompt("audit-page",
				mcp.WithPromptDescription("Inspect and screenshot a page, then report SEO and visual issues"),
				mcp.WithArgument("url", mcp.RequiredArgument(), mcp.ArgumentDescription("Page to audit")),
			),
			Handler: m.handleAuditPage,
		},
		{
			Prompt: mcp.NewPrompt("social-preview",
				mcp.WithPromptDescription("Generate an Open Graph preview image for a page"),
				mcp.WithArgument("url", mcp.RequiredArgument(), mcp.ArgumentDescription("Page to preview")),
				mcp.WithArgument("title", mcp.ArgumentDescription("Headline the preview should feature")),
			),
			Handler: m.handleSocialPreview,
		},
	}
}

func (m *Module) captureTool(name string) string {
	return m.config.CaptureTools.BuildToolName(name)
}

func (m *Module) browserTool(name string) string {
	return m.config.BrowserTools.BuildToolName(name)
}

// promptURL reads and validates the url argument
func promptURL(request mcp.GetPromptRequest) (string, error) {
	url := strings.TrimSpace(request.Params.Arguments["url"])
	if url == "" {
		return "", fmt.Errorf("url is required")
	}
	if err := common.ValidateURL(url); err != nil {
		return "", err
	}
	return url, nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}

func (m *Module) handleCapturePage(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	url, err := promptURL(request)
	if err != nil {
		return nil, err
	}
	format, err := common.Enum("format", request.Params.Arguments["format"], capture.ImageFormats...)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = "png"
	}

	text := fmt.Sprintf("Use the %s tool to capture %s as a %s image with full_page set to true.\n"+
		"Then describe the page: its purpose, layout, main content and any visible rendering problems.",
		m.captureTool(capture.GetDefaultToolsConfig().Screenshot.Name), url, format)

	m.logger.Debug("Prompt rendered", zap.String("prompt", "capture-page"), zap.String("url", url))
	return userPrompt("Capture and describe "+url, text), nil
}

func (m *Module) handleSaveAsPDF(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	url, err := promptURL(request)
	if err != nil {
		return nil, err
	}
	pageSize, err := common.Enum("page_size", request.Params.Arguments["page_size"], capture.PageSizes...)
	if err != nil {
		return nil, err
	}
	if pageSize == "" {
		pageSize = "A4"
	}

	text := fmt.Sprintf("Use the %s tool to render %s to PDF on %s paper with print_background enabled.\n"+
		"Report the file size and the time it took. If the page relies on lazy loading, retry with a delay of 2000 ms.",
		m.captureTool(capture.GetDefaultToolsConfig().PDF.Name), url, pageSize)

	m.logger.Debug("Prompt rendered", zap.String("prompt", "save-as-pdf"), zap.String("url", url))
	return userPrompt("Save "+url+" as PDF", text), nil
}

func (m *Module) handleAuditPage(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	url, err := promptURL(request)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Audit %s.\n", url)
	fmt.Fprintf(&b, "1. Call %s with include_meta, include_headings and include_links set to true.\n",
		m.browserTool(browser.GetDefaultToolsConfig().Inspect.Name))
	fmt.Fprintf(&b, "2. Call %s with full_page set to true.\n",
		m.captureTool(capture.GetDefaultToolsConfig().Screenshot.Name))
	b.WriteString("3. Write a short report covering the title and meta description, Open Graph tags, " +
		"the heading outline, suspicious links and any visual or layout issues in the screenshot.")

	m.logger.Debug("Prompt rendered", zap.String("prompt", "audit-page"), zap.String("url", url))
	return userPrompt("Audit "+url, b.String()), nil
}

func (m *Module) handleSocialPreview(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	url, err := promptURL(request)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Use the %s tool to generate a 1200x630 Open Graph image for %s.",
		m.captureTool(capture.GetDefaultToolsConfig().OGImage.Name), url)
	if title := strings.TrimSpace(request.Params.Arguments["title"]); title != "" {
		text += fmt.Sprintf("\nCheck that the headline %q is legible in the result.", title)
	}
	text += "\nThen suggest an og:title and og:description for the page."

	m.logger.Debug("Prompt rendered", zap.String("prompt", "social-preview"), zap.String("url", url))
	return userPrompt("Social preview for "+url, text), nil
}
