package capture

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/capturekit/capture-mcp-server/pkg/modules/common"
)

// CaptureToolsConfig defines configuration for all tools
type CaptureToolsConfig struct {
	Screenshot common.ToolConfig
	PDF        common.ToolConfig
	OGImage    common.ToolConfig
	Video      common.ToolConfig
}

// GetDefaultToolsConfig returns default tool configuration
func GetDefaultToolsConfig() CaptureToolsConfig {
	return CaptureToolsConfig{
		Screenshot: common.ToolConfig{
			Name:        "take-screenshot",
			Description: "Capture a screenshot of a web page, raw HTML or Markdown. Returns the image, or saves it when output_path is set.",
			Enabled:     true,
		},
		PDF: common.ToolConfig{
			Name:        "generate-pdf",
			Description: "Render a web page, raw HTML or Markdown to PDF. Returns the document as an embedded resource, or saves it when output_path is set.",
			Enabled:     true,
		},
		OGImage: common.ToolConfig{
			Name:        "generate-og-image",
			Description: "Generate an Open Graph social preview image (1200x630 by default) from a web page, raw HTML or Markdown.",
			Enabled:     true,
		},
		Video: common.ToolConfig{
			Name:        "record-video",
			Description: "Record a short video of a web page, optionally scrolling through it. Returns mp4, webm or gif.",
			Enabled:     true,
		},
	}
}

// Accepted argument values, also listed by the formats resource
var (
	ImageFormats = []string{"png", "jpeg", "webp"}
	VideoFormats = []string{"mp4", "webm", "gif"}
	PageSizes    = []string{"A4", "Letter", "Legal", "A3", "A5", "Tabloid"}
	ScrollSpeeds = []string{"slow", "normal", "fast"}
)

// DevicePresets are forwarded as-is; the backend owns the list
var DevicePresets = []string{"iphone-15", "iphone-se", "pixel-8", "galaxy-s23", "ipad-pro", "ipad-mini", "desktop-hd", "desktop-4k"}

func sourceOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("url", mcp.Description("Absolute http(s) URL of the page to capture. One of url, html or markdown is required.")),
		mcp.WithString("html", mcp.Description("Raw HTML to render instead of a URL")),
		mcp.WithString("markdown", mcp.Description("Markdown to render instead of a URL")),
	}
}

func outputPathOption() mcp.ToolOption {
	return mcp.WithString("output_path", mcp.Description("Optional file path, inside the server's working directory, to save the result to instead of returning it inline"))
}

// Tool definition builder methods
func (m *Module) buildScreenshotToolDefinition(config common.ToolConfig) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(config.Description)}
	opts = append(opts, sourceOptions()...)
	opts = append(opts,
		mcp.WithString("format", mcp.Description("Image format (default png)"), mcp.Enum(ImageFormats...)),
		mcp.WithNumber("quality", mcp.Description("Image quality 1-100 for jpeg and webp"), mcp.Min(1), mcp.Max(100)),
		mcp.WithNumber("width", mcp.Description("Viewport width in pixels (default 1280)")),
		mcp.WithNumber("height", mcp.Description("Viewport height in pixels (default 800)")),
		mcp.WithBoolean("full_page", mcp.Description("Capture the full scrollable page")),
		mcp.WithString("device", mcp.Description("Device preset to emulate, e.g. "+strings.Join(DevicePresets[:3], ", "))),
		mcp.WithBoolean("dark_mode", mcp.Description("Emulate prefers-color-scheme: dark")),
		mcp.WithBoolean("block_ads", mcp.Description("Block ads and trackers")),
		mcp.WithBoolean("block_cookie_banners", mcp.Description("Hide cookie consent banners")),
		mcp.WithNumber("delay", mcp.Description("Milliseconds to wait after load before capturing (max 30000)")),
		mcp.WithString("wait_for_selector", mcp.Description("CSS selector to wait for before capturing")),
		mcp.WithString("selector", mcp.Description("CSS selector of a single element to capture")),
		outputPathOption(),
	)
	return mcp.NewTool(m.BuildToolName(config.Name), opts...)
}

func (m *Module) buildPDFToolDefinition(config common.ToolConfig) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(config.Description)}
	opts = append(opts, sourceOptions()...)
	opts = append(opts,
		mcp.WithString("page_size", mcp.Description("Paper size (default A4)"), mcp.Enum(PageSizes...)),
		mcp.WithBoolean("landscape", mcp.Description("Use landscape orientation")),
		mcp.WithBoolean("print_background", mcp.Description("Print background graphics (default true)")),
		mcp.WithNumber("scale", mcp.Description("Rendering scale between 0.1 and 2")),
		mcp.WithString("margin", mcp.Description("CSS length applied to all margins, e.g. 10mm")),
		mcp.WithString("margin_top", mcp.Description("Top margin, overrides margin")),
		mcp.WithString("margin_right", mcp.Description("Right margin, overrides margin")),
		mcp.WithString("margin_bottom", mcp.Description("Bottom margin, overrides margin")),
		mcp.WithString("margin_left", mcp.Description("Left margin, overrides margin")),
		mcp.WithNumber("delay", mcp.Description("Milliseconds to wait after load before rendering (max 30000)")),
		mcp.WithString("wait_for_selector", mcp.Description("CSS selector to wait for before rendering")),
		outputPathOption(),
	)
	return mcp.NewTool(m.BuildToolName(config.Name), opts...)
}

func (m *Module) buildOGImageToolDefinition(config common.ToolConfig) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(config.Description)}
	opts = append(opts, sourceOptions()...)
	opts = append(opts,
		mcp.WithNumber("width", mcp.Description("Image width in pixels (default 1200)")),
		mcp.WithNumber("height", mcp.Description("Image height in pixels (default 630)")),
		mcp.WithString("format", mcp.Description("Image format (default png)"), mcp.Enum(ImageFormats...)),
		outputPathOption(),
	)
	return mcp.NewTool(m.BuildToolName(config.Name), opts...)
}

func (m *Module) buildVideoToolDefinition(config common.ToolConfig) mcp.Tool {
	return mcp.NewTool(m.BuildToolName(config.Name),
		mcp.WithDescription(config.Description),
		mcp.WithString("url", mcp.Required(), mcp.Description("Absolute http(s) URL of the page to record")),
		mcp.WithNumber("duration", mcp.Description("Recording length in seconds, 1-30 (default 5)"), mcp.Min(1), mcp.Max(30)),
		mcp.WithString("format", mcp.Description("Video format (default mp4)"), mcp.Enum(VideoFormats...)),
		mcp.WithNumber("width", mcp.Description("Viewport width in pixels (default 1280)")),
		mcp.WithNumber("height", mcp.Description("Viewport height in pixels (default 720)")),
		mcp.WithNumber("fps", mcp.Description("Frames per second, 1-60 (default 30)")),
		mcp.WithBoolean("scroll", mcp.Description("Scroll through the page while recording")),
		mcp.WithString("scroll_speed", mcp.Description("Scroll speed when scroll is enabled"), mcp.Enum(ScrollSpeeds...)),
		mcp.WithBoolean("dark_mode", mcp.Description("Emulate prefers-color-scheme: dark")),
		mcp.WithBoolean("block_ads", mcp.Description("Block ads and trackers")),
		outputPathOption(),
	)
}

// imageFormat normalizes jpg to jpeg before validating
func imageFormat(request mcp.CallToolRequest) (string, error) {
	format := strings.ToLower(strings.TrimSpace(request.GetString("format", "")))
	if format == "jpg" {
		format = "jpeg"
	}
	return common.Enum("format", format, ImageFormats...)
}

// Tool handlers
func (m *Module) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := common.SourceFrom(request)
	if err != nil {
		return common.Failure(err), nil
	}
	format, err := imageFormat(request)
	if err != nil {
		return common.Failure(err), nil
	}
	quality, err := common.IntRange(request, "quality", 1, 100)
	if err != nil {
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
	delay, err := common.IntRange(request, "delay", 0, 30000)
	if err != nil {
		return common.Failure(err), nil
	}

	req := ScreenshotRequest{
		Source:             src,
		Format:             format,
		Quality:            quality,
		Width:              width,
		Height:             height,
		FullPage:           request.GetBool("full_page", false),
		Device:             strings.TrimSpace(request.GetString("device", "")),
		DarkMode:           request.GetBool("dark_mode", false),
		BlockAds:           request.GetBool("block_ads", false),
		BlockCookieBanners: request.GetBool("block_cookie_banners", false),
		Delay:              delay,
		WaitForSelector:    strings.TrimSpace(request.GetString("wait_for_selector", "")),
		Selector:           strings.TrimSpace(request.GetString("selector", "")),
		ResponseType:       responseTypeJSON,
	}
	if req.Format == "png" {
		req.Quality = 0
	}

	return m.run(ctx, job{
		label:      "Screenshot",
		kind:       KindImage,
		endpoint:   EndpointScreenshot,
		payload:    req,
		format:     defaultString(format, "png"),
		source:     src.Describe(),
		outputPath: request.GetString("output_path", ""),
	})
}

func (m *Module) handlePDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := common.SourceFrom(request)
	if err != nil {
		return common.Failure(err), nil
	}
	pageSize, err := common.Enum("page_size", request.GetString("page_size", ""), PageSizes...)
	if err != nil {
		return common.Failure(err), nil
	}
	scale, err := common.FloatRange(request, "scale", 0.1, 2)
	if err != nil {
		return common.Failure(err), nil
	}
	delay, err := common.IntRange(request, "delay", 0, 30000)
	if err != nil {
		return common.Failure(err), nil
	}

	all := strings.TrimSpace(request.GetString("margin", ""))
	margins := Margins{
		Top:    defaultString(strings.TrimSpace(request.GetString("margin_top", "")), all),
		Right:  defaultString(strings.TrimSpace(request.GetString("margin_right", "")), all),
		Bottom: defaultString(strings.TrimSpace(request.GetString("margin_bottom", "")), all),
		Left:   defaultString(strings.TrimSpace(request.GetString("margin_left", "")), all),
	}

	req := PDFRequest{
		Source:          src,
		PageSize:        pageSize,
		Landscape:       request.GetBool("landscape", false),
		PrintBackground: request.GetBool("print_background", true),
		Scale:           scale,
		Delay:           delay,
		WaitForSelector: strings.TrimSpace(request.GetString("wait_for_selector", "")),
		ResponseType:    responseTypeJSON,
	}
	if !margins.IsZero() {
		req.Margins = &margins
	}

	return m.run(ctx, job{
		label:      "PDF",
		kind:       KindPDF,
		endpoint:   EndpointPDF,
		payload:    req,
		format:     "pdf",
		source:     src.Describe(),
		outputPath: request.GetString("output_path", ""),
	})
}

func (m *Module) handleOGImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := common.SourceFrom(request)
	if err != nil {
		return common.Failure(err), nil
	}
	format, err := imageFormat(request)
	if err != nil {
		return common.Failure(err), nil
	}
	width, err := common.IntRange(request, "width", 200, 2400)
	if err != nil {
		return common.Failure(err), nil
	}
	height, err := common.IntRange(request, "height", 100, 2400)
	if err != nil {
		return common.Failure(err), nil
	}

	req := OGImageRequest{
		Source:       src,
		Width:        defaultInt(width, 1200),
		Height:       defaultInt(height, 630),
		Format:       format,
		ResponseType: responseTypeJSON,
	}

	return m.run(ctx, job{
		label:      "OG image",
		kind:       KindImage,
		endpoint:   EndpointOGImage,
		payload:    req,
		format:     defaultString(format, "png"),
		source:     src.Describe(),
		outputPath: request.GetString("output_path", ""),
	})
}

func (m *Module) handleVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := common.RequireURL(request)
	if err != nil {
		return common.Failure(err), nil
	}
	duration, err := common.IntRange(request, "duration", 1, 30)
	if err != nil {
		return common.Failure(err), nil
	}
	format, err := common.Enum("format", request.GetString("format", ""), VideoFormats...)
	if err != nil {
		return common.Failure(err), nil
	}
	width, err := common.IntRange(request, "width", 1, 3840)
	if err != nil {
		return common.Failure(err), nil
	}
	height, err := common.IntRange(request, "height", 1, 2160)
	if err != nil {
		return common.Failure(err), nil
	}
	fps, err := common.IntRange(request, "fps", 1, 60)
	if err != nil {
		return common.Failure(err), nil
	}
	scrollSpeed, err := common.Enum("scroll_speed", request.GetString("scroll_speed", ""), ScrollSpeeds...)
	if err != nil {
		return common.Failure(err), nil
	}

	req := VideoRequest{
		URL:          url,
		Duration:     defaultInt(duration, 5),
		Format:       format,
		Width:        width,
		Height:       height,
		FPS:          fps,
		Scroll:       request.GetBool("scroll", false),
		DarkMode:     request.GetBool("dark_mode", false),
		BlockAds:     request.GetBool("block_ads", false),
		ResponseType: responseTypeJSON,
	}
	if req.Scroll {
		req.ScrollSpeed = scrollSpeed
	}

	return m.run(ctx, job{
		label:      "Video",
		kind:       KindVideo,
		endpoint:   EndpointVideo,
		payload:    req,
		format:     defaultString(format, "mp4"),
		source:     url,
		outputPath: request.GetString("output_path", ""),
	})
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
