package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/pkg/client"
	"github.com/capturekit/capture-mcp-server/pkg/metrics"
	"github.com/capturekit/capture-mcp-server/pkg/modules/common"
	"github.com/capturekit/capture-mcp-server/pkg/output"
)

const moduleName = "capture"

// Config contains capture module configuration
type Config struct {
	Tools common.ToolsConfig `mapstructure:"tools" json:"tools" yaml:"tools"`
}

// Module represents the capture module
type Module struct {
	config *Config
	logger *zap.Logger
	client *client.Client
	output *output.Writer
}

// New creates a new capture module
func New(config *Config, apiClient *client.Client, writer *output.Writer, logger *zap.Logger) (*Module, error) {
	if config == nil {
		return nil, fmt.Errorf("capture config is required")
	}
	if apiClient == nil {
		return nil, fmt.Errorf("capture API client is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("output writer is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	m := &Module{
		config: config,
		logger: logger.Named(moduleName),
		client: apiClient,
		output: writer,
	}

	m.logger.Info("Capture module created",
		zap.String("base_url", apiClient.BaseURL()),
		zap.String("output_dir", writer.BaseDir))

	return m, nil
}

// GetTools returns the list of available tools
func (m *Module) GetTools() []server.ServerTool {
	return m.BuildTools(GetDefaultToolsConfig())
}

// BuildToolName builds tool name based on configuration
func (m *Module) BuildToolName(baseName string) string {
	return m.config.Tools.BuildToolName(baseName)
}

// BuildTools builds tool list based on configuration
func (m *Module) BuildTools(toolsConfig CaptureToolsConfig) []server.ServerTool {
	var tools []server.ServerTool

	add := func(cfg common.ToolConfig, def func(common.ToolConfig) mcp.Tool, handler server.ToolHandlerFunc) {
		if !cfg.Enabled {
			return
		}
		toolName := m.BuildToolName(cfg.Name)
		tools = append(tools, server.ServerTool{
			Tool:    def(cfg),
			Handler: metrics.WrapToolHandler(handler, toolName, moduleName),
		})
	}

	add(toolsConfig.Screenshot, m.buildScreenshotToolDefinition, m.handleScreenshot)
	add(toolsConfig.PDF, m.buildPDFToolDefinition, m.handlePDF)
	add(toolsConfig.OGImage, m.buildOGImageToolDefinition, m.handleOGImage)
	add(toolsConfig.Video, m.buildVideoToolDefinition, m.handleVideo)

	return tools
}

// job is one validated capture ready to be sent
type job struct {
	label      string
	kind       Kind
	endpoint   string
	payload    any
	format     string
	source     string
	outputPath string
}

// run sends the job and turns the answer into a tool result. Failures are
// reported as error results, never as Go errors.
func (m *Module) run(ctx context.Context, j job) (*mcp.CallToolResult, error) {
	if j.outputPath != "" {
		if _, err := m.output.Resolve(j.outputPath); err != nil {
			m.logger.Warn("Rejected output path",
				zap.String("endpoint", j.endpoint),
				zap.String("output_path", j.outputPath),
				zap.Error(err))
			return common.Failure(err), nil
		}
	}

	m.logger.Info("Capturing",
		zap.String("endpoint", j.endpoint),
		zap.String("source", j.source),
		zap.String("format", j.format))

	resp, err := m.client.PostJSON(ctx, j.endpoint, j.payload)
	if err != nil {
		m.logger.Error("Capture failed", zap.String("endpoint", j.endpoint), zap.Error(err))
		return common.Failure(err), nil
	}

	env, err := envelopeFrom(resp)
	if err != nil {
		return common.Failure(err), nil
	}

	mimeType := env.MimeType
	if mimeType == "" {
		format := env.Format
		if format == "" {
			format = j.format
		}
		mimeType = common.MimeType(format)
	}

	summary := describe(j, env, mimeType)

	if env.Data == "" {
		if env.URL != "" {
			if j.outputPath != "" {
				m.logger.Warn("Capture returned a hosted URL only",
					zap.String("url", env.URL),
					zap.String("output_path", j.outputPath))
				return common.Failure(fmt.Errorf("capture API returned only a hosted URL (%s), nothing to save to %s", env.URL, j.outputPath)), nil
			}
			return mcp.NewToolResultText(summary), nil
		}
		return common.Failure(fmt.Errorf("capture API returned an empty %s", j.kind)), nil
	}

	if j.outputPath != "" {
		data, err := common.DecodePayload(env.Data)
		if err != nil {
			return common.Failure(err), nil
		}
		path, err := m.output.Write(j.outputPath, data)
		if err != nil {
			m.logger.Error("Failed to save capture", zap.String("output_path", j.outputPath), zap.Error(err))
			return common.Failure(err), nil
		}
		m.logger.Info("Capture saved", zap.String("path", path), zap.Int("bytes", len(data)))
		return mcp.NewToolResultText(summary + "\nSaved to: " + path), nil
	}

	data := common.StripDataURI(env.Data)
	if strings.HasPrefix(mimeType, "image/") {
		return mcp.NewToolResultImage(summary, data, mimeType), nil
	}
	return mcp.NewToolResultResource(summary, mcp.BlobResourceContents{
		URI:      fmt.Sprintf("capture://%s/%s", j.kind, uuid.NewString()),
		MIMEType: mimeType,
		Blob:     data,
	}), nil
}

// envelopeFrom reads a JSON envelope, or wraps a raw binary body in one
func envelopeFrom(resp *client.Response) (*Envelope, error) {
	if resp.IsJSON() {
		var env Envelope
		if err := resp.Decode(&env); err != nil {
			return nil, err
		}
		return &env, nil
	}

	mediaType, _, err := mime.ParseMediaType(resp.ContentType)
	if err != nil {
		mediaType = resp.ContentType
	}
	took := resp.Header.Get("X-Took")
	if took == "" {
		took = strconv.FormatInt(resp.Elapsed.Milliseconds(), 10)
	}
	return &Envelope{
		Data:     base64.StdEncoding.EncodeToString(resp.Body),
		MimeType: mediaType,
		FileSize: jsonNumber(len(resp.Body)),
		Took:     jsonNumber(took),
	}, nil
}

func describe(j job, env *Envelope, mimeType string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s captured: %s\n", j.label, j.source)
	fmt.Fprintf(&b, "Type: %s\n", mimeType)
	if env.Width > 0 && env.Height > 0 {
		fmt.Fprintf(&b, "Dimensions: %dx%d\n", env.Width, env.Height)
	}
	if env.FileSize != "" {
		fmt.Fprintf(&b, "Size: %s bytes\n", env.FileSize)
	}
	if env.Duration != "" {
		fmt.Fprintf(&b, "Duration: %s s\n", env.Duration)
	}
	if env.Took != "" {
		fmt.Fprintf(&b, "Took: %s ms\n", env.Took)
	}
	if env.URL != "" {
		fmt.Fprintf(&b, "Hosted at: %s\n", env.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
