package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/pkg/client"
	"github.com/capturekit/capture-mcp-server/pkg/metrics"
	"github.com/capturekit/capture-mcp-server/pkg/modules/common"
	"github.com/capturekit/capture-mcp-server/pkg/output"
)

const moduleName = "browser"

// Config contains browser module configuration
type Config struct {
	Tools common.ToolsConfig `mapstructure:"tools" json:"tools" yaml:"tools"`
}

// Module represents the browser automation module
type Module struct {
	config *Config
	logger *zap.Logger
	client *client.Client
	output *output.Writer
}

// New creates a new browser module
func New(config *Config, apiClient *client.Client, writer *output.Writer, logger *zap.Logger) (*Module, error) {
	if config == nil {
		return nil, fmt.Errorf("browser config is required")
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

	m.logger.Info("Browser module created", zap.String("base_url", apiClient.BaseURL()))

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
func (m *Module) BuildTools(toolsConfig BrowserToolsConfig) []server.ServerTool {
	var tools []server.ServerTool

	if toolsConfig.Sequence.Enabled {
		toolName := m.BuildToolName(toolsConfig.Sequence.Name)
		tools = append(tools, server.ServerTool{
			Tool:    m.buildSequenceToolDefinition(toolsConfig.Sequence),
			Handler: metrics.WrapToolHandler(m.handleSequence, toolName, moduleName),
		})
	}

	if toolsConfig.Inspect.Enabled {
		toolName := m.BuildToolName(toolsConfig.Inspect.Name)
		tools = append(tools, server.ServerTool{
			Tool:    m.buildInspectToolDefinition(toolsConfig.Inspect),
			Handler: metrics.WrapToolHandler(m.handleInspect, toolName, moduleName),
		})
	}

	return tools
}

// validateActions normalizes action types in place
func validateActions(actions []Action) error {
	if len(actions) == 0 {
		return fmt.Errorf("actions must be a non-empty array")
	}
	for i := range actions {
		a := &actions[i]
		a.Type = strings.ToLower(strings.TrimSpace(a.Type))
		if a.Type == "" {
			return fmt.Errorf("action %d: type is required", i+1)
		}
		if _, err := common.Enum("action type", a.Type, ActionTypes...); err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
		if needsSelector[a.Type] && strings.TrimSpace(a.Selector) == "" {
			return fmt.Errorf("action %d (%s): selector is required", i+1, a.Type)
		}
		if needsValue[a.Type] && a.Value == "" {
			return fmt.Errorf("action %d (%s): value is required", i+1, a.Type)
		}
		if a.Type == ActionNavigate {
			if err := common.ValidateURL(string(a.Value)); err != nil {
				return fmt.Errorf("action %d (%s): %w", i+1, a.Type, err)
			}
		}
		if a.Timeout < 0 || a.Timeout > maxActionTimeout {
			return fmt.Errorf("action %d (%s): timeout must be between 0 and %d ms", i+1, a.Type, maxActionTimeout)
		}
	}
	return nil
}

// summarize renders the sequence outcome as readable lines
func summarize(url string, result *SequenceResult) string {
	var b strings.Builder
	status := "succeeded"
	if !result.Success {
		status = "failed"
	}
	fmt.Fprintf(&b, "Browser sequence on %s %s\n", url, status)
	if result.FinalURL != "" {
		fmt.Fprintf(&b, "Final URL: %s\n", result.FinalURL)
	}
	if result.Took != "" {
		fmt.Fprintf(&b, "Took: %s ms\n", result.Took)
	}
	if result.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", result.Error)
	}

	if len(result.Steps) > 0 {
		b.WriteString("Steps:\n")
		for i, step := range result.Steps {
			target := step.Action
			if step.Selector != "" {
				target += " " + step.Selector
			}
			outcome := "ok"
			if !step.Success {
				outcome = "failed"
				if step.Error != "" {
					outcome += ": " + step.Error
				}
			}
			// the backend may report a subset of steps
			number := i + 1
			if step.Index != nil {
				number = *step.Index + 1
			}
			fmt.Fprintf(&b, "  %d. %s: %s", number, target, outcome)
			if step.Took != "" {
				fmt.Fprintf(&b, " (%s ms)", step.Took)
			}
			b.WriteString("\n")
		}
	}

	if len(result.Extracted) > 0 {
		if data, err := json.MarshalIndent(result.Extracted, "", "  "); err == nil {
			fmt.Fprintf(&b, "Extracted:\n%s\n", data)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// indentJSON pretty prints a JSON document
func indentJSON(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return "", fmt.Errorf("failed to parse inspection result: %w", err)
	}
	return buf.String(), nil
}

// boolArg returns nil when the argument is absent
func boolArg(request mcp.CallToolRequest, name string) *bool {
	if _, ok := request.GetArguments()[name]; !ok {
		return nil
	}
	v := request.GetBool(name, false)
	return &v
}

func (m *Module) runSequence(ctx context.Context, payload SequenceRequest, outputPath string) (*mcp.CallToolResult, error) {
	if outputPath != "" {
		if _, err := m.output.Resolve(outputPath); err != nil {
			m.logger.Warn("Rejected output path", zap.String("output_path", outputPath), zap.Error(err))
			return common.Failure(err), nil
		}
	}

	m.logger.Info("Running browser sequence",
		zap.String("url", payload.URL),
		zap.Int("actions", len(payload.Actions)),
		zap.Bool("screenshot", payload.Screenshot))

	resp, err := m.client.PostJSON(ctx, EndpointAutomate, payload)
	if err != nil {
		m.logger.Error("Browser sequence failed", zap.String("url", payload.URL), zap.Error(err))
		return common.Failure(err), nil
	}
	if !resp.IsJSON() {
		return common.Failure(fmt.Errorf("unexpected %q response from %s", resp.ContentType, EndpointAutomate)), nil
	}

	var result SequenceResult
	if err := resp.Decode(&result); err != nil {
		return common.Failure(err), nil
	}

	summary := summarize(payload.URL, &result)
	if !result.Success {
		m.logger.Warn("Browser sequence reported failure",
			zap.String("url", payload.URL),
			zap.Int("steps", len(result.Steps)))
		return mcp.NewToolResultError(summary), nil
	}

	if result.Screenshot == "" {
		if outputPath != "" {
			return common.Failure(fmt.Errorf("no screenshot returned to save to %s", outputPath)), nil
		}
		return mcp.NewToolResultText(summary), nil
	}

	if outputPath != "" {
		data, err := common.DecodePayload(result.Screenshot)
		if err != nil {
			return common.Failure(err), nil
		}
		path, err := m.output.Write(outputPath, data)
		if err != nil {
			m.logger.Error("Failed to save screenshot", zap.String("output_path", outputPath), zap.Error(err))
			return common.Failure(err), nil
		}
		return mcp.NewToolResultText(summary + "\nSaved to: " + path), nil
	}

	return mcp.NewToolResultImage(summary, common.StripDataURI(result.Screenshot), common.MimeType("png")), nil
}
