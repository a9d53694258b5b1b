package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/cmd/version"
	"github.com/capturekit/capture-mcp-server/pkg/client"
	"github.com/capturekit/capture-mcp-server/pkg/config"
	"github.com/capturekit/capture-mcp-server/pkg/docs"
	"github.com/capturekit/capture-mcp-server/pkg/metrics"
	"github.com/capturekit/capture-mcp-server/pkg/modules/browser"
	"github.com/capturekit/capture-mcp-server/pkg/modules/capture"
	"github.com/capturekit/capture-mcp-server/pkg/modules/common"
	"github.com/capturekit/capture-mcp-server/pkg/modules/prompts"
	"github.com/capturekit/capture-mcp-server/pkg/modules/resources"
	"github.com/capturekit/capture-mcp-server/pkg/output"
)

// Server modes
const (
	ModeStdio = "stdio"
	ModeSSE   = "sse"
)

// Defaults for the HTTP surface
const (
	DefaultEndpointPath = "/mcp"
	DefaultMetricsPath  = "/metrics"
	DefaultDocsPath     = "/mcp/docs"
)

const shutdownTimeout = 10 * time.Second

// Server wires the enabled modules into one MCP server
type Server struct {
	config    *config.Config
	logger    *zap.Logger
	mcp       *mcpserver.MCPServer
	collector *docs.Collector
	toolCount int
}

// New builds the MCP server and registers every enabled module
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	apiClient, err := client.New(&client.Config{
		Endpoint: cfg.API.Endpoint,
		APIKey:   cfg.API.APIKey,
		Timeout:  cfg.API.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture API client: %w", err)
	}
	if cfg.API.APIKey == "" {
		logger.Warn("No capture API key configured, tool calls will fail until CAPTURE_API_KEY or api.apikey is set")
	}

	writer, err := output.NewWriter(cfg.Output.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create output writer: %w", err)
	}

	s := &Server{
		config:    cfg,
		logger:    logger,
		collector: docs.NewCollector(logger.Named("docs")),
		mcp: mcpserver.NewMCPServer(version.ServiceName, version.BuildVersion,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithResourceCapabilities(false, true),
			mcpserver.WithPromptCapabilities(true),
			mcpserver.WithHooks(metrics.SessionHooks()),
			mcpserver.WithRecovery(),
			mcpserver.WithLogging(),
		),
	}

	captureTools := toolsConfig(cfg.Capture.Tools)
	browserTools := toolsConfig(cfg.Browser.Tools)

	if cfg.Capture.Enabled {
		m, err := capture.New(&capture.Config{Tools: captureTools}, apiClient, writer, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create capture module: %w", err)
		}
		s.addTools("capture", m.GetTools())
	}
	setModuleEnabled("capture", cfg.Capture.Enabled)

	if cfg.Browser.Enabled {
		m, err := browser.New(&browser.Config{Tools: browserTools}, apiClient, writer, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create browser module: %w", err)
		}
		s.addTools("browser", m.GetTools())
	}
	setModuleEnabled("browser", cfg.Browser.Enabled)

	if cfg.Prompts.Enabled {
		m, err := prompts.New(&prompts.Config{CaptureTools: captureTools, BrowserTools: browserTools}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create prompts module: %w", err)
		}
		serverPrompts := m.GetPrompts()
		s.mcp.AddPrompts(serverPrompts...)
		s.collector.AddPrompts(serverPrompts)
		logger.Info("Prompts module enabled", zap.Int("prompts", len(serverPrompts)))
	}
	setModuleEnabled("prompts", cfg.Prompts.Enabled)

	if cfg.Resources.Enabled {
		m, err := resources.New(apiClient, s.collector, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create resources module: %w", err)
		}
		serverResources := m.GetResources()
		s.mcp.AddResources(serverResources...)
		s.collector.AddResources(serverResources)
		logger.Info("Resources module enabled", zap.Int("resources", len(serverResources)))
	}
	setModuleEnabled("resources", cfg.Resources.Enabled)

	if s.toolCount == 0 {
		logger.Warn("No tool modules enabled, server will have no tools available")
	} else {
		logger.Info("Server initialized", zap.Int("total_tools", s.toolCount))
	}

	return s, nil
}

func (s *Server) addTools(module string, tools []mcpserver.ServerTool) {
	s.mcp.AddTools(tools...)
	s.collector.AddTools(module, tools)
	s.toolCount += len(tools)
	s.logger.Info("Module enabled", zap.String("module", module), zap.Int("tools", len(tools)))
}

func toolsConfig(c config.ToolsConfig) common.ToolsConfig {
	return common.ToolsConfig{Prefix: c.Prefix, Suffix: c.Suffix}
}

func setModuleEnabled(module string, enabled bool) {
	if m := metrics.Get(); m != nil {
		m.SetModuleEnabled(module, enabled)
	}
}

// MCPServer returns the underlying MCP server
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// Collector returns the catalog of registered tools, prompts and resources
func (s *Server) Collector() *docs.Collector {
	return s.collector
}

// ToolCount returns the number of registered tools
func (s *Server) ToolCount() int {
	return s.toolCount
}

// Handler returns the HTTP surface: the streamable MCP endpoint, the docs
// endpoint and, when enabled, Prometheus metrics.
func (s *Server) Handler() http.Handler {
	endpointPath := orDefault(s.config.Server.URI, DefaultEndpointPath)

	streamable := mcpserver.NewStreamableHTTPServer(s.mcp,
		mcpserver.WithEndpointPath(endpointPath),
		mcpserver.WithLogger(s.logger.Named("http").Sugar()),
	)

	mux := http.NewServeMux()
	mux.Handle(endpointPath, streamable)
	mux.HandleFunc(orDefault(s.config.Telemetry.DocsPath, DefaultDocsPath), docs.NewHandler(s.collector, s.logger).HandleDocs)
	if s.config.Telemetry.Metrics {
		mux.Handle(orDefault(s.config.Telemetry.MetricsPath, DefaultMetricsPath), metrics.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return metrics.HTTPMetricsMiddleware(mux)
}

// ServeStdio serves MCP over stdin/stdout until the input closes
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcp, mcpserver.WithErrorLogger(zap.NewStdLog(s.logger.Named("stdio"))))
}

// ServeHTTP listens on host:port until ctx is cancelled
func (s *Server) ServeHTTP(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server in SSE mode", zap.String("address", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
