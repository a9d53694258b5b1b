package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/cmd/version"
	"github.com/capturekit/capture-mcp-server/pkg/client"
	"github.com/capturekit/capture-mcp-server/pkg/config"
	"github.com/capturekit/capture-mcp-server/pkg/metrics"
	"github.com/capturekit/capture-mcp-server/pkg/server"
)

var (
	cfgFile string
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "capture-mcp-server",
	Short: "Capture MCP Server - web capture tools for AI assistants",
	Long: `An MCP server exposing a hosted web capture API: screenshots, PDFs,
Open Graph images, page recordings, browser automation and page inspection.`,
	Run: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Configuration flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("host", "0.0.0.0", "Server host")
	rootCmd.PersistentFlags().Int("port", 3000, "Server port")
	rootCmd.PersistentFlags().String("mode", server.ModeStdio, "Server mode: stdio or sse")

	// Capture API flags
	rootCmd.PersistentFlags().String("api-key", "", "Capture API key (or CAPTURE_API_KEY)")
	rootCmd.PersistentFlags().String("api-endpoint", client.DefaultEndpoint, "Capture API base URL")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory tools may save files to (default is the working directory)")

	// Module flags
	rootCmd.PersistentFlags().Bool("enable-capture", true, "Enable capture module")
	rootCmd.PersistentFlags().Bool("enable-browser", true, "Enable browser module")
	rootCmd.PersistentFlags().Bool("enable-prompts", true, "Enable prompts module")
	rootCmd.PersistentFlags().Bool("enable-resources", true, "Enable resources module")
	rootCmd.PersistentFlags().Bool("enable-metrics", false, "Serve Prometheus metrics in sse mode")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("server.host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("server.port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("server.mode", rootCmd.PersistentFlags().Lookup("mode"))
	viper.BindPFlag("api.apikey", rootCmd.PersistentFlags().Lookup("api-key"))
	viper.BindPFlag("api.endpoint", rootCmd.PersistentFlags().Lookup("api-endpoint"))
	viper.BindPFlag("output.baseDir", rootCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("capture.enabled", rootCmd.PersistentFlags().Lookup("enable-capture"))
	viper.BindPFlag("browser.enabled", rootCmd.PersistentFlags().Lookup("enable-browser"))
	viper.BindPFlag("prompts.enabled", rootCmd.PersistentFlags().Lookup("enable-prompts"))
	viper.BindPFlag("resources.enabled", rootCmd.PersistentFlags().Lookup("enable-resources"))
	viper.BindPFlag("telemetry.metrics", rootCmd.PersistentFlags().Lookup("enable-metrics"))

	viper.BindEnv("api.apikey", "CAPTURE_API_KEY")
	viper.BindEnv("api.endpoint", "CAPTURE_API_ENDPOINT")

	viper.SetDefault("api.timeout", client.DefaultTimeout)
	viper.SetDefault("telemetry.metricsPath", server.DefaultMetricsPath)
	viper.SetDefault("telemetry.docsPath", server.DefaultDocsPath)
	viper.SetDefault("server.uri", server.DefaultEndpointPath)

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// stdout belongs to the stdio transport, so warnings go to stderr
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	// Initialize logger
	var err error
	switch viper.GetString("log.level") {
	case "debug":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	defer logger.Sync()

	// Load configuration
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Fatal("Failed to unmarshal config", zap.Error(err))
	}

	serverMode := cfg.Server.Mode
	if serverMode == "" {
		serverMode = server.ModeStdio
	}

	metrics.Init(logger)
	info := version.Get()
	metrics.SetBuildInfo(info.Version, info.GitCommit, info.BuildDate)

	logger.Info("Starting Capture MCP Server",
		zap.String("version", info.Version),
		zap.String("mode", serverMode),
		zap.String("api_endpoint", cfg.API.Endpoint),
		zap.Bool("capture_enabled", cfg.Capture.Enabled),
		zap.Bool("browser_enabled", cfg.Browser.Enabled),
		zap.Bool("prompts_enabled", cfg.Prompts.Enabled),
		zap.Bool("resources_enabled", cfg.Resources.Enabled),
	)

	srv, err := server.New(&cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server based on mode
	switch serverMode {
	case server.ModeStdio:
		logger.Info("Starting server in stdio mode")
		if err := srv.ServeStdio(); err != nil {
			logger.Fatal("Stdio server failed", zap.Error(err))
		}
	case server.ModeSSE:
		if cfg.Telemetry.Metrics {
			metrics.StartSystemMetricsCollector(ctx, 15*time.Second, logger)
		}
		if err := srv.ServeHTTP(ctx); err != nil {
			logger.Fatal("SSE server failed", zap.Error(err))
		}
	default:
		logger.Fatal("Invalid server mode", zap.String("mode", serverMode), zap.Strings("valid_modes", []string{server.ModeStdio, server.ModeSSE}))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
