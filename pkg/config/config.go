package config

// Config represents the complete server configuration
type Config struct {
	Log       LogConfig       `mapstructure:"log" json:"log" yaml:"log"`
	Server    ServerConfig    `mapstructure:"server" json:"server" yaml:"server"`
	API       APIConfig       `mapstructure:"api" json:"api" yaml:"api"`
	Output    OutputConfig    `mapstructure:"output" json:"output" yaml:"output"`
	Capture   CaptureConfig   `mapstructure:"capture" json:"capture" yaml:"capture"`
	Browser   BrowserConfig   `mapstructure:"browser" json:"browser" yaml:"browser"`
	Prompts   PromptsConfig   `mapstructure:"prompts" json:"prompts" yaml:"prompts"`
	Resources ResourcesConfig `mapstructure:"resources" json:"resources" yaml:"resources"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" json:"telemetry" yaml:"telemetry"`
}

// ToolsConfig contains tools configuration
type ToolsConfig struct {
	Prefix string `mapstructure:"prefix" json:"prefix" yaml:"prefix"`
	Suffix string `mapstructure:"suffix" json:"suffix" yaml:"suffix"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `mapstructure:"level" json:"level" yaml:"level"`
}

// ServerConfig contains server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host" yaml:"host"`
	Port int    `mapstructure:"port" json:"port" yaml:"port"`
	Mode string `mapstructure:"mode" json:"mode" yaml:"mode"`
	URI  string `mapstructure:"uri" json:"uri" yaml:"uri"`
}

// APIConfig contains the web capture API backend configuration
type APIConfig struct {
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	APIKey   string `mapstructure:"apikey" json:"apikey" yaml:"apikey"`
	Timeout  int    `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// OutputConfig controls where tools may write captured files
type OutputConfig struct {
	BaseDir string `mapstructure:"baseDir" json:"baseDir" yaml:"baseDir"`
}

// CaptureConfig contains capture module configuration
type CaptureConfig struct {
	Enabled bool        `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Tools   ToolsConfig `mapstructure:"tools" json:"tools" yaml:"tools"`
}

// BrowserConfig contains browser module configuration
type BrowserConfig struct {
	Enabled bool        `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Tools   ToolsConfig `mapstructure:"tools" json:"tools" yaml:"tools"`
}

// PromptsConfig contains prompts module configuration
type PromptsConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
}

// ResourcesConfig contains resources module configuration
type ResourcesConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
}

// TelemetryConfig contains metrics endpoint configuration
type TelemetryConfig struct {
	Metrics     bool   `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	MetricsPath string `mapstructure:"metricsPath" json:"metricsPath" yaml:"metricsPath"`
	DocsPath    string `mapstructure:"docsPath" json:"docsPath" yaml:"docsPath"`
}
