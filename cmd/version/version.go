package version

import (
	"fmt"
	"runtime"
)

// ServiceName identifies this server in version strings and the docs endpoint
const ServiceName = "capture-mcp-server"

// These variables are set during build time via ldflags
var (
	BuildVersion = "latest"
	BuildDate    = "unknown"
	GitCommitID  = "unknown"
)

// Info contains version information
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the version information
func Get() Info {
	return Info{
		Version:   BuildVersion,
		BuildDate: BuildDate,
		GitCommit: GitCommitID,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a formatted version string
func String() string {
	info := Get()
	return fmt.Sprintf("%s %s (built on %s, commit %s, %s %s)",
		ServiceName, info.Version, info.BuildDate, info.GitCommit, info.GoVersion, info.Platform)
}

// UserAgent is sent with every capture API request
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s)", ServiceName, BuildVersion, runtime.GOOS)
}
