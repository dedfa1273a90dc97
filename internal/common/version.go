package common

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X github.com/ternarybob/augur/internal/common.Version=..."
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo describes the running augur binary
type BuildInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// GetBuildInfo returns the linked-in build metadata
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Build:     Build,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s, %s)", b.Version, b.Build, b.GitCommit, b.GoVersion)
}
