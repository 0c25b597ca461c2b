package types

import "runtime"

// Version information for the calamine library.
const (
	Version = "0.1.0"
	Name    = "calamine"
)

// BuildInfo contains version and build information for the calamine library.
type BuildInfo struct {
	Version   string
	Name      string
	GoVersion string
}

// GetBuildInfo returns the current version information for the calamine
// library.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Name:      Name,
		GoVersion: runtime.Version(),
	}
}
