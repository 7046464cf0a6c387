// Package version exposes build metadata injected via -ldflags.
package version

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"

	// GitCommit is the short commit hash of the build.
	GitCommit = "unknown"

	// BuildTime is the RFC3339 build timestamp.
	BuildTime = "unknown"
)

// Info bundles the build metadata for health and debug endpoints.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// Get returns the build metadata of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}
