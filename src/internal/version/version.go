// FILE: logship/src/internal/version/version.go
package version

import "fmt"

var (
	// Version is set at compile time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the full version line printed by -version
func String() string {
	if Version == "dev" {
		return fmt.Sprintf("logship dev (commit: %s, built: %s)", GitCommit, BuildTime)
	}
	return fmt.Sprintf("logship %s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}

// Short returns just the version tag
func Short() string {
	return Version
}

// UserAgent is sent with every ingestion request
func UserAgent() string {
	return "logship/" + Version
}
