// Package version carries build metadata stamped in with -ldflags.
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for -version output and log banners.
func String(binary string) string {
	return fmt.Sprintf("%s %s (git %s, built %s)", binary, Version, GitSHA, BuildTime)
}
