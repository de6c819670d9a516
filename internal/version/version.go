// Package version carries build metadata injected at link time.
package version

import "fmt"

// Set via -ldflags "-X aigateway/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a single-line human-readable version string.
func Info() string {
	return fmt.Sprintf("aigateway %s (commit %s, built %s)", Version, Commit, Date)
}
