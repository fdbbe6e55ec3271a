// Package buildinfo holds version information stamped in at link time.
package buildinfo

// Set with -ldflags "-X github.com/tesoro-dev/tesoro/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
