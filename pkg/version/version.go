// Package version exposes the vpsbridge build version.
package version

// Version is the current vpsbridge version.
// It is overridden at build time via -ldflags for release builds.
var Version = "0.1.0-dev"

// GetVersion returns the version string of the running binary.
func GetVersion() string {
	return Version
}
