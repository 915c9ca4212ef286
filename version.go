// Package notify provides the version information for notify-go.
package notify

// Version is the current version of notify-go.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
