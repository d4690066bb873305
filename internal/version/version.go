// Package version holds build metadata injected with -ldflags.
package version

import "fmt"

var (
	Version = "0.1.0"
	Commit  = "dev"
)

// UserAgent is sent with every upstream request.
func UserAgent() string {
	return "packwizml/" + Version
}

// Full returns the version line printed by the CLI.
func Full() string {
	return fmt.Sprintf("packwizml %s (%s)", Version, Commit)
}
