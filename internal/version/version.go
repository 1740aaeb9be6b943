// Package version holds build metadata for lostfound.
package version

import "runtime"

// Set at build time with -ldflags "-X".
var (
	Version = "development"
	Commit  = "unknown"
	Date    = ""
)

// String returns the version, suffixed with the commit when known.
func String() string {
	if Commit != "unknown" && Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}

// Long returns the version line printed by `lostfound version`.
func Long() string {
	s := "lostfound " + String()
	if Date != "" {
		s += " built " + Date
	}
	return s + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}

// UserAgent is sent on every request to the lost-and-found API.
func UserAgent() string {
	return "lostfound/" + String()
}
