// Package version provides build information for nuext.
// The variables are set at build time via ldflags.
package version

// Version is the current version of nuext.
// Set at build time via: -ldflags "-X github.com/nix-mox/nuext/internal/version.Version=v1.0.0"
// Defaults to "dev" for development builds.
var Version = "dev"

// Commit and Date are optional build metadata, empty unless set via ldflags.
var (
	Commit = ""
	Date   = ""
)

// Full returns the version decorated with commit and date when known,
// e.g. "v1.0.0 (abc1234) 2026-01-02".
func Full() string {
	v := Version
	if Commit != "" {
		v += " (" + Commit + ")"
	}
	if Date != "" {
		v += " " + Date
	}
	return v
}
