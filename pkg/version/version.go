// Package version provides build information for the pricing-oracle binary.
package version

// Set at build time via -ldflags.
var (
	// Version is the release version of pricing-oracle.
	Version = "0.1.0"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// BuildDate is the UTC timestamp of the build.
	BuildDate = "unknown"
)

// AgentString returns the full agent string with versioning.
// Format: @unytco/pricing-oracle@v{version}
func AgentString() string {
	return "@unytco/pricing-oracle@v" + Version
}
