// Package version holds build information for the website binary.
package version

// Overridden at build time:
// go build -ldflags "-X website/internal/version.Version=1.0.0 -X website/internal/version.Commit=abc123"
var (
	Version = "0.4.0"

	Commit = "unknown"

	BuildDate = "unknown"
)

// Info returns the version, suffixed with the short commit when one was stamped.
func Info() string {
	if Commit == "unknown" || len(Commit) <= 7 {
		return Version
	}
	return Version + " (" + Commit[:7] + ")"
}

// PoweredBy is the value sent in the X-Powered-By response header.
func PoweredBy() string {
	return "website/" + Version
}

// Full returns the multi-line form printed by `website version`.
func Full() string {
	return "website version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
