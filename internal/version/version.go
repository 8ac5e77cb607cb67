// Package version exposes build metadata injected at link time.
package version

// Version is the semantic version of the binary. Set via ldflags:
// go build -ldflags "-X github.com/ArdonToonstra/simplifier-ig/internal/version.Version=v1.0.0".
var Version = "dev"

// BuildTime and GitCommit carry additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version, appending the short commit when one was injected.
func String() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return Version
	}
	commit := GitCommit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return Version + " (" + commit + ")"
}
