// Package gitinfo resolves source provenance for a guide input tree. Many
// guides are authored inside a git work tree; recording the commit a run
// was built from makes run history attributable. Everything here is best
// effort: provenance enrichment must never fail or slow down a run.
package gitinfo

import (
	git "github.com/go-git/go-git/v5"
)

// abbrevLen matches the short-hash width git itself prints.
const abbrevLen = 12

// HeadCommit returns the abbreviated HEAD commit of the repository that
// contains path, or "" when path is not inside a work tree or the
// repository has no commits yet.
func HeadCommit(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	hash := head.Hash().String()
	if len(hash) < abbrevLen {
		return hash
	}
	return hash[:abbrevLen]
}
