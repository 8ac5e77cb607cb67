// Package scan walks a guide input tree once and produces the ordered entry
// list every later stage works from. Classification happens here and only
// here; the pipeline never re-reads the tree mid-run.
package scan

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
)

// InputEntry describes one discovered file.
type InputEntry struct {
	// RelPath is the forward-slash path relative to the input root.
	RelPath string
	// Category is assigned once at scan time from the containing directory.
	Category FileCategory
	// Template marks entries that go through token substitution: the
	// template-eligible categories plus the layout template inside a
	// style bundle.
	Template bool
	// Size in bytes, as observed at scan time.
	Size int64
	// Content captured at scan time. Assembly works from this snapshot so
	// concurrent edits to the tree cannot leak into a running build.
	Content []byte
}

// Scanner walks an input root.
type Scanner struct {
	root string
}

// NewScanner creates a scanner for the given input root.
func NewScanner(root string) *Scanner {
	return &Scanner{root: root}
}

// Scan walks the tree and returns entries ordered by category rank, then
// lexical relative path. The ordering is part of the tool's contract: two
// scans of the same tree yield the same slice.
func (s *Scanner) Scan() ([]InputEntry, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, guideerrors.InputNotFound(s.root)
		}
		return nil, guideerrors.ScanFailed(s.root, err)
	}
	if !info.IsDir() {
		return nil, guideerrors.InputNotFound(s.root)
	}

	var entries []InputEntry
	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden entries (VCS metadata, editor state, saved settings).
		if strings.HasPrefix(d.Name(), ".") && path != s.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		// Root documents belong to the config loader, not the content scan.
		if rel == config.SettingsFileName || rel == config.VariablesFileName {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		category := classify(rel)
		entries = append(entries, InputEntry{
			RelPath:  rel,
			Category: category,
			Template: templateEligible(category, rel),
			Size:     int64(len(content)),
			Content:  content,
		})
		return nil
	})
	if walkErr != nil {
		return nil, guideerrors.ScanFailed(s.root, walkErr)
	}

	sortEntries(entries)
	return entries, nil
}

// classify returns the category for a relative path. Files directly at the
// root (or under unknown directories) are CategoryOther.
func classify(rel string) FileCategory {
	top, _, found := strings.Cut(rel, "/")
	if !found {
		return CategoryOther
	}
	return CategoryForDir(top)
}

// templateEligible decides substitution per entry. Inside a style bundle only
// the layout template is substituted; the settings file and stylesheet are
// copied byte for byte.
func templateEligible(category FileCategory, rel string) bool {
	if category.TemplateEligible() {
		return true
	}
	if category == CategoryStyleAsset {
		return path.Base(rel) == config.LayoutTemplateName
	}
	return false
}

// sortEntries applies the canonical ordering: category rank, then lexical
// relative path.
func sortEntries(entries []InputEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category.Rank() < entries[j].Category.Rank()
		}
		return entries[i].RelPath < entries[j].RelPath
	})
}

// CountByCategory tallies content entries per category tag. Other-category
// files are excluded: they are not guide content.
func CountByCategory(entries []InputEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		if e.Category == CategoryOther || e.Category == CategoryNone {
			continue
		}
		counts[e.Category.String()]++
	}
	return counts
}
