// Package navigation derives the optional table of contents for an
// assembled guide. The TOC follows the settings menu order; page titles
// come from frontmatter when present, else from the first Markdown heading,
// else from the filename. Output is deterministic: menu order first, then
// lexical page order within a folder.
package navigation

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
	"github.com/ArdonToonstra/simplifier-ig/internal/frontmatter"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
)

// TOCFileName is the artifact written at the output root.
const TOCFileName = "toc.yaml"

// Entry is one table-of-contents node.
type Entry struct {
	Title    string  `yaml:"title"`
	Target   string  `yaml:"target"`
	Children []Entry `yaml:"children,omitempty"`
}

// BuildTOC derives the ordered TOC from the menu and the scanned pages.
// Without an enabled menu it falls back to a flat listing of every page.
func BuildTOC(cfg *config.GuideConfig, entries []scan.InputEntry) []Entry {
	pages := pagesByRel(entries)

	var toc []Entry
	if cfg != nil {
		for _, m := range cfg.Menu {
			if !m.Enabled {
				continue
			}
			target := m.Target
			if target == "" {
				target = strings.ToLower(m.Title)
			}
			if strings.HasSuffix(strings.ToLower(target), ".md") {
				title := m.Title
				if e, ok := pages[target]; ok {
					if t := pageTitle(e); t != "" {
						title = t
					}
				}
				toc = append(toc, Entry{Title: title, Target: scan.DirPages + "/" + target})
				continue
			}
			toc = append(toc, Entry{
				Title:    m.Title,
				Target:   scan.DirPages + "/" + target + "/",
				Children: folderChildren(entries, target),
			})
		}
	}
	if len(toc) > 0 {
		return toc
	}

	// No usable menu: list every page in scan order.
	for _, e := range entries {
		if e.Category != scan.CategoryPage {
			continue
		}
		toc = append(toc, Entry{Title: titleOrStem(e), Target: e.RelPath})
	}
	return toc
}

// WriteTOC renders the TOC as YAML into root.
func WriteTOC(root string, cfg *config.GuideConfig, entries []scan.InputEntry) error {
	toc := BuildTOC(cfg, entries)
	if toc == nil {
		toc = []Entry{}
	}
	data, err := yaml.Marshal(toc)
	if err != nil {
		return guideerrors.InternalError("toc marshaling failed", err)
	}
	dest := filepath.Join(root, TOCFileName)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return guideerrors.WriteFailed(dest, err)
	}
	return nil
}

func pagesByRel(entries []scan.InputEntry) map[string]scan.InputEntry {
	pages := make(map[string]scan.InputEntry)
	for _, e := range entries {
		if e.Category != scan.CategoryPage {
			continue
		}
		pages[strings.TrimPrefix(e.RelPath, scan.DirPages+"/")] = e
	}
	return pages
}

// folderChildren lists the pages under one menu folder, in scan order.
func folderChildren(entries []scan.InputEntry, folder string) []Entry {
	prefix := scan.DirPages + "/" + folder + "/"
	var children []Entry
	for _, e := range entries {
		if e.Category != scan.CategoryPage || !strings.HasPrefix(e.RelPath, prefix) {
			continue
		}
		children = append(children, Entry{Title: titleOrStem(e), Target: e.RelPath})
	}
	return children
}

func titleOrStem(e scan.InputEntry) string {
	if t := pageTitle(e); t != "" {
		return t
	}
	base := path.Base(e.RelPath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// pageTitle extracts a display title from one page: the frontmatter title
// field when present, else the first Markdown heading. Returns "" when
// neither exists or the page is not Markdown.
func pageTitle(e scan.InputEntry) string {
	fm, body, had, err := frontmatter.Split(e.Content)
	if err != nil {
		return ""
	}
	if had {
		if fields, parseErr := frontmatter.ParseYAML(fm); parseErr == nil {
			if t, ok := fields["title"].(string); ok && strings.TrimSpace(t) != "" {
				return strings.TrimSpace(t)
			}
		}
	}
	if strings.ToLower(path.Ext(e.RelPath)) != ".md" {
		return ""
	}
	return firstHeading(body)
}

// firstHeading returns the text of the first heading in a Markdown body.
func firstHeading(body []byte) string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		title = headingText(h, body)
		return gmast.WalkStop, nil
	})
	return strings.TrimSpace(title)
}

// headingText flattens the text nodes of a heading. Inline markup is
// dropped, not rendered.
func headingText(h *gmast.Heading, source []byte) string {
	var sb strings.Builder
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *gmast.Text:
			sb.Write(node.Segment.Value(source))
		case *gmast.CodeSpan, *gmast.Emphasis:
			for gc := node.FirstChild(); gc != nil; gc = gc.NextSibling() {
				if t, ok := gc.(*gmast.Text); ok {
					sb.Write(t.Segment.Value(source))
				}
			}
		}
	}
	return sb.String()
}
