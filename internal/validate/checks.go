package validate

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/frontmatter"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
)

// payloadFinding checks one resource or example for syntactic validity in
// the format its extension declares. Unknown extensions warn instead of
// failing: authors park scratch files next to real ones.
func payloadFinding(e scan.InputEntry) (findings.Finding, bool) {
	switch strings.ToLower(path.Ext(e.RelPath)) {
	case ".json":
		if json.Valid(e.Content) {
			return findings.Finding{}, false
		}
		return findings.Finding{
			Path:     e.RelPath,
			Category: e.Category,
			Severity: findings.SeverityError,
			Check:    CheckPayloadSyntax,
			Message:  "file is not valid JSON",
		}, true
	case ".xml":
		if err := xmlWellFormed(e.Content); err != nil {
			return findings.Finding{
				Path:     e.RelPath,
				Category: e.Category,
				Severity: findings.SeverityError,
				Check:    CheckPayloadSyntax,
				Message:  "file is not well-formed XML",
				Detail:   err.Error(),
			}, true
		}
		return findings.Finding{}, false
	default:
		return findings.Finding{
			Path:     e.RelPath,
			Category: e.Category,
			Severity: findings.SeverityWarning,
			Check:    CheckPayloadSyntax,
			Message:  fmt.Sprintf("unrecognized payload format %q, expected .json or .xml", path.Ext(e.RelPath)),
		}, true
	}
}

func xmlWellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// encodingFinding checks that a page decodes as UTF-8.
func encodingFinding(e scan.InputEntry) (findings.Finding, bool) {
	if _, _, err := transform.Bytes(encoding.UTF8Validator, e.Content); err != nil {
		return findings.Finding{
			Path:     e.RelPath,
			Category: e.Category,
			Severity: findings.SeverityError,
			Check:    CheckPageEncoding,
			Message:  "file is not valid UTF-8 text",
		}, true
	}
	return findings.Finding{}, false
}

// frontmatterFinding checks that a page opening with a frontmatter block
// closes and parses it. Pages without frontmatter pass untouched.
func frontmatterFinding(e scan.InputEntry) (findings.Finding, bool) {
	fm, _, had, err := frontmatter.Split(e.Content)
	if err != nil {
		return findings.Finding{
			Path:     e.RelPath,
			Category: e.Category,
			Severity: findings.SeverityError,
			Check:    CheckPageFrontmatter,
			Message:  "frontmatter block never closes",
		}, true
	}
	if !had {
		return findings.Finding{}, false
	}
	if _, err := frontmatter.ParseYAML(fm); err != nil {
		return findings.Finding{
			Path:     e.RelPath,
			Category: e.Category,
			Severity: findings.SeverityError,
			Check:    CheckPageFrontmatter,
			Message:  "frontmatter is not valid YAML",
			Detail:   err.Error(),
		}, true
	}
	return findings.Finding{}, false
}

// extractAssetRefs collects asset references from a layout template in
// document order, deduplicated. Only elements that load files matter here;
// anchors navigate and are checked elsewhere.
func extractAssetRefs(content []byte) []string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil // html.Parse recovers from almost anything; give up quietly otherwise
	}

	var refs []string
	seen := map[string]bool{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if ref := assetRefOf(n); ref != "" && !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs
}

func assetRefOf(n *html.Node) string {
	switch n.Data {
	case "link":
		return getAttr(n, "href")
	case "script", "img", "source", "iframe":
		return getAttr(n, "src")
	default:
		return ""
	}
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// resolveAssetRef reports whether a reference is satisfied. References that
// cannot point into the input tree (external URLs, data URIs, references
// carrying a substitution token) count as satisfied because assembly or the
// browser resolves them, not the scan.
func resolveAssetRef(ref, layoutPath string, known map[string]bool) bool {
	if ref == "" || strings.HasPrefix(ref, "#") {
		return true
	}
	if strings.Contains(ref, "{{") {
		return true
	}
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "mailto:") {
		return true
	}

	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return true
	}

	var resolved string
	if strings.HasPrefix(ref, "/") {
		resolved = path.Clean(strings.TrimPrefix(ref, "/"))
	} else {
		resolved = path.Join(path.Dir(layoutPath), ref)
	}
	if resolved == "." || strings.HasPrefix(resolved, "../") {
		return false
	}
	return known[resolved]
}
