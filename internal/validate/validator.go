// Package validate decides whether a guide input tree is fit for assembly.
// Validation is a pure function of the loaded configuration and the scanned
// entry set: identical inputs always produce the identical report. Policy
// about honoring a blocking report belongs to the caller; the validator
// reports the same findings whether or not it will be obeyed.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
)

// Check identifiers, stable across releases: scripts filter on them.
const (
	CheckSettingsDocument = "settings-document"
	CheckSettingsFields   = "settings-fields"
	CheckContentPresence  = "content-presence"
	CheckPayloadSyntax    = "payload-syntax"
	CheckPageEncoding     = "page-encoding"
	CheckPageFrontmatter  = "page-frontmatter"
	CheckStyleBundle      = "style-bundle"
	CheckMenuReference    = "menu-reference"
	CheckAssetReference   = "asset-reference"
)

// Validator runs the structural checks.
type Validator struct{}

// New creates a validator.
func New() *Validator {
	return &Validator{}
}

// Validate produces the report for one run. cfg may be nil when loading
// failed; loadErr then carries the failure and the settings-document check
// reports it. Content checks still run so one pass surfaces everything.
func (v *Validator) Validate(cfg *config.GuideConfig, loadErr error, entries []scan.InputEntry) *findings.Report {
	report := &findings.Report{FilesTotal: len(entries)}

	v.checkSettingsDocument(report, loadErr)
	if cfg != nil {
		v.checkSettingsFields(report, cfg)
		v.checkMenuReferences(report, cfg, entries)
	}
	v.checkContentPresence(report, entries)
	v.checkPayloads(report, entries)
	v.checkPages(report, entries)
	v.checkStyleBundle(report, cfg, entries)
	v.checkAssetReferences(report, cfg, entries)

	report.Sort()
	return report
}

// checkSettingsDocument reports a failed settings load as a finding so the
// report stays self-contained even though commands treat the load failure
// itself as fatal.
func (v *Validator) checkSettingsDocument(report *findings.Report, loadErr error) {
	if loadErr == nil {
		return
	}
	report.Add(findings.Finding{
		Path:     config.SettingsFileName,
		Category: scan.CategoryNone,
		Severity: findings.SeverityError,
		Check:    CheckSettingsDocument,
		Message:  "settings document missing or unreadable",
		Detail:   loadErr.Error(),
	})
}

// checkSettingsFields surfaces value problems on present identity fields.
// An out-of-set status blocks; a malformed canonical URL only warns.
func (v *Validator) checkSettingsFields(report *findings.Report, cfg *config.GuideConfig) {
	violations := cfg.FieldViolations()
	if len(violations) == 0 {
		return
	}
	for _, field := range sortedKeys(violations) {
		severity := findings.SeverityWarning
		if field == "status" {
			severity = findings.SeverityError
		}
		report.Add(findings.Finding{
			Path:     config.SettingsFileName,
			Category: scan.CategoryNone,
			Severity: severity,
			Check:    CheckSettingsFields,
			Message:  fmt.Sprintf("field %q %s", field, violations[field].Error()),
		})
	}
}

// checkContentPresence warns once when every content-bearing category is
// empty. A metadata-only guide is legal during early authoring.
func (v *Validator) checkContentPresence(report *findings.Report, entries []scan.InputEntry) {
	for _, e := range entries {
		switch e.Category {
		case scan.CategoryResource, scan.CategoryExample, scan.CategoryPage:
			return
		}
	}
	report.Add(findings.Finding{
		Path:     ".",
		Category: scan.CategoryNone,
		Severity: findings.SeverityWarning,
		Check:    CheckContentPresence,
		Message:  "no resources, examples, or pages found",
	})
}

// checkPayloads verifies resources and examples are syntactically valid in
// their declared format. One finding per bad file; content semantics are
// out of scope.
func (v *Validator) checkPayloads(report *findings.Report, entries []scan.InputEntry) {
	for _, e := range entries {
		if e.Category != scan.CategoryResource && e.Category != scan.CategoryExample {
			continue
		}
		if f, bad := payloadFinding(e); bad {
			report.Add(f)
		}
	}
}

// checkPages verifies each page is valid text in its declared encoding and,
// when it opens with frontmatter, that the frontmatter parses.
func (v *Validator) checkPages(report *findings.Report, entries []scan.InputEntry) {
	for _, e := range entries {
		if e.Category != scan.CategoryPage {
			continue
		}
		if f, bad := encodingFinding(e); bad {
			report.Add(f)
			continue // undecodable content has no frontmatter to check
		}
		if f, bad := frontmatterFinding(e); bad {
			report.Add(f)
		}
	}
}

// checkStyleBundle warns per missing expected file in the configured style
// bundle. Assembly proceeds with a fallback style, so never an error.
func (v *Validator) checkStyleBundle(report *findings.Report, cfg *config.GuideConfig, entries []scan.InputEntry) {
	styleName := config.DefaultStyleName
	if cfg != nil {
		styleName = cfg.StyleNameOrDefault()
	}
	prefix := scan.DirStyles + "/" + styleName + "/"

	present := map[string]bool{}
	for _, e := range entries {
		if e.Category != scan.CategoryStyleAsset {
			continue
		}
		if rest, ok := strings.CutPrefix(e.RelPath, prefix); ok {
			present[rest] = true
		}
	}

	for _, name := range config.RequiredStyleFiles() {
		if present[name] {
			continue
		}
		report.Add(findings.Finding{
			Path:     prefix + name,
			Category: scan.CategoryStyleAsset,
			Severity: findings.SeverityWarning,
			Check:    CheckStyleBundle,
			Message:  fmt.Sprintf("expected style file %q is missing", name),
		})
	}
}

// checkMenuReferences warns when an enabled menu entry names a page the
// scan did not find. Only explicit ".md" targets are checked: folder
// targets may be filled by generated artifact listings and cannot be
// resolved against the input tree.
func (v *Validator) checkMenuReferences(report *findings.Report, cfg *config.GuideConfig, entries []scan.InputEntry) {
	pages := map[string]bool{}
	for _, e := range entries {
		if e.Category != scan.CategoryPage {
			continue
		}
		pages[strings.TrimPrefix(e.RelPath, scan.DirPages+"/")] = true
	}

	for _, entry := range cfg.Menu {
		if !entry.Enabled {
			continue
		}
		target := entry.Target
		if target == "" {
			target = strings.ToLower(entry.Title)
		}
		if !strings.HasSuffix(strings.ToLower(target), ".md") || pages[target] {
			continue
		}
		report.Add(findings.Finding{
			Path:     config.SettingsFileName,
			Category: scan.CategoryNone,
			Severity: findings.SeverityWarning,
			Check:    CheckMenuReference,
			Message:  fmt.Sprintf("menu entry %q points at %q, which was not found under %s/", entry.Title, target, scan.DirPages),
		})
	}
}

// checkAssetReferences warns when the configured layout template references
// a local asset the scan did not find.
func (v *Validator) checkAssetReferences(report *findings.Report, cfg *config.GuideConfig, entries []scan.InputEntry) {
	styleName := config.DefaultStyleName
	if cfg != nil {
		styleName = cfg.StyleNameOrDefault()
	}
	layoutPath := scan.DirStyles + "/" + styleName + "/" + config.LayoutTemplateName

	var layout *scan.InputEntry
	known := map[string]bool{}
	for i, e := range entries {
		known[e.RelPath] = true
		if e.RelPath == layoutPath {
			layout = &entries[i]
		}
	}
	if layout == nil {
		return // style-bundle check already covers the missing layout
	}

	for _, ref := range extractAssetRefs(layout.Content) {
		if resolveAssetRef(ref, layoutPath, known) {
			continue
		}
		report.Add(findings.Finding{
			Path:     layoutPath,
			Category: scan.CategoryStyleAsset,
			Severity: findings.SeverityWarning,
			Check:    CheckAssetReference,
			Message:  fmt.Sprintf("referenced asset %q was not found in the input tree", ref),
		})
	}
}

// sortedKeys returns map keys in lexical order for deterministic reporting.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
