package assemble

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
)

func entry(rel, content string) scan.InputEntry {
	cat := scan.CategoryOther
	if top, _, ok := strings.Cut(rel, "/"); ok {
		cat = scan.CategoryForDir(top)
	}
	template := cat.TemplateEligible() ||
		(cat == scan.CategoryStyleAsset && path.Base(rel) == config.LayoutTemplateName)
	return scan.InputEntry{
		RelPath:  rel,
		Category: cat,
		Template: template,
		Size:     int64(len(content)),
		Content:  []byte(content),
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", root, err)
	}
	return out
}

func TestAssembleMirrorsTree(t *testing.T) {
	entries := []scan.InputEntry{
		entry("resources/patient.json", `{"resourceType":"StructureDefinition"}`),
		entry("examples/one.json", `{"resourceType":"Patient"}`),
		entry("pages/index.md", "# Welcome\n"),
		entry("images/logo.png", "\x89PNG\r\n"),
		entry("styles/default/style.css", "body {}\n"),
		entry("README.md", "not guide content\n"), // other: stays behind
	}
	out := t.TempDir()

	report, err := New(nil, UnresolvedWarn).Assemble(out, entries)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(report.Findings) != 0 {
		t.Errorf("expected no findings, got %+v", report.Findings)
	}

	got := readTree(t, out)
	want := map[string]string{
		"resources/patient.json":   `{"resourceType":"StructureDefinition"}`,
		"examples/one.json":        `{"resourceType":"Patient"}`,
		"pages/index.md":           "# Welcome\n",
		"images/logo.png":          "\x89PNG\r\n",
		"styles/default/style.css": "body {}\n",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("output tree mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestAssembleSubstitutesTokens(t *testing.T) {
	vars := config.VariableSet{"org-name": "Acme Corp", "release": "2.1.0"}
	entries := []scan.InputEntry{
		entry("pages/about.md", "Published by {{ig-var: org-name}}, release {{ig-var:release}}.\n"),
		entry("pagetemplates-artifacts/profile.md", "# {{ig-var: org-name}} profiles\n"),
		entry("styles/default/master.html", "<title>{{ig-var: org-name}}</title>"),
	}
	out := t.TempDir()

	report, err := New(vars, UnresolvedWarn).Assemble(out, entries)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(report.Findings) != 0 {
		t.Errorf("expected no findings, got %+v", report.Findings)
	}

	got := readTree(t, out)
	if want := "Published by Acme Corp, release 2.1.0.\n"; got["pages/about.md"] != want {
		t.Errorf("pages/about.md = %q, want %q", got["pages/about.md"], want)
	}
	if want := "# Acme Corp profiles\n"; got["pagetemplates-artifacts/profile.md"] != want {
		t.Errorf("artifact template = %q, want %q", got["pagetemplates-artifacts/profile.md"], want)
	}
	if want := "<title>Acme Corp</title>"; got["styles/default/master.html"] != want {
		t.Errorf("layout = %q, want %q", got["styles/default/master.html"], want)
	}
}

func TestAssembleNonTemplateEntriesKeepTokens(t *testing.T) {
	vars := config.VariableSet{"org-name": "Acme"}
	raw := `{"publisher":"{{ig-var: org-name}}"}`
	entries := []scan.InputEntry{entry("resources/def.json", raw)}
	out := t.TempDir()

	report, err := New(vars, UnresolvedWarn).Assemble(out, entries)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(report.Findings) != 0 {
		t.Errorf("expected no findings for non-template entries, got %+v", report.Findings)
	}
	if got := readTree(t, out)["resources/def.json"]; got != raw {
		t.Errorf("resource was rewritten: %q", got)
	}
}

func TestAssembleUnresolvedTokenReportedOncePerName(t *testing.T) {
	entries := []scan.InputEntry{
		entry("pages/a.md", "uses {{ig-var: ghost}} here\n"),
		entry("pages/b.md", "and {{ig-var: ghost}} again, plus {{ig-var: phantom}}\n"),
	}
	out := t.TempDir()

	report, err := New(nil, UnresolvedWarn).Assemble(out, entries)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	got := readTree(t, out)
	if want := "uses {{ig-var: ghost}} here\n"; got["pages/a.md"] != want {
		t.Errorf("unresolved token must stay verbatim, got %q", got["pages/a.md"])
	}

	var ghost, phantom int
	for _, f := range report.Findings {
		if f.Check != CheckUnresolvedVariable {
			t.Errorf("unexpected check %q", f.Check)
		}
		if f.Severity != findings.SeverityWarning {
			t.Errorf("severity = %v, want warning", f.Severity)
		}
		switch {
		case strings.Contains(f.Message, `"ghost"`):
			ghost++
			if f.Path != "pages/a.md" {
				t.Errorf("ghost reported at %q, want first occurrence pages/a.md", f.Path)
			}
		case strings.Contains(f.Message, `"phantom"`):
			phantom++
		default:
			t.Errorf("finding names no known token: %q", f.Message)
		}
	}
	if ghost != 1 || phantom != 1 {
		t.Errorf("ghost=%d phantom=%d, want exactly one finding per name", ghost, phantom)
	}
}

func TestAssembleUnresolvedPolicyError(t *testing.T) {
	entries := []scan.InputEntry{entry("pages/a.md", "{{ig-var: ghost}}\n")}
	out := t.TempDir()

	report, err := New(nil, UnresolvedError).Assemble(out, entries)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !report.Blocking() {
		t.Error("error policy must make unresolved tokens block")
	}
	// Output is still written: the failure is surfaced, not rolled back.
	if _, statErr := os.Stat(filepath.Join(out, "pages", "a.md")); statErr != nil {
		t.Errorf("output should exist despite blocking report: %v", statErr)
	}
}

func TestAssembleTokenSpacing(t *testing.T) {
	vars := config.VariableSet{"name": "X"}
	entries := []scan.InputEntry{
		entry("pages/p.md", "a {{ig-var:name}} b {{ig-var: name}} c {{ig-var:  name  }} d\n"),
	}
	out := t.TempDir()

	if _, err := New(vars, UnresolvedWarn).Assemble(out, entries); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got, want := readTree(t, out)["pages/p.md"], "a X b X c X d\n"; got != want {
		t.Errorf("substitution = %q, want %q", got, want)
	}
}

func TestAssembleBinaryTemplateCopiedVerbatim(t *testing.T) {
	raw := []byte{'{', '{', 0xff, 0xfe, '\n'}
	e := scan.InputEntry{
		RelPath:  "pages/odd.md",
		Category: scan.CategoryPage,
		Template: true,
		Size:     int64(len(raw)),
		Content:  raw,
	}
	out := t.TempDir()

	report, err := New(config.VariableSet{"x": "y"}, UnresolvedWarn).Assemble(out, []scan.InputEntry{e})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if got := readTree(t, out)["pages/odd.md"]; got != string(raw) {
		t.Errorf("binary template must be copied byte for byte, got %q", got)
	}
	if len(report.Findings) != 1 || report.Findings[0].Check != CheckTemplateEncoding {
		t.Fatalf("expected one template-encoding finding, got %+v", report.Findings)
	}
	if report.Findings[0].Severity != findings.SeverityInfo {
		t.Errorf("severity = %v, want info", report.Findings[0].Severity)
	}
}

func TestAssembleIdempotent(t *testing.T) {
	vars := config.VariableSet{"org-name": "Acme"}
	entries := []scan.InputEntry{
		entry("resources/a.json", `{"a":1}`),
		entry("pages/index.md", "# {{ig-var: org-name}}\n"),
		entry("pages/deep/nested/leaf.md", "leaf {{ig-var: ghost}}\n"),
		entry("images/logo.png", "\x89PNG\r\n"),
	}

	first := t.TempDir()
	second := t.TempDir()
	if _, err := New(vars, UnresolvedWarn).Assemble(first, entries); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := New(vars, UnresolvedWarn).Assemble(second, entries); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(readTree(t, first), readTree(t, second)) {
		t.Error("two runs over identical inputs produced different trees")
	}

	// Re-running into an already populated output must converge, not diverge.
	if _, err := New(vars, UnresolvedWarn).Assemble(first, entries); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if !reflect.DeepEqual(readTree(t, first), readTree(t, second)) {
		t.Error("rerun over existing output changed the tree")
	}
}

func TestAssembleEmptyEntrySet(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")
	report, err := New(nil, UnresolvedWarn).Assemble(out, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(report.Findings) != 0 {
		t.Errorf("expected empty report, got %+v", report.Findings)
	}
	info, statErr := os.Stat(out)
	if statErr != nil || !info.IsDir() {
		t.Errorf("output root should exist as a directory: %v", statErr)
	}
}

func TestAssembleOutputRootCollision(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")
	if err := os.WriteFile(out, []byte("in the way"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(nil, UnresolvedWarn).Assemble(out, []scan.InputEntry{entry("pages/a.md", "x\n")})
	if err == nil {
		t.Fatal("expected a fatal error when the output root is a file")
	}
	if !guideerrors.IsCategory(err, guideerrors.CategoryIO) {
		t.Errorf("expected an IO error, got %v", err)
	}
}
