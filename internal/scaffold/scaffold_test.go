package scaffold

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
	"github.com/ArdonToonstra/simplifier-ig/internal/frontmatter"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
	"github.com/ArdonToonstra/simplifier-ig/internal/validate"
)

func TestInitFreshTarget(t *testing.T) {
	target := filepath.Join(t.TempDir(), "input")

	res, err := Init(target, Options{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if res.FoldersCreated != 7 {
		t.Errorf("folders created = %d, want 7", res.FoldersCreated)
	}
	if res.FilesCreated != 10 {
		t.Errorf("files created = %d, want 10", res.FilesCreated)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("nothing should be skipped on a fresh target: %v", res.Skipped)
	}

	for _, dir := range []string{"resources", "examples", "pages", "images", "pagetemplates", "pagetemplates-artifacts", "styles/default"} {
		info, err := os.Stat(filepath.Join(target, filepath.FromSlash(dir)))
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", dir, err)
		}
	}

	cfg, _, err := config.LoadDir(target)
	if err != nil {
		t.Fatalf("scaffolded settings document does not load: %v", err)
	}
	if !cfg.DescriptorEligible() {
		t.Errorf("scaffolded guide should be descriptor-eligible: %+v", cfg)
	}
	if cfg.ID != "my.implementation.guide" || cfg.URLKey != "my-implementation-guide" {
		t.Errorf("derived identifiers = %q / %q", cfg.ID, cfg.URLKey)
	}
	if cfg.Status != config.StatusDraft || cfg.Canonical != CanonicalPlaceholder {
		t.Errorf("identity fields = %q / %q", cfg.Status, cfg.Canonical)
	}
}

func TestWelcomePageCarriesTitle(t *testing.T) {
	target := filepath.Join(t.TempDir(), "input")
	if _, err := Init(target, Options{}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(target, "pages", "index.md"))
	if err != nil {
		t.Fatal(err)
	}
	fm, body, had, err := frontmatter.Split(content)
	if err != nil || !had {
		t.Fatalf("welcome page should carry frontmatter: had=%v err=%v", had, err)
	}
	fields, err := frontmatter.ParseYAML(fm)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if fields["title"] != "Home" {
		t.Errorf("title = %v, want Home", fields["title"])
	}
	if !strings.HasPrefix(string(body), "# {{page-title}}\n") {
		t.Errorf("body = %q", body)
	}
}

func TestScaffoldedGuidePassesValidation(t *testing.T) {
	target := filepath.Join(t.TempDir(), "input")
	if _, err := Init(target, Options{}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	cfg, _, err := config.LoadDir(target)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	entries, err := scan.NewScanner(target).Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	report := validate.New().Validate(cfg, nil, entries)
	if len(report.Findings) != 0 {
		t.Errorf("scaffolded guide should validate cleanly, got %+v", report.Findings)
	}
}

func TestInitCustomNameAndStyle(t *testing.T) {
	target := filepath.Join(t.TempDir(), "input")

	_, err := Init(target, Options{Name: "Acme FHIR Profiles", StyleName: "corporate"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	cfg, _, err := config.LoadDir(target)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if cfg.Title != "Acme FHIR Profiles" {
		t.Errorf("title = %q", cfg.Title)
	}
	if cfg.ID != "acme.fhir.profiles" || cfg.URLKey != "acme-fhir-profiles" {
		t.Errorf("derived identifiers = %q / %q", cfg.ID, cfg.URLKey)
	}
	if cfg.StyleName != "corporate" {
		t.Errorf("style name = %q", cfg.StyleName)
	}

	for _, name := range config.RequiredStyleFiles() {
		if _, err := os.Stat(filepath.Join(target, "styles", "corporate", name)); err != nil {
			t.Errorf("style bundle missing %s: %v", name, err)
		}
	}
}

func TestInitRefusesNonEmptyTarget(t *testing.T) {
	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(target, "leftover.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Init(target, Options{})
	if err == nil {
		t.Fatal("expected a refusal for a non-empty target")
	}
	if !guideerrors.IsCategory(err, guideerrors.CategoryIO) {
		t.Errorf("expected an io error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(target, config.SettingsFileName)); !os.IsNotExist(statErr) {
		t.Error("refusal must not create anything")
	}
}

func TestInitForceNeverOverwrites(t *testing.T) {
	target := t.TempDir()
	ownSettings := "id: keep.me\nstatus: active\n"
	ownPage := "# Mine\n"
	if err := os.WriteFile(filepath.Join(target, config.SettingsFileName), []byte(ownSettings), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(target, "pages"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "pages", "index.md"), []byte(ownPage), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Init(target, Options{Force: true})
	if err != nil {
		t.Fatalf("Init with force: %v", err)
	}

	if !slices.Contains(res.Skipped, config.SettingsFileName) {
		t.Errorf("settings document should be reported as skipped: %v", res.Skipped)
	}
	if !slices.Contains(res.Skipped, "pages/index.md") {
		t.Errorf("existing page should be reported as skipped: %v", res.Skipped)
	}

	data, err := os.ReadFile(filepath.Join(target, config.SettingsFileName))
	if err != nil || string(data) != ownSettings {
		t.Errorf("settings document was overwritten: %q", data)
	}
	data, err = os.ReadFile(filepath.Join(target, "pages", "index.md"))
	if err != nil || string(data) != ownPage {
		t.Errorf("existing page was overwritten: %q", data)
	}

	// The gaps were still filled.
	if _, err := os.Stat(filepath.Join(target, config.VariablesFileName)); err != nil {
		t.Errorf("variables document not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "styles", "default", config.LayoutTemplateName)); err != nil {
		t.Errorf("layout template not created: %v", err)
	}
}

func TestInitIsIdempotentUnderForce(t *testing.T) {
	target := filepath.Join(t.TempDir(), "input")
	if _, err := Init(target, Options{}); err != nil {
		t.Fatalf("first Init: %v", err)
	}

	res, err := Init(target, Options{Force: true})
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if res.FilesCreated != 0 {
		t.Errorf("second init should create no files, created %d", res.FilesCreated)
	}
	if len(res.Skipped) != 10 {
		t.Errorf("second init should skip every starter file, skipped %d", len(res.Skipped))
	}
}
