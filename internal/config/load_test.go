package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
)

const sampleGuide = `# Implementation Guide Configuration
title: Acme Core IG
url-key: acme-core
style-name: acme

id: acme.core
status: Draft
fhirVersion: 4.0.1
canonical: https://fhir.acme.org

menu:
  Home: index.md
  Artifacts: artifacts
  Background: true
  Legacy: false

publisher: Acme Corp
`

func TestParseGuideTypedFields(t *testing.T) {
	cfg, err := ParseGuide([]byte(sampleGuide), "guide.yaml")
	require.NoError(t, err)

	assert.Equal(t, "acme.core", cfg.ID)
	assert.Equal(t, "draft", cfg.Status, "status is case-normalized at load")
	assert.Equal(t, "4.0.1", cfg.FHIRVersion)
	assert.Equal(t, "https://fhir.acme.org", cfg.Canonical)
	assert.Equal(t, "Acme Core IG", cfg.Title)
	assert.Equal(t, "acme-core", cfg.URLKey)
	assert.Equal(t, "acme", cfg.StyleName)
}

func TestParseGuideMenuPreservesOrder(t *testing.T) {
	cfg, err := ParseGuide([]byte(sampleGuide), "guide.yaml")
	require.NoError(t, err)
	require.Len(t, cfg.Menu, 4)

	assert.Equal(t, MenuEntry{Title: "Home", Target: "index.md", Enabled: true}, cfg.Menu[0])
	assert.Equal(t, MenuEntry{Title: "Artifacts", Target: "artifacts", Enabled: true}, cfg.Menu[1])
	assert.Equal(t, MenuEntry{Title: "Background", Enabled: true}, cfg.Menu[2])
	assert.Equal(t, MenuEntry{Title: "Legacy", Enabled: false}, cfg.Menu[3])
}

func TestParseGuidePassthroughKeepsUnknownKeys(t *testing.T) {
	cfg, err := ParseGuide([]byte(sampleGuide), "guide.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", cfg.Passthrough["publisher"])
}

func TestParseGuideShapeErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"top level sequence", "- a\n- b\n"},
		{"status is a sequence", "status:\n  - draft\n"},
		{"menu is a scalar", "menu: nope\n"},
		{"menu entry maps to sequence", "menu:\n  Home:\n    - a\n"},
		{"empty document", ""},
		{"not yaml", "a: b: c: d\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseGuide([]byte(tc.doc), "guide.yaml")
			require.Error(t, err)
			assert.True(t, guideerrors.IsCategory(err, guideerrors.CategoryConfig),
				"expected a config error, got %v", err)
		})
	}
}

func TestParseGuideAbsentIdentityStaysAbsent(t *testing.T) {
	cfg, err := ParseGuide([]byte("title: Minimal\n"), "guide.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "status", "fhirVersion", "canonical"}, cfg.MissingIdentityFields())
	assert.False(t, cfg.DescriptorEligible())
}

func TestParseGuideNullIdentityField(t *testing.T) {
	cfg, err := ParseGuide([]byte("id:\nstatus: active\n"), "guide.yaml")
	require.NoError(t, err)
	assert.Contains(t, cfg.MissingIdentityFields(), "id")
	assert.NotContains(t, cfg.MissingIdentityFields(), "status")
}

func TestLoadGuideMissingFile(t *testing.T) {
	_, err := LoadGuide(filepath.Join(t.TempDir(), "guide.yaml"))
	require.Error(t, err)
	assert.True(t, guideerrors.IsCategory(err, guideerrors.CategoryConfig))
}

func TestLoadVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "variables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site-title: Acme IG\nrelease: 1.2.0\n"), 0o644))

	vars, err := LoadVariables(path)
	require.NoError(t, err)
	assert.Equal(t, VariableSet{"site-title": "Acme IG", "release": "1.2.0"}, vars)
}

func TestLoadVariablesMissingFileIsEmptySet(t *testing.T) {
	vars, err := LoadVariables(filepath.Join(t.TempDir(), "variables.yaml"))
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestParseVariablesRejectsDuplicates(t *testing.T) {
	_, err := ParseVariables([]byte("a: one\na: two\n"), "variables.yaml")
	require.Error(t, err)
	assert.True(t, guideerrors.IsCategory(err, guideerrors.CategoryConfig))
}

func TestParseVariablesRejectsNestedValues(t *testing.T) {
	_, err := ParseVariables([]byte("a:\n  b: c\n"), "variables.yaml")
	require.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(sampleGuide), 0o644))

	cfg, vars, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "acme.core", cfg.ID)
	assert.Empty(t, vars, "variables document is optional")
}
