package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
)

// writeTree creates files under root from relative path -> content.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestScanClassifiesByDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"guide.yaml":                          "title: T\n",
		"variables.yaml":                      "a: b\n",
		"resources/patient.json":              "{}",
		"examples/patient-example.json":       "{}",
		"pages/index.md":                      "# Hi",
		"images/logo.png":                     "\x89PNG",
		"pagetemplates/default.md":            "x",
		"pagetemplates-artifacts/valueset.md": "y",
		"styles/acme/master.html":             "<html></html>",
		"styles/acme/style.css":               "body{}",
		"README.md":                           "stray",
	})

	entries, err := NewScanner(root).Scan()
	require.NoError(t, err)

	got := map[string]FileCategory{}
	for _, e := range entries {
		got[e.RelPath] = e.Category
	}
	want := map[string]FileCategory{
		"resources/patient.json":              CategoryResource,
		"examples/patient-example.json":       CategoryExample,
		"pages/index.md":                      CategoryPage,
		"images/logo.png":                     CategoryImage,
		"pagetemplates/default.md":            CategoryPageTemplate,
		"pagetemplates-artifacts/valueset.md": CategoryTypeTemplate,
		"styles/acme/master.html":             CategoryStyleAsset,
		"styles/acme/style.css":               CategoryStyleAsset,
		"README.md":                           CategoryOther,
	}
	assert.Equal(t, want, got, "root documents are skipped, everything else classified")
}

func TestScanOrderingIsCanonical(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pages/b.md":        "b",
		"pages/a.md":        "a",
		"resources/z.json":  "{}",
		"examples/e.json":   "{}",
		"images/i.png":      "p",
		"styles/s/main.css": "c",
	})

	entries, err := NewScanner(root).Scan()
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.RelPath)
	}
	want := []string{
		"resources/z.json",
		"examples/e.json",
		"pages/a.md",
		"pages/b.md",
		"images/i.png",
		"styles/s/main.css",
	}
	assert.Equal(t, want, paths)
}

func TestScanIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pages/one.md":     "1",
		"pages/two.md":     "2",
		"resources/r.json": "{}",
	})

	first, err := NewScanner(root).Scan()
	require.NoError(t, err)
	second, err := NewScanner(root).Scan()
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(first, second), "two scans of one tree must be identical")
}

func TestScanCapturesContent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pages/index.md": "# Title\n"})

	entries, err := NewScanner(root).Scan()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []byte("# Title\n"), entries[0].Content)
	assert.Equal(t, int64(8), entries[0].Size)

	// Later edits to the tree must not leak into captured entries.
	require.NoError(t, os.WriteFile(filepath.Join(root, "pages", "index.md"), []byte("changed"), 0o644))
	assert.Equal(t, []byte("# Title\n"), entries[0].Content)
}

func TestScanSkipsHiddenEntries(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pages/index.md":       "x",
		".git/config":          "noise",
		".simplifier/settings": "noise",
		"pages/.draft.md":      "hidden file",
	})

	entries, err := NewScanner(root).Scan()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pages/index.md", entries[0].RelPath)
}

func TestScanTemplateEligibility(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pages/index.md":                "p",
		"pagetemplates/d.md":            "t",
		"pagetemplates-artifacts/vs.md": "t",
		"images/logo.png":               "i",
		"resources/r.json":              "{}",
		"styles/acme/master.html":       "layout",
		"styles/acme/style.css":         "verbatim",
		"styles/acme/settings.style":    "verbatim",
		"styles/acme/fonts/extra.html":  "verbatim",
	})

	entries, err := NewScanner(root).Scan()
	require.NoError(t, err)

	eligible := map[string]bool{}
	for _, e := range entries {
		eligible[e.RelPath] = e.Template
	}
	assert.True(t, eligible["pages/index.md"])
	assert.True(t, eligible["pagetemplates/d.md"])
	assert.True(t, eligible["pagetemplates-artifacts/vs.md"])
	assert.True(t, eligible["styles/acme/master.html"], "layout template substitutes")
	assert.False(t, eligible["styles/acme/style.css"])
	assert.False(t, eligible["styles/acme/settings.style"])
	assert.False(t, eligible["images/logo.png"])
	assert.False(t, eligible["resources/r.json"])
}

func TestScanMissingRoot(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "nope")).Scan()
	require.Error(t, err)
	assert.True(t, guideerrors.IsCategory(err, guideerrors.CategoryScan))
}

func TestScanRootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "afile")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewScanner(file).Scan()
	require.Error(t, err)
	assert.True(t, guideerrors.IsCategory(err, guideerrors.CategoryScan))
}

func TestScanEmptyRootYieldsNoEntries(t *testing.T) {
	entries, err := NewScanner(t.TempDir()).Scan()
	require.NoError(t, err)
	assert.Empty(t, entries, "empty optional directories are not an error")
}

func TestCountByCategory(t *testing.T) {
	entries := []InputEntry{
		{RelPath: "resources/a.json", Category: CategoryResource},
		{RelPath: "resources/b.json", Category: CategoryResource},
		{RelPath: "pages/i.md", Category: CategoryPage},
		{RelPath: "stray.txt", Category: CategoryOther},
	}
	counts := CountByCategory(entries)
	assert.Equal(t, map[string]int{"resource": 2, "page": 1}, counts, "other-category files are not content")
}

func TestCategoryForDirIsPure(t *testing.T) {
	cases := map[string]FileCategory{
		"resources":               CategoryResource,
		"examples":                CategoryExample,
		"pages":                   CategoryPage,
		"images":                  CategoryImage,
		"pagetemplates":           CategoryPageTemplate,
		"pagetemplates-artifacts": CategoryTypeTemplate,
		"styles":                  CategoryStyleAsset,
		"anything-else":           CategoryOther,
	}
	for dir, want := range cases {
		if got := CategoryForDir(dir); got != want {
			t.Errorf("CategoryForDir(%q): expected %v, got %v", dir, want, got)
		}
	}
}
