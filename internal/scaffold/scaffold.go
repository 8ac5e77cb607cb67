// Package scaffold creates a fresh guide input tree: the category folders,
// a starter settings document, a welcome page, the default style bundle and
// the per-type artifact templates. Initialization never overwrites anything;
// with force it fills the gaps in a non-empty directory and reports what it
// left alone.
package scaffold

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
	"github.com/ArdonToonstra/simplifier-ig/internal/frontmatter"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
)

// DefaultGuideName is used when init is not given a name.
const DefaultGuideName = "My Implementation Guide"

// CanonicalPlaceholder seeds the canonical field; users replace it with
// their own base URL before publishing.
const CanonicalPlaceholder = "https://example.org/fhir"

// Options customize the scaffolded guide.
type Options struct {
	Name      string
	StyleName string
	// Force allows initializing a non-empty directory. Existing files are
	// still never overwritten.
	Force bool
}

// Result summarizes what Init did.
type Result struct {
	Path           string
	FoldersCreated int
	FilesCreated   int
	// Skipped lists starter files that already existed and were left alone.
	Skipped []string
}

// Init creates the guide skeleton under target. An existing non-empty
// target is refused unless opts.Force is set; the settings document is
// never overwritten under any flag.
func Init(target string, opts Options) (*Result, error) {
	if opts.Name == "" {
		opts.Name = DefaultGuideName
	}
	if opts.StyleName == "" {
		opts.StyleName = config.DefaultStyleName
	}

	if err := checkTarget(target, opts.Force); err != nil {
		return nil, err
	}

	res := &Result{Path: target}

	for _, d := range categoryDirs(opts.StyleName) {
		abs := filepath.Join(target, filepath.FromSlash(d))
		if _, err := os.Stat(abs); err == nil {
			continue
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, guideerrors.MkdirFailed(abs, err)
		}
		res.FoldersCreated++
	}

	files, err := starterFiles(opts)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		abs := filepath.Join(target, filepath.FromSlash(f.rel))
		if _, err := os.Stat(abs); err == nil {
			res.Skipped = append(res.Skipped, f.rel)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, guideerrors.MkdirFailed(filepath.Dir(abs), err)
		}
		if err := os.WriteFile(abs, []byte(f.content), 0o644); err != nil {
			return nil, guideerrors.WriteFailed(abs, err)
		}
		res.FilesCreated++
	}

	return res, nil
}

func checkTarget(target string, force bool) error {
	entries, err := os.ReadDir(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return guideerrors.Wrap(err, guideerrors.CategoryIO, guideerrors.SeverityFatal,
			"cannot inspect target directory").WithContext("path", target)
	}
	if len(entries) > 0 && !force {
		return guideerrors.New(guideerrors.CategoryIO, guideerrors.SeverityFatal,
			"target directory is not empty; use --force to continue (existing files are never overwritten)").
			WithContext("path", target)
	}
	return nil
}

func categoryDirs(styleName string) []string {
	return []string{
		scan.DirResources,
		scan.DirExamples,
		scan.DirPages,
		scan.DirImages,
		scan.DirPageTemplates,
		scan.DirTypeTemplates,
		path.Join(scan.DirStyles, styleName),
	}
}

type starterFile struct {
	rel     string
	content string
}

func starterFiles(opts Options) ([]starterFile, error) {
	welcome, err := welcomePage()
	if err != nil {
		return nil, err
	}
	styleDir := path.Join(scan.DirStyles, opts.StyleName)
	return []starterFile{
		{config.SettingsFileName, settingsDocument(opts)},
		{config.VariablesFileName, variablesDocument()},
		{path.Join(scan.DirPages, "index.md"), welcome},
		{path.Join(styleDir, config.LayoutTemplateName), layoutTemplate(opts.StyleName)},
		{path.Join(styleDir, config.StyleSettingsName), styleSettings(opts.StyleName)},
		{path.Join(styleDir, config.StylesheetName), stylesheet()},
		{path.Join(scan.DirTypeTemplates, "structuredefinition.md"), artifactTemplate(true)},
		{path.Join(scan.DirTypeTemplates, "valueset.md"), artifactTemplate(false)},
		{path.Join(scan.DirTypeTemplates, "codesystem.md"), artifactTemplate(false)},
		{path.Join(scan.DirTypeTemplates, "examples.md"), artifactTemplate(false)},
	}, nil
}

// slugify lowercases the guide name and joins its words with sep.
func slugify(name, sep string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), sep)
}

func settingsDocument(opts Options) string {
	return fmt.Sprintf(`# Guide settings. The id, status, fhirVersion and canonical fields drive
# descriptor synthesis; remove none of them unless you also forgo the
# descriptor artifact.
title: %s
id: %s
status: %s
fhirVersion: 4.0.1
canonical: %s
url-key: %s
style-name: %s

menu:
  Home: index.md
  Artifacts: artifacts
`, opts.Name, slugify(opts.Name, "."), config.StatusDraft, CanonicalPlaceholder,
		slugify(opts.Name, "-"), opts.StyleName)
}

func variablesDocument() string {
	return `# Values substituted for {{ig-var: name}} tokens in pages and templates.
org-name: My Organization
`
}

// welcomePage carries a frontmatter title so the navigation labels the
// landing page "Home", matching the starter menu entry.
func welcomePage() (string, error) {
	body := []byte(`# {{page-title}}

Welcome to this FHIR Implementation Guide.

## Overview

This Implementation Guide defines the FHIR resources and constraints for your use case.
`)
	page, err := frontmatter.Compose(map[string]any{"title": "Home"}, body)
	if err != nil {
		return "", guideerrors.InternalError("failed to compose welcome page", err)
	}
	return string(page), nil
}

func layoutTemplate(styleName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{page-title}} - {{guide-title}}</title>
    <link rel="stylesheet" href="{{root}}/styles/%s/style.css">
</head>
<body>
    <header><h1>{{guide-title}}</h1><nav>{{menu}}</nav></header>
    <main><aside>{{toc}}</aside><article>{{content}}</article></main>
</body>
</html>
`, styleName)
}

func styleSettings(styleName string) string {
	return fmt.Sprintf("name: %s\nversion: 1.0.0\n", styleName)
}

func stylesheet() string {
	return "/* Add your custom styles here */\n"
}

// artifactTemplate returns a per-type template. Structure definitions also
// get the element tree placeholder on top of the rendered artifact.
func artifactTemplate(withTree bool) string {
	if withTree {
		return "# {{page-title}}\n\n{{tree:{{ig-var: file-name }}}}\n\n{{render:{{ig-var: file-name }}}}\n"
	}
	return "# {{page-title}}\n\n{{render:{{ig-var: file-name }}}}\n"
}
