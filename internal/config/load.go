package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
)

// LoadDir reads both root documents from an input root. The settings
// document is required; the variables document is optional.
func LoadDir(inputDir string) (*GuideConfig, VariableSet, error) {
	cfg, err := LoadGuide(filepath.Join(inputDir, SettingsFileName))
	if err != nil {
		return nil, nil, err
	}
	vars, err := LoadVariables(filepath.Join(inputDir, VariablesFileName))
	if err != nil {
		return nil, nil, err
	}
	return cfg, vars, nil
}

// LoadGuide reads and parses the settings document.
func LoadGuide(path string) (*GuideConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, guideerrors.ConfigNotFound(path)
		}
		return nil, guideerrors.ConfigParseFailed(path, err)
	}
	return ParseGuide(data, path)
}

// ParseGuide parses settings document bytes. The document root must be a
// mapping; typed fields must be scalars and the menu a mapping. Anything
// else is a fatal ConfigError. Unknown keys pass through untouched.
func ParseGuide(data []byte, path string) (*GuideConfig, error) {
	root, err := documentRoot(data, path, SettingsFileName)
	if err != nil {
		return nil, err
	}

	cfg := &GuideConfig{Passthrough: map[string]any{}}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		key := keyNode.Value

		switch key {
		case "id", "title", "status", "fhirVersion", "canonical", "url-key", "style-name", "version":
			val, err := scalarValue(valNode, key, path)
			if err != nil {
				return nil, err
			}
			switch key {
			case "id":
				cfg.ID = val
			case "title":
				cfg.Title = val
			case "status":
				cfg.Status = strings.ToLower(val)
			case "fhirVersion":
				cfg.FHIRVersion = val
			case "canonical":
				cfg.Canonical = val
			case "url-key":
				cfg.URLKey = val
			case "style-name":
				cfg.StyleName = val
			case "version":
				cfg.Version = val
			}
		case "menu":
			menu, err := parseMenu(valNode, path)
			if err != nil {
				return nil, err
			}
			cfg.Menu = menu
		default:
			var v any
			if err := valNode.Decode(&v); err != nil {
				return nil, guideerrors.ConfigParseFailed(path, err)
			}
			cfg.Passthrough[key] = v
		}
	}
	return cfg, nil
}

// LoadVariables reads and parses the variables document. A missing file is
// an empty set, not an error.
func LoadVariables(path string) (VariableSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return VariableSet{}, nil
		}
		return nil, guideerrors.VariablesParseFailed(path, err)
	}
	return ParseVariables(data, path)
}

// ParseVariables parses variables document bytes into a flat string map.
// Keys must be unique and values scalar.
func ParseVariables(data []byte, path string) (VariableSet, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return VariableSet{}, nil
	}
	root, err := documentRoot(data, path, VariablesFileName)
	if err != nil {
		return nil, err
	}

	vars := make(VariableSet, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		name := keyNode.Value
		if _, dup := vars[name]; dup {
			return nil, guideerrors.New(guideerrors.CategoryConfig, guideerrors.SeverityFatal,
				fmt.Sprintf("duplicate variable name %q", name)).WithContext("path", path)
		}
		val, err := scalarValue(valNode, name, path)
		if err != nil {
			return nil, err
		}
		vars[name] = val
	}
	return vars, nil
}

// documentRoot unmarshals data and returns the root mapping node.
func documentRoot(data []byte, path, docName string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		if docName == VariablesFileName {
			return nil, guideerrors.VariablesParseFailed(path, err)
		}
		return nil, guideerrors.ConfigParseFailed(path, err)
	}
	if len(doc.Content) == 0 {
		return nil, guideerrors.New(guideerrors.CategoryConfig, guideerrors.SeverityFatal,
			fmt.Sprintf("%s is empty", docName)).WithContext("path", path)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, guideerrors.New(guideerrors.CategoryConfig, guideerrors.SeverityFatal,
			fmt.Sprintf("%s must be a mapping at the top level", docName)).WithContext("path", path)
	}
	return root, nil
}

// scalarValue extracts the trimmed text of a scalar node. Null reads as
// absent. Sequences and mappings are the wrong shape for typed fields.
func scalarValue(node *yaml.Node, field, path string) (string, error) {
	if node.Tag == "!!null" {
		return "", nil
	}
	if node.Kind != yaml.ScalarNode {
		return "", guideerrors.New(guideerrors.CategoryConfig, guideerrors.SeverityFatal,
			fmt.Sprintf("field %q must be a scalar value", field)).WithContext("path", path)
	}
	return strings.TrimSpace(node.Value), nil
}

// parseMenu decodes the ordered menu mapping. Insertion order is
// load-bearing: yaml.Node traversal keeps it, a Go map would not.
func parseMenu(node *yaml.Node, path string) ([]MenuEntry, error) {
	if node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, guideerrors.New(guideerrors.CategoryConfig, guideerrors.SeverityFatal,
			"field \"menu\" must be a mapping of titles to targets").WithContext("path", path)
	}

	entries := make([]MenuEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		entry := MenuEntry{Title: keyNode.Value}

		switch {
		case valNode.Tag == "!!bool":
			entry.Enabled = valNode.Value == "true"
		case valNode.Tag == "!!null":
			entry.Enabled = true
		case valNode.Kind == yaml.ScalarNode:
			entry.Enabled = true
			entry.Target = strings.TrimSpace(valNode.Value)
		default:
			return nil, guideerrors.New(guideerrors.CategoryConfig, guideerrors.SeverityFatal,
				fmt.Sprintf("menu entry %q must map to a page, folder, or boolean", entry.Title)).
				WithContext("path", path)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
