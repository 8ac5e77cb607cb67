// Package config loads and models the two root documents of a guide input
// tree: the settings document (guide.yaml) and the optional variables
// document (variables.yaml). Shape problems are fatal ConfigErrors; value
// problems are left for the validator so they surface as findings.
package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Root document and style bundle filenames form the input contract.
const (
	SettingsFileName  = "guide.yaml"
	VariablesFileName = "variables.yaml"

	LayoutTemplateName = "master.html"
	StyleSettingsName  = "settings.style"
	StylesheetName     = "style.css"

	DefaultStyleName = "default"
)

// RequiredStyleFiles lists the three files a complete style bundle holds.
func RequiredStyleFiles() []string {
	return []string{LayoutTemplateName, StyleSettingsName, StylesheetName}
}

// Publication statuses accepted for the status identity field.
const (
	StatusDraft   = "draft"
	StatusActive  = "active"
	StatusRetired = "retired"
	StatusUnknown = "unknown"
)

// ValidStatus reports whether s is one of the accepted publication statuses.
// The loader lowercases the field, so comparison is exact.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusActive, StatusRetired, StatusUnknown:
		return true
	default:
		return false
	}
}

// StatusValues returns the accepted statuses for use in messages.
func StatusValues() []string {
	return []string{StatusDraft, StatusActive, StatusRetired, StatusUnknown}
}

// MenuEntry is one ordered navigation entry from the settings document.
// The wire form is a mapping of display title to either a boolean (target
// derived from the title) or an explicit page/folder target.
type MenuEntry struct {
	Title   string
	Target  string
	Enabled bool
}

// GuideConfig is the typed settings document. The four identity fields
// (ID, Status, FHIRVersion, Canonical) drive descriptor synthesis; they are
// never defaulted, absent stays absent.
type GuideConfig struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	FHIRVersion string `json:"fhirVersion"`
	Canonical   string `json:"canonical"`

	Title     string `json:"title"`
	URLKey    string `json:"url-key"`
	StyleName string `json:"style-name"`
	Version   string `json:"version"`

	Menu []MenuEntry `json:"menu"`

	// Passthrough preserves unknown top-level keys verbatim. Forward
	// compatibility over strictness.
	Passthrough map[string]any `json:"-"`
}

// VariableSet maps variable token names to replacement text.
type VariableSet map[string]string

// IdentityFieldNames lists the four identity fields in canonical order.
func IdentityFieldNames() []string {
	return []string{"id", "status", "fhirVersion", "canonical"}
}

// MissingIdentityFields returns the absent identity fields in canonical
// order. A present but invalid status is not "missing"; the validator
// rejects it separately.
func (c *GuideConfig) MissingIdentityFields() []string {
	var missing []string
	if c.ID == "" {
		missing = append(missing, "id")
	}
	if c.Status == "" {
		missing = append(missing, "status")
	}
	if c.FHIRVersion == "" {
		missing = append(missing, "fhirVersion")
	}
	if c.Canonical == "" {
		missing = append(missing, "canonical")
	}
	return missing
}

// DescriptorEligible reports whether descriptor synthesis may run: all four
// identity fields present and the status within its closed set.
func (c *GuideConfig) DescriptorEligible() bool {
	return len(c.MissingIdentityFields()) == 0 && ValidStatus(c.Status)
}

// FieldViolations applies value rules to the present identity fields and
// returns them keyed by field name. Absent fields are not violations here;
// absence is a synthesis concern, not a validation failure.
func (c *GuideConfig) FieldViolations() validation.Errors {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Status,
			validation.In(StatusDraft, StatusActive, StatusRetired, StatusUnknown).
				Error("must be one of: draft, active, retired, unknown")),
		validation.Field(&c.Canonical,
			is.RequestURL.Error("must be an absolute URL")),
	)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validation.Errors); ok {
		return verrs
	}
	return validation.Errors{"settings": err}
}

// StyleNameOrDefault returns the configured style bundle name, falling back
// to the default bundle when the field is absent.
func (c *GuideConfig) StyleNameOrDefault() string {
	if c.StyleName == "" {
		return DefaultStyleName
	}
	return c.StyleName
}
