// Package descriptor synthesizes the guide summary artifact written at the
// output root. Synthesis is all or nothing: either every identity field is
// present and valid and a complete artifact is produced, or synthesis is
// skipped with a single warning naming what is missing. A partial artifact
// is never written.
package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
)

// FileName is the artifact's name at the output root.
const FileName = "guide.descriptor.json"

// ResourceType is the constant artifact kind identifier.
const ResourceType = "ImplementationGuide"

// CheckEligibility identifies the synthesis-skip finding.
const CheckEligibility = "descriptor-eligibility"

// GeneratedDescriptor is the artifact object. The first five keys are the
// fixed identity set; Content carries per-category scan counts and is
// omitted entirely for a content-free guide.
type GeneratedDescriptor struct {
	ResourceType string         `json:"resourceType"`
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	FHIRVersion  string         `json:"fhirVersion"`
	URL          string         `json:"url"`
	Content      map[string]int `json:"content,omitempty"`
}

// Synthesizer builds descriptors from configuration and scan counts.
type Synthesizer struct{}

// New creates a synthesizer.
func New() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize returns the artifact when the configuration is eligible. On
// skip the descriptor is nil and the report carries exactly one warning;
// skipping is a normal outcome, not a failure. Identity values are carried
// over verbatim: no trimming, casing, or URL rewriting happens here.
func (s *Synthesizer) Synthesize(cfg *config.GuideConfig, counts map[string]int) (*GeneratedDescriptor, *findings.Report) {
	report := &findings.Report{}

	if reason, ok := ineligible(cfg); ok {
		report.Add(findings.Finding{
			Path:     config.SettingsFileName,
			Category: scan.CategoryNone,
			Severity: findings.SeverityWarning,
			Check:    CheckEligibility,
			Message:  "descriptor synthesis skipped: " + reason,
		})
		return nil, report
	}

	d := &GeneratedDescriptor{
		ResourceType: ResourceType,
		ID:           cfg.ID,
		Status:       cfg.Status,
		FHIRVersion:  cfg.FHIRVersion,
		URL:          cfg.Canonical,
	}
	if len(counts) > 0 {
		d.Content = counts
	}
	return d, report
}

// ineligible explains why synthesis cannot run, if it cannot.
func ineligible(cfg *config.GuideConfig) (string, bool) {
	if cfg == nil {
		return "identity fields missing: " + strings.Join(config.IdentityFieldNames(), ", "), true
	}
	if missing := cfg.MissingIdentityFields(); len(missing) > 0 {
		return "identity fields missing: " + strings.Join(missing, ", "), true
	}
	if !config.ValidStatus(cfg.Status) {
		return fmt.Sprintf("status %q is not one of: %s", cfg.Status, strings.Join(config.StatusValues(), ", ")), true
	}
	return "", false
}

// Write marshals the artifact to outputRoot with stable two-space
// indentation and a trailing newline, and returns the written path.
func Write(outputRoot string, d *GeneratedDescriptor) (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", guideerrors.InternalError("descriptor marshaling failed", err)
	}
	data = append(data, '\n')

	dest := filepath.Join(outputRoot, FileName)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", guideerrors.WriteFailed(dest, err)
	}
	return dest, nil
}
