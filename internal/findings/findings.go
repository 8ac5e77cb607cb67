// Package findings carries the structured issue report shared by the
// validator, the assembler, and the descriptor synthesizer. A report is
// pure data; formatting lives in formatter.go and exit-code policy in the
// command layer.
package findings

import (
	"sort"

	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
)

// Severity indicates the importance level of a finding.
type Severity int

const (
	// SeverityInfo indicates informational notes that never affect outcome.
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues worth fixing that don't block assembly.
	SeverityWarning
	// SeverityError indicates issues that block assembly unless bypassed.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Finding represents a single reported problem.
type Finding struct {
	Path     string            // input-relative path of the offending file, or a root document name
	Category scan.FileCategory // category of the offending entry; CategoryNone for root documents
	Severity Severity
	Check    string // check identifier (e.g. "settings-document", "payload-syntax")
	Message  string // brief description
	Detail   string // optional longer explanation
}

// Report is the ordered finding collection for one run.
type Report struct {
	Findings   []Finding
	FilesTotal int // content files scanned
}

// Add appends findings. Call Sort before presenting the report.
func (r *Report) Add(f ...Finding) {
	r.Findings = append(r.Findings, f...)
}

// Merge appends another report's findings, keeping the larger file total.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Findings = append(r.Findings, other.Findings...)
	if other.FilesTotal > r.FilesTotal {
		r.FilesTotal = other.FilesTotal
	}
}

// Sort applies the canonical report ordering: category rank of the
// offending entry, then lexical path, then check id. Identical inputs must
// always present the identical report, so every producer sorts through
// this single definition.
func (r *Report) Sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Category != b.Category {
			return a.Category.Rank() < b.Category.Rank()
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Check < b.Check
	})
}

// Blocking returns true if any error-severity finding exists.
func (r *Report) Blocking() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any warning-severity finding exists.
func (r *Report) HasWarnings() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity findings.
func (r *Report) ErrorCount() int { return r.count(SeverityError) }

// WarningCount returns the number of warning-severity findings.
func (r *Report) WarningCount() int { return r.count(SeverityWarning) }

// InfoCount returns the number of info-severity findings.
func (r *Report) InfoCount() int { return r.count(SeverityInfo) }

func (r *Report) count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}
