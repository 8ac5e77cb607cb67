package findings

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats a report for output.
type Formatter interface {
	Format(w io.Writer, report *Report, inputPath string) error
}

// TextFormatter formats reports as human-readable text.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs the report in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, report *Report, inputPath string) error {
	if _, err := fmt.Fprintf(w, "Validating guide in: %s\n", inputPath); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, finding := range report.Findings {
		if err := f.formatFinding(w, finding); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	// Summary
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %d files scanned\n", report.FilesTotal); err != nil {
		return err
	}

	errorCount := report.ErrorCount()
	warningCount := report.WarningCount()
	infoCount := report.InfoCount()

	if errorCount > 0 {
		if _, err := fmt.Fprintf(w, "  %d error%s (blocks generation)\n", errorCount, pluralize(errorCount)); err != nil {
			return err
		}
	}
	if warningCount > 0 {
		if _, err := fmt.Fprintf(w, "  %d warning%s (should fix)\n", warningCount, pluralize(warningCount)); err != nil {
			return err
		}
	}
	if infoCount > 0 {
		if _, err := fmt.Fprintf(w, "  %d info\n", infoCount); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return f.printFinalMessage(w, report)
}

// printFinalMessage prints the appropriate closing line based on the report.
func (f *TextFormatter) printFinalMessage(w io.Writer, report *Report) error {
	switch {
	case report.Blocking():
		_, err := fmt.Fprintln(w, "✗ Guide has errors that block generation.")
		return err
	case report.HasWarnings():
		_, err := fmt.Fprintln(w, "⚠ Guide has warnings. Consider fixing before publishing.")
		return err
	case len(report.Findings) > 0:
		_, err := fmt.Fprintln(w, "ℹ All findings are informational.")
		return err
	default:
		_, err := fmt.Fprintln(w, "✓ Guide passes validation.")
		return err
	}
}

// formatFinding formats a single finding.
func (f *TextFormatter) formatFinding(w io.Writer, finding Finding) error {
	var icon string
	switch finding.Severity {
	case SeverityError:
		icon = "✗"
	case SeverityWarning:
		icon = "⚠"
	case SeverityInfo:
		icon = "ℹ"
	}

	if _, err := fmt.Fprintf(w, "%s %s\n", icon, finding.Path); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %s [%s]: %s\n", finding.Severity, finding.Check, finding.Message); err != nil {
		return err
	}
	if finding.Detail != "" {
		for _, line := range strings.Split(strings.TrimSpace(finding.Detail), "\n") {
			if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

// JSONFormatter formats reports as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Path         string        `json:"path"`
	FilesTotal   int           `json:"files_total"`
	Blocking     bool          `json:"blocking"`
	ErrorCount   int           `json:"error_count"`
	WarningCount int           `json:"warning_count"`
	InfoCount    int           `json:"info_count"`
	Findings     []JSONFinding `json:"findings"`
}

// JSONFinding represents a single finding in JSON format.
type JSONFinding struct {
	Path     string `json:"path"`
	Category string `json:"category,omitempty"`
	Severity string `json:"severity"`
	Check    string `json:"check"`
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
}

// Format outputs the report in JSON format.
func (f *JSONFormatter) Format(w io.Writer, report *Report, inputPath string) error {
	output := JSONOutput{
		Path:         inputPath,
		FilesTotal:   report.FilesTotal,
		Blocking:     report.Blocking(),
		ErrorCount:   report.ErrorCount(),
		WarningCount: report.WarningCount(),
		InfoCount:    report.InfoCount(),
		Findings:     make([]JSONFinding, 0, len(report.Findings)),
	}

	for _, finding := range report.Findings {
		output.Findings = append(output.Findings, JSONFinding{
			Path:     finding.Path,
			Category: finding.Category.String(),
			Severity: finding.Severity.String(),
			Check:    finding.Check,
			Message:  finding.Message,
			Detail:   finding.Detail,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
