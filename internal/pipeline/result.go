package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ArdonToonstra/simplifier-ig/internal/descriptor"
	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
)

// Outcome is the typed enumeration of final run result states.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeBlocked Outcome = "blocked"
	OutcomeFailed  Outcome = "failed"
)

// Mode identifies which entry point produced a result.
type Mode string

const (
	ModeGenerate   Mode = "generate"
	ModeDescriptor Mode = "descriptor"
)

// Result captures everything one run produced. It is returned even when
// the run failed partway so callers can present the partial report.
type Result struct {
	RunID      string
	Mode       Mode
	InputPath  string
	OutputPath string

	Outcome     Outcome
	FailedStage StageName

	Report *findings.Report
	Counts map[string]int

	Descriptor        *descriptor.GeneratedDescriptor
	DescriptorPath    string
	DescriptorSkipped bool

	Fingerprint string
	Commit      string

	Start     time.Time
	End       time.Time
	Durations map[StageName]time.Duration
}

// Duration is the wall-clock span of the run.
func (r *Result) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("outcome=%s files=%d errors=%d warnings=%d duration=%s",
		r.Outcome, r.Report.FilesTotal, r.Report.ErrorCount(), r.Report.WarningCount(),
		r.Duration().Truncate(time.Millisecond))
}

// reportSchemaVersion is bumped when resultSerializable changes shape.
const reportSchemaVersion = 1

// Report artifact names written by Persist.
const (
	ReportFileJSON = "run-report.json"
	ReportFileText = "run-report.txt"
)

// resultSerializable mirrors Result with JSON-friendly fields.
type resultSerializable struct {
	SchemaVersion  int                      `json:"schema_version"`
	RunID          string                   `json:"run_id"`
	Mode           string                   `json:"mode"`
	Input          string                   `json:"input"`
	Output         string                   `json:"output"`
	Outcome        string                   `json:"outcome"`
	FailedStage    string                   `json:"failed_stage,omitempty"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	FilesTotal     int                      `json:"files_total"`
	ErrorCount     int                      `json:"error_count"`
	WarningCount   int                      `json:"warning_count"`
	InfoCount      int                      `json:"info_count"`
	Counts         map[string]int           `json:"counts,omitempty"`
	Findings       []findings.JSONFinding   `json:"findings"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
	DescriptorPath string                   `json:"descriptor_path,omitempty"`
	Skipped        bool                     `json:"descriptor_skipped,omitempty"`
	Fingerprint    string                   `json:"fingerprint,omitempty"`
	Commit         string                   `json:"commit,omitempty"`
}

func (r *Result) serializable() *resultSerializable {
	s := &resultSerializable{
		SchemaVersion:  reportSchemaVersion,
		RunID:          r.RunID,
		Mode:           string(r.Mode),
		Input:          r.InputPath,
		Output:         r.OutputPath,
		Outcome:        string(r.Outcome),
		FailedStage:    string(r.FailedStage),
		Start:          r.Start,
		End:            r.End,
		FilesTotal:     r.Report.FilesTotal,
		ErrorCount:     r.Report.ErrorCount(),
		WarningCount:   r.Report.WarningCount(),
		InfoCount:      r.Report.InfoCount(),
		Counts:         r.Counts,
		Findings:       make([]findings.JSONFinding, 0, len(r.Report.Findings)),
		StageDurations: make(map[string]time.Duration, len(r.Durations)),
		DescriptorPath: r.DescriptorPath,
		Skipped:        r.DescriptorSkipped,
		Fingerprint:    r.Fingerprint,
		Commit:         r.Commit,
	}
	for _, f := range r.Report.Findings {
		s.Findings = append(s.Findings, findings.JSONFinding{
			Path:     f.Path,
			Category: f.Category.String(),
			Severity: f.Severity.String(),
			Check:    f.Check,
			Message:  f.Message,
			Detail:   f.Detail,
		})
	}
	for k, v := range r.Durations {
		s.StageDurations[string(k)] = v
	}
	return s
}

// Persist writes the run report into root as a machine-readable JSON file
// and a one-line text summary. Writes are atomic (temp file then rename).
// Best effort: errors are returned for caller logging but must not change
// the run outcome.
func (r *Result) Persist(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}

	jb, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(root, ReportFileJSON)
	tmpJSON := jsonPath + ".tmp"
	if err := os.WriteFile(tmpJSON, append(jb, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmpJSON, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}

	textPath := filepath.Join(root, ReportFileText)
	tmpText := textPath + ".tmp"
	if err := os.WriteFile(tmpText, []byte(r.Summary()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write temp report summary: %w", err)
	}
	if err := os.Rename(tmpText, textPath); err != nil {
		return fmt.Errorf("atomic rename summary: %w", err)
	}
	return nil
}
