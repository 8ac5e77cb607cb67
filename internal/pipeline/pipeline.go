// Package pipeline orchestrates one guide build: load configuration, scan
// the input tree, validate, assemble the output tree, synthesize the
// descriptor. Stages run strictly in order on one goroutine; a stage either
// finishes or fails outright, and cancellation is honored only between
// stages. Determinism of the finished output depends on this sequencing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"github.com/ArdonToonstra/simplifier-ig/internal/assemble"
	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	"github.com/ArdonToonstra/simplifier-ig/internal/descriptor"
	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/gitinfo"
	"github.com/ArdonToonstra/simplifier-ig/internal/logfields"
	"github.com/ArdonToonstra/simplifier-ig/internal/navigation"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
	"github.com/ArdonToonstra/simplifier-ig/internal/validate"
)

// Stage is a discrete unit of work in a run.
type Stage func(ctx context.Context, rs *RunState) error

// StageErrorKind classifies why a stage stopped the run.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Infrastructure failure; exit 2.
	StageErrorBlocked  StageErrorKind = "blocked"  // Findings gate; exit 1.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation between stages.
)

// StageError is a structured error carrying the failing stage and its kind.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newBlockedStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorBlocked, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// Options configure one run.
type Options struct {
	InputPath  string
	OutputPath string

	// SkipValidation lets assembly proceed past a blocking report. The
	// validator still runs and its findings are still reported; only the
	// gate is bypassed.
	SkipValidation bool
	// NoDescriptor drops the synthesis stage entirely.
	NoDescriptor bool
	// Unresolved selects how unresolved variable tokens are reported.
	Unresolved assemble.UnresolvedPolicy
	// WithTOC additionally writes a navigation table of contents into the
	// output tree.
	WithTOC bool

	Logger *slog.Logger
}

// RunState carries mutable state across stages of one run.
type RunState struct {
	Config  *config.GuideConfig
	Vars    config.VariableSet
	Entries []scan.InputEntry
	Counts  map[string]int

	Report            *findings.Report
	Descriptor        *descriptor.GeneratedDescriptor
	DescriptorPath    string
	DescriptorSkipped bool

	Fingerprint string // settings document fingerprint, best effort
	Commit      string // source commit of the input tree, best effort

	Durations map[StageName]time.Duration
}

func newRunState() *RunState {
	return &RunState{
		Report:    &findings.Report{},
		Durations: make(map[StageName]time.Duration),
	}
}

// Pipeline executes runs over one fixed set of options.
type Pipeline struct {
	opts Options
	log  *slog.Logger
}

// New creates a pipeline. A nil logger falls back to slog.Default.
func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Unresolved == "" {
		opts.Unresolved = assemble.UnresolvedWarn
	}
	return &Pipeline{opts: opts, log: log}
}

// Run executes the full stage sequence. The returned Result is always
// non-nil and carries whatever was produced before any failure; err is
// non-nil only for fatal or canceled runs. A run stopped by findings
// (blocked) returns a nil error with Outcome set accordingly; the caller
// reads the report, not the error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	rs := newRunState()
	res := &Result{
		RunID:      uuid.NewString(),
		Mode:       ModeGenerate,
		InputPath:  p.opts.InputPath,
		OutputPath: p.opts.OutputPath,
		Start:      time.Now(),
	}
	p.log.Info("run started",
		logfields.RunID(res.RunID),
		logfields.Input(p.opts.InputPath),
		logfields.Output(p.opts.OutputPath),
	)

	se := p.runStages(ctx, rs, p.stages())

	res.End = time.Now()
	rs.Report.Sort()
	res.Report = rs.Report
	res.Counts = rs.Counts
	res.Descriptor = rs.Descriptor
	res.DescriptorPath = rs.DescriptorPath
	res.DescriptorSkipped = rs.DescriptorSkipped
	res.Fingerprint = rs.Fingerprint
	res.Commit = rs.Commit
	res.Durations = rs.Durations

	if se != nil {
		res.FailedStage = se.Stage
		if se.Kind == StageErrorBlocked {
			res.Outcome = OutcomeBlocked
			p.logFinished(res)
			return res, nil
		}
		res.Outcome = OutcomeFailed
		p.logFinished(res)
		return res, se
	}

	// A bypassed gate or a strict unresolved policy can leave blocking
	// findings in a run that otherwise finished. The outcome reflects the
	// report so exit codes stay honest.
	if rs.Report.Blocking() {
		res.Outcome = OutcomeBlocked
	} else {
		res.Outcome = OutcomeSuccess
	}
	p.logFinished(res)
	return res, nil
}

func (p *Pipeline) logFinished(res *Result) {
	p.log.Info("run finished",
		logfields.RunID(res.RunID),
		logfields.Outcome(string(res.Outcome)),
		logfields.ErrorCount(res.Report.ErrorCount()),
		logfields.WarningCount(res.Report.WarningCount()),
		logfields.DurationMS(float64(res.End.Sub(res.Start))/float64(time.Millisecond)),
	)
}

func (p *Pipeline) stages() []StageDef {
	defs := []StageDef{
		{StageLoadConfig, p.stageLoadConfig},
		{StageScanInput, p.stageScanInput},
		{StageValidate, p.stageValidate},
		{StageAssemble, p.stageAssemble},
	}
	if p.opts.WithTOC {
		defs = append(defs, StageDef{StageNavigation, p.stageNavigation})
	}
	if !p.opts.NoDescriptor {
		defs = append(defs, StageDef{StageSynthesize, p.stageSynthesize})
	}
	return defs
}

// runStages executes stages in order, recording timing and stopping on the
// first error. Cancellation is only observed between stages; a started
// stage runs to completion.
func (p *Pipeline) runStages(ctx context.Context, rs *RunState, stages []StageDef) *StageError {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			return newCanceledStageError(st.Name, ctx.Err())
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, rs)
		dur := time.Since(t0)
		rs.Durations[st.Name] = dur

		if err != nil {
			var se *StageError
			if !errors.As(err, &se) {
				se = newFatalStageError(st.Name, err)
			}
			p.log.Error("stage failed",
				logfields.Stage(string(st.Name)),
				logfields.Error(se.Err),
			)
			return se
		}
		p.log.Debug("stage complete",
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur)/float64(time.Millisecond)),
		)
	}
	return nil
}

func (p *Pipeline) stageLoadConfig(ctx context.Context, rs *RunState) error {
	cfg, vars, err := config.LoadDir(p.opts.InputPath)
	if err != nil {
		return err
	}
	rs.Config = cfg
	rs.Vars = vars

	// Provenance enrichment; neither may fail the run.
	if raw, readErr := os.ReadFile(filepath.Join(p.opts.InputPath, config.SettingsFileName)); readErr == nil {
		rs.Fingerprint = mdfp.CalculateFingerprintFromParts("", string(raw))
	}
	rs.Commit = gitinfo.HeadCommit(p.opts.InputPath)
	return nil
}

func (p *Pipeline) stageScanInput(ctx context.Context, rs *RunState) error {
	entries, err := scan.NewScanner(p.opts.InputPath).Scan()
	if err != nil {
		return err
	}
	rs.Entries = entries
	rs.Counts = scan.CountByCategory(entries)
	p.log.Debug("input scanned", logfields.Count(len(entries)))
	return nil
}

func (p *Pipeline) stageValidate(ctx context.Context, rs *RunState) error {
	report := validate.New().Validate(rs.Config, nil, rs.Entries)
	rs.Report.Merge(report)

	if report.Blocking() && !p.opts.SkipValidation {
		return newBlockedStageError(StageValidate,
			fmt.Errorf("validation reported %d blocking findings", report.ErrorCount()))
	}
	if report.Blocking() {
		p.log.Warn("validation gate bypassed",
			logfields.ErrorCount(report.ErrorCount()),
		)
	}
	return nil
}

func (p *Pipeline) stageAssemble(ctx context.Context, rs *RunState) error {
	report, err := assemble.New(rs.Vars, p.opts.Unresolved).Assemble(p.opts.OutputPath, rs.Entries)
	rs.Report.Merge(report)
	return err
}

func (p *Pipeline) stageNavigation(ctx context.Context, rs *RunState) error {
	return navigation.WriteTOC(p.opts.OutputPath, rs.Config, rs.Entries)
}

func (p *Pipeline) stageSynthesize(ctx context.Context, rs *RunState) error {
	d, report := descriptor.New().Synthesize(rs.Config, rs.Counts)
	rs.Report.Merge(report)
	if d == nil {
		// Skipping is a normal, non-failing path to Done.
		rs.DescriptorSkipped = true
		return nil
	}

	dest, err := descriptor.Write(p.opts.OutputPath, d)
	if err != nil {
		return err
	}
	rs.Descriptor = d
	rs.DescriptorPath = dest
	return nil
}
