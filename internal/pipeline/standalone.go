package pipeline

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	"github.com/ArdonToonstra/simplifier-ig/internal/descriptor"
	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/gitinfo"
	"github.com/ArdonToonstra/simplifier-ig/internal/logfields"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
)

// SynthesizeStandalone builds the descriptor for an already assembled
// output tree. The settings document is loaded from the input tree, but
// content counts come from the assembled output, which may have been
// produced by a separate earlier run. A synthesis skip is reported through
// findings and a blocked outcome; err is non-nil only for fatal failures.
func SynthesizeStandalone(ctx context.Context, inputPath, outputPath string, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}
	res := &Result{
		RunID:      uuid.NewString(),
		Mode:       ModeDescriptor,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Start:      time.Now(),
		Report:     &findings.Report{},
		Durations:  make(map[StageName]time.Duration),
	}
	fail := func(stage StageName, err error) (*Result, error) {
		res.End = time.Now()
		res.Outcome = OutcomeFailed
		res.FailedStage = stage
		return res, newFatalStageError(stage, err)
	}

	t0 := time.Now()
	cfg, _, err := config.LoadDir(inputPath)
	res.Durations[StageLoadConfig] = time.Since(t0)
	if err != nil {
		return fail(StageLoadConfig, err)
	}
	res.Commit = gitinfo.HeadCommit(inputPath)

	if err := ctx.Err(); err != nil {
		return fail(StageScanInput, err)
	}

	t0 = time.Now()
	if info, statErr := os.Stat(outputPath); statErr != nil || !info.IsDir() {
		res.Durations[StageScanInput] = time.Since(t0)
		return fail(StageScanInput, guideerrors.OutputNotFound(outputPath))
	}
	outEntries, err := scan.NewScanner(outputPath).Scan()
	res.Durations[StageScanInput] = time.Since(t0)
	if err != nil {
		return fail(StageScanInput, err)
	}
	res.Counts = scan.CountByCategory(outEntries)

	if err := ctx.Err(); err != nil {
		return fail(StageSynthesize, err)
	}

	t0 = time.Now()
	d, report := descriptor.New().Synthesize(cfg, res.Counts)
	res.Report.Merge(report)
	if d != nil {
		dest, writeErr := descriptor.Write(outputPath, d)
		if writeErr != nil {
			res.Durations[StageSynthesize] = time.Since(t0)
			return fail(StageSynthesize, writeErr)
		}
		res.Descriptor = d
		res.DescriptorPath = dest
	} else {
		res.DescriptorSkipped = true
	}
	res.Durations[StageSynthesize] = time.Since(t0)

	res.End = time.Now()
	res.Report.Sort()
	if res.DescriptorSkipped {
		res.Outcome = OutcomeBlocked
	} else {
		res.Outcome = OutcomeSuccess
	}
	log.Info("descriptor synthesis finished",
		logfields.RunID(res.RunID),
		logfields.Outcome(string(res.Outcome)),
		logfields.Output(outputPath),
	)
	return res, nil
}
