package commands

import (
	"context"
	"fmt"

	"github.com/ArdonToonstra/simplifier-ig/internal/assemble"
	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/logfields"
	"github.com/ArdonToonstra/simplifier-ig/internal/pipeline"
)

// GenerateCmd runs the full pipeline: validate, assemble, synthesize.
type GenerateCmd struct {
	Input          string `arg:"" optional:"" help:"Guide input directory (falls back to saved settings, then the working directory)."`
	Output         string `short:"o" help:"Output directory (falls back to saved settings, then ./guides)."`
	SkipValidation bool   `help:"Assemble even when validation reports blocking findings. The checks still run and are still reported."`
	NoDescriptor   bool   `help:"Skip descriptor synthesis."`
	Unresolved     string `help:"Policy for unresolved variable tokens." enum:"warn,error" default:"warn"`
	WithTOC        bool   `name:"with-toc" help:"Also write a navigation table of contents into the output."`
	Report         string `help:"Directory to additionally write run-report.json and run-report.txt into."`
}

func (c *GenerateCmd) Run(g *Global) error {
	stored := g.loadSettings()
	input := stored.ResolveInput(c.Input)
	output := stored.ResolveOutput(c.Output)

	res, runErr := pipeline.New(pipeline.Options{
		InputPath:      input,
		OutputPath:     output,
		SkipValidation: c.SkipValidation,
		NoDescriptor:   c.NoDescriptor,
		Unresolved:     assemble.UnresolvedPolicy(c.Unresolved),
		WithTOC:        c.WithTOC,
		Logger:         g.Logger,
	}).Run(context.Background())

	if len(res.Report.Findings) > 0 {
		if err := findings.NewTextFormatter().Format(g.Stdout, res.Report, input); err != nil {
			return err
		}
	}
	g.recordHistory(res)
	if c.Report != "" {
		if err := res.Persist(c.Report); err != nil {
			g.Logger.Warn("run report not persisted", logfields.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	// Assembly ran unless the findings gate stopped the run first.
	if _, assembled := res.Durations[pipeline.StageAssemble]; assembled {
		fmt.Fprintf(g.Stdout, "Output written to %s\n", output)
	}
	if res.DescriptorPath != "" {
		fmt.Fprintf(g.Stdout, "Descriptor written to %s\n", res.DescriptorPath)
	}
	fmt.Fprintln(g.Stdout, res.Summary())

	if res.Outcome == pipeline.OutcomeBlocked {
		return ErrBlocked
	}
	g.rememberRun(input, output, res)
	return nil
}
