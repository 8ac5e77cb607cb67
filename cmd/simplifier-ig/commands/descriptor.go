package commands

import (
	"context"
	"fmt"

	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/pipeline"
)

// DescriptorCmd synthesizes the descriptor for an already assembled output
// tree. Unlike generate, an ineligible guide is a failure here: the caller
// asked for exactly one artifact and did not get it.
type DescriptorCmd struct {
	Input  string `arg:"" optional:"" help:"Guide input directory holding the settings document."`
	Output string `short:"o" help:"Assembled output directory to describe (falls back to saved settings, then ./guides)."`
}

func (c *DescriptorCmd) Run(g *Global) error {
	stored := g.loadSettings()
	input := stored.ResolveInput(c.Input)
	output := stored.ResolveOutput(c.Output)

	res, err := pipeline.SynthesizeStandalone(context.Background(), input, output, g.Logger)
	if len(res.Report.Findings) > 0 {
		if fmtErr := findings.NewTextFormatter().Format(g.Stdout, res.Report, input); fmtErr != nil {
			return fmtErr
		}
	}
	g.recordHistory(res)
	if err != nil {
		return err
	}
	if res.DescriptorSkipped {
		return ErrBlocked
	}

	fmt.Fprintf(g.Stdout, "Descriptor written to %s\n", res.DescriptorPath)
	return nil
}
