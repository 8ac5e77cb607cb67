package commands

import (
	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/scan"
	"github.com/ArdonToonstra/simplifier-ig/internal/validate"
)

// ValidateCmd runs the structural checks and prints the findings report
// without touching the output tree.
type ValidateCmd struct {
	Input  string `arg:"" optional:"" help:"Guide input directory (falls back to saved settings, then the working directory)."`
	Format string `help:"Report format." enum:"text,json" default:"text"`
}

func (c *ValidateCmd) Run(g *Global) error {
	input := g.loadSettings().ResolveInput(c.Input)

	cfg, _, err := config.LoadDir(input)
	if err != nil {
		return err
	}
	entries, err := scan.NewScanner(input).Scan()
	if err != nil {
		return err
	}

	report := validate.New().Validate(cfg, nil, entries)
	if err := findings.NewFormatter(c.Format).Format(g.Stdout, report, input); err != nil {
		return err
	}

	if report.Blocking() {
		return ErrBlocked
	}
	g.rememberInput(input)
	return nil
}
