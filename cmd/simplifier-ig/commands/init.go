package commands

import (
	"fmt"

	"github.com/ArdonToonstra/simplifier-ig/internal/logfields"
	"github.com/ArdonToonstra/simplifier-ig/internal/scaffold"
)

// InitCmd scaffolds a fresh guide input tree.
type InitCmd struct {
	Target string `arg:"" help:"Directory to initialize."`
	Name   string `help:"Guide title; also drives the derived id and url-key."`
	Style  string `help:"Name of the starter style bundle."`
	Force  bool   `help:"Fill gaps in a non-empty directory. Existing files are never overwritten."`
}

func (c *InitCmd) Run(g *Global) error {
	res, err := scaffold.Init(c.Target, scaffold.Options{
		Name:      c.Name,
		StyleName: c.Style,
		Force:     c.Force,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(g.Stdout, "Initialized guide in %s\n", res.Path)
	fmt.Fprintf(g.Stdout, "  %d folders, %d files created\n", res.FoldersCreated, res.FilesCreated)
	for _, rel := range res.Skipped {
		fmt.Fprintf(g.Stdout, "  kept existing %s\n", rel)
	}
	fmt.Fprintln(g.Stdout, "Next: edit guide.yaml, then run `simplifier-ig validate`.")

	g.Logger.Info("guide initialized",
		logfields.Path(res.Path),
		logfields.Count(res.FilesCreated),
	)
	g.rememberInput(res.Path)
	return nil
}
