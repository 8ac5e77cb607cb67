package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ArdonToonstra/simplifier-ig/internal/history"
	"github.com/ArdonToonstra/simplifier-ig/internal/settings"
)

// HistoryCmd lists recent runs from the local history store.
type HistoryCmd struct {
	Limit int `help:"Maximum number of runs to list." default:"20"`
}

func (c *HistoryCmd) Run(g *Global) error {
	dir, err := settings.DefaultDir()
	if err != nil {
		return err
	}
	dbPath := filepath.Join(dir, history.FileName)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintln(g.Stdout, "No runs recorded yet.")
		return nil
	}

	st, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	records, err := st.List(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(g.Stdout, "No runs recorded yet.")
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(g.Stdout, "%s  %-8s %-10s %-7s errors=%d warnings=%d  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			shortID(r.RunID), r.Mode, r.Outcome, r.Errors, r.Warnings, r.InputPath)
	}
	return nil
}

// shortID abbreviates a run id for column display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
