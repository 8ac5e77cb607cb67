package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArdonToonstra/simplifier-ig/internal/findings"
	"github.com/ArdonToonstra/simplifier-ig/internal/pipeline"
	"github.com/ArdonToonstra/simplifier-ig/internal/watch"
)

// WatchCmd rebuilds the guide whenever the input tree changes. Ctrl-C stops
// watching; a failing build keeps the watcher alive so the next save can fix
// the input.
type WatchCmd struct {
	Input    string        `arg:"" optional:"" help:"Guide input directory (falls back to saved settings, then the working directory)."`
	Output   string        `short:"o" help:"Output directory (falls back to saved settings, then ./guides)."`
	Interval time.Duration `help:"Also rebuild at this fixed interval, as a safety net for editors that defeat file watching."`
}

func (c *WatchCmd) Run(g *Global) error {
	stored := g.loadSettings()
	input := stored.ResolveInput(c.Input)
	output := stored.ResolveOutput(c.Output)

	builder := func(ctx context.Context) error {
		res, err := pipeline.New(pipeline.Options{
			InputPath:  input,
			OutputPath: output,
			Logger:     g.Logger,
		}).Run(ctx)
		if len(res.Report.Findings) > 0 {
			if fmtErr := findings.NewTextFormatter().Format(g.Stdout, res.Report, input); fmtErr != nil {
				return fmtErr
			}
		}
		g.recordHistory(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(g.Stdout, res.Summary())
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w := watch.New(input, builder, watch.Options{
		Interval: c.Interval,
		// The output tree may live inside the input tree; its writes must
		// not retrigger builds.
		Ignore: []string{output},
		Logger: g.Logger,
	})
	if err := w.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintf(g.Stdout, "Stopped after %d builds.\n", w.Builds())
	return nil
}
