// Package commands defines the CLI command tree. Each command is a kong
// struct with a Run method; state shared across commands travels in Global.
// Exit-code policy lives in Execute: findings that block a run surface as
// ErrBlocked (exit 1), everything fatal maps through the error adapter
// (exit 2).
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	guideerrors "github.com/ArdonToonstra/simplifier-ig/internal/errors"
	"github.com/ArdonToonstra/simplifier-ig/internal/history"
	"github.com/ArdonToonstra/simplifier-ig/internal/logfields"
	"github.com/ArdonToonstra/simplifier-ig/internal/pipeline"
	"github.com/ArdonToonstra/simplifier-ig/internal/settings"
)

// ErrBlocked signals blocking findings that were already presented to the
// user; Execute maps it to the blocked exit code without further output.
var ErrBlocked = errors.New("blocking findings reported")

// CLI is the root command tree with its global flags.
type CLI struct {
	LogLevel  string           `name:"log-level" help:"Minimum log level." enum:"debug,info,warn,error" default:"info"`
	LogFormat string           `name:"log-format" help:"Log output format." enum:"text,json" default:"text"`
	Quiet     bool             `short:"q" help:"Only log errors."`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit."`

	Init       InitCmd       `cmd:"" help:"Scaffold a fresh guide input tree."`
	Validate   ValidateCmd   `cmd:"" help:"Validate a guide and print the findings report."`
	Generate   GenerateCmd   `cmd:"" help:"Validate, assemble and describe a guide."`
	Descriptor DescriptorCmd `cmd:"" help:"Synthesize the descriptor for an assembled output tree."`
	Config     ConfigCmd     `cmd:"" help:"Show or clear persisted invocation settings."`
	History    HistoryCmd    `cmd:"" help:"List recent runs from the local history store."`
	Watch      WatchCmd      `cmd:"" help:"Rebuild the guide whenever the input tree changes."`
}

// AfterApply runs after flag parsing; it configures the process logger once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if c.Quiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// Execute runs the parsed command and maps its outcome to a process exit
// code.
func Execute(ctx *kong.Context, cli *CLI) int {
	g := NewGlobal()
	err := ctx.Run(g)
	switch {
	case err == nil:
		return guideerrors.ExitSuccess
	case errors.Is(err, ErrBlocked):
		return guideerrors.ExitBlocked
	default:
		adapter := guideerrors.NewCLIErrorAdapter(cli.LogLevel == "debug", g.Logger)
		fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		return adapter.ExitCodeFor(err)
	}
}

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

// NewGlobal builds the shared command state. Environment overrides from a
// dotenv file are loaded here, before any path resolution happens.
func NewGlobal() *Global {
	g := &Global{Logger: slog.Default(), Stdout: os.Stdout}
	if name := settings.LoadDotEnv(); name != "" {
		g.Logger.Debug("environment overrides loaded", logfields.Path(name))
	}
	return g
}

// openSettings opens the per-user settings store.
func (g *Global) openSettings() (*settings.Store, error) {
	dir, err := settings.DefaultDir()
	if err != nil {
		return nil, err
	}
	return settings.Open(dir)
}

// loadSettings loads stored settings, degrading to defaults when the store
// is unavailable. An unreadable home directory must not break a build.
func (g *Global) loadSettings() *settings.Settings {
	st, err := g.openSettings()
	if err != nil {
		g.Logger.Debug("settings store unavailable", logfields.Error(err))
		return &settings.Settings{}
	}
	s, err := st.Load()
	if err != nil {
		g.Logger.Debug("settings load failed", logfields.Error(err))
		return &settings.Settings{}
	}
	return s
}

// rememberInput persists the resolved input path so the next invocation can
// omit it. Best effort.
func (g *Global) rememberInput(input string) {
	g.updateSettings(func(s *settings.Settings) {
		if abs, err := filepath.Abs(input); err == nil {
			s.InputPath = abs
		}
	})
}

// rememberRun persists the resolved paths and run identity after a
// successful build. Best effort.
func (g *Global) rememberRun(input, output string, res *pipeline.Result) {
	g.updateSettings(func(s *settings.Settings) {
		if abs, err := filepath.Abs(input); err == nil {
			s.InputPath = abs
		}
		if abs, err := filepath.Abs(output); err == nil {
			s.DefaultOutputFolder = abs
		}
		s.LastRunID = res.RunID
		at := res.End
		s.LastRunAt = &at
	})
}

func (g *Global) updateSettings(fn func(*settings.Settings)) {
	st, err := g.openSettings()
	if err != nil {
		g.Logger.Debug("settings store unavailable", logfields.Error(err))
		return
	}
	if _, err := st.Update(fn); err != nil {
		g.Logger.Debug("settings not saved", logfields.Error(err))
	}
}

// recordHistory appends the run to the local history store. Strictly best
// effort: a broken store is logged and ignored.
func (g *Global) recordHistory(res *pipeline.Result) {
	dir, err := settings.DefaultDir()
	if err != nil {
		g.Logger.Debug("history store unavailable", logfields.Error(err))
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		g.Logger.Debug("history store unavailable", logfields.Error(err))
		return
	}
	st, err := history.Open(filepath.Join(dir, history.FileName))
	if err != nil {
		g.Logger.Debug("history store unavailable", logfields.Error(err))
		return
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec := history.Record{
		RunID:       res.RunID,
		Mode:        string(res.Mode),
		InputPath:   res.InputPath,
		OutputPath:  res.OutputPath,
		Outcome:     string(res.Outcome),
		Errors:      res.Report.ErrorCount(),
		Warnings:    res.Report.WarningCount(),
		Fingerprint: res.Fingerprint,
		Commit:      res.Commit,
		StartedAt:   res.Start,
		FinishedAt:  res.End,
	}
	if err := st.Append(ctx, rec); err != nil {
		g.Logger.Warn("run not recorded in history", logfields.Error(err))
	}
}
