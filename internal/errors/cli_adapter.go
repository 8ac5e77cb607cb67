package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
)

// Exit codes form the CLI contract: scripts branch on them.
const (
	ExitSuccess = 0 // run completed, no blocking findings
	ExitBlocked = 1 // blocking validation or synthesis failure, surfaced as findings
	ExitFatal   = 2 // fatal I/O or configuration failure
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
// All fatal categories collapse to ExitFatal; blocking findings are not
// errors and are mapped to ExitBlocked by the commands themselves.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ge *GuideError
	if stderrors.As(err, &ge) {
		if ge.Severity == SeverityWarning {
			return ExitBlocked
		}
		return ExitFatal
	}
	return ExitFatal
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	var ge *GuideError
	if stderrors.As(err, &ge) {
		if a.verbose {
			return ge.Error()
		}
		switch ge.Category {
		case CategoryConfig, CategoryScan:
			return ge.Message
		default:
			return fmt.Sprintf("%s: %s", ge.Category, ge.Message)
		}
	}
	return fmt.Sprintf("Error: %v", err)
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	var ge *GuideError
	if stderrors.As(err, &ge) {
		return ge.Category == CategoryInternal || ge.Severity == SeverityFatal
	}
	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	var ge *GuideError
	if stderrors.As(err, &ge) {
		level := slog.LevelError
		if ge.Severity == SeverityWarning {
			level = slog.LevelWarn
		}
		a.logger.LogAttrs(context.Background(), level, ge.Message,
			slog.String("category", string(ge.Category)))
		return
	}
	a.logger.Error("Unclassified error", "error", err)
}
