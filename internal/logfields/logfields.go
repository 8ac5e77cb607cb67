package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyInput      = "input"
	KeyOutput     = "output"
	KeyCategory   = "category"
	KeyCheck      = "check"
	KeyStage      = "stage"
	KeyStyle      = "style"
	KeyToken      = "token"
	KeyRunID      = "run_id"
	KeyOutcome    = "outcome"
	KeyCount      = "count"
	KeyErrors     = "errors"
	KeyWarnings   = "warnings"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Input(p string) slog.Attr        { return slog.String(KeyInput, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Check(id string) slog.Attr       { return slog.String(KeyCheck, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func StyleName(s string) slog.Attr    { return slog.String(KeyStyle, s) }
func Token(name string) slog.Attr     { return slog.String(KeyToken, name) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func ErrorCount(n int) slog.Attr      { return slog.Int(KeyErrors, n) }
func WarningCount(n int) slog.Attr    { return slog.Int(KeyWarnings, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
