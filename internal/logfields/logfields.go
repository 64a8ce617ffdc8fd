package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyCommand    = "command"
	KeyJobIndex   = "job_index"
	KeyExitCode   = "exit_code"
	KeyWorkers    = "workers"
	KeyJobs       = "jobs"
	KeyMode       = "mode"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeySection    = "section"
	KeyLine       = "line"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func JobIndex(i int) slog.Attr        { return slog.Int(KeyJobIndex, i) }
func ExitCode(c int) slog.Attr        { return slog.Int(KeyExitCode, c) }
func Workers(n int) slog.Attr         { return slog.Int(KeyWorkers, n) }
func Jobs(n int) slog.Attr            { return slog.Int(KeyJobs, n) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
