package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		stderr:  os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if dwe, ok := As(err); ok {
		return a.exitCodeFromDocWeb(dwe)
	}

	return 1
}

// exitCodeFromDocWeb maps DocWebError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromDocWeb(err *DocWebError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryJob, CategoryBuild, CategoryFileSystem:
		return 11 // Build error
	case CategoryRuntime:
		return 12 // Runtime error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if dwe, ok := As(err); ok {
		return a.formatDocWeb(dwe)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatDocWeb formats a DocWebError for display.
func (a *CLIErrorAdapter) formatDocWeb(err *DocWebError) string {
	if a.verbose {
		return err.Error()
	}

	msg := err.Message
	if ctx := err.contextString(); ctx != "" {
		msg += " [" + ctx + "]"
	}
	switch err.Category {
	case CategoryConfig, CategoryValidation:
		return msg
	default:
		return fmt.Sprintf("%s: %s", err.Category, msg)
	}
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

	_, _ = fmt.Fprintf(a.stderr, "%s\n", message)
	a.exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if dwe, ok := As(err); ok {
		return dwe.Category == CategoryInternal ||
			dwe.Category == CategoryRuntime ||
			dwe.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if dwe, ok := As(err); ok {
		attrs := []slog.Attr{
			slog.String("category", string(dwe.Category)),
		}
		for k, v := range dwe.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		if dwe.Cause != nil {
			attrs = append(attrs, slog.String("cause", dwe.Cause.Error()))
		}

		a.logger.LogAttrs(context.Background(), a.slogLevelFromSeverity(dwe.Severity), dwe.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts DocWebError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	if severity == SeverityWarning {
		return slog.LevelWarn
	}
	return slog.LevelError
}
