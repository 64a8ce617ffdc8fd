package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docweb/internal/build"
	"git.home.luguber.info/inful/docweb/internal/config"
	"git.home.luguber.info/inful/docweb/internal/engine"
	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/logfields"
	"git.home.luguber.info/inful/docweb/internal/metrics"
)

// EnvLogLevel overrides the log level selected by --verbose.
const EnvLogLevel = "DOCWEB_LOG_LEVEL"

// Global carries process-wide collaborators into command Run methods.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
	// Recorder is set by CLI.AfterApply.
	Recorder metrics.Recorder
	registry *prometheus.Registry
}

// CLI definition & global flags.
type CLI struct {
	Output          string            `short:"o" help:"Output directory (default: directory of the project file)" type:"path"`
	Var             map[string]string `name:"var" help:"Bind a configuration variable as --var name=value or --var=name=value; may be repeated" mapsep:"none"`
	ParallelBuild   int               `name:"parallel-build" aliases:"parallelBuild" help:"Number of concurrent compiler jobs (1 = serial, 0 = configured or CPU count); also --parallelBuild=n"`
	GoogleAnalytics string            `name:"google-analytics" aliases:"googleAnalytics" help:"Analytics id passed to the documentation compiler; also --googleAnalytics=id"`
	CompilerArg     []string          `name:"compiler-arg" help:"Extra argument for every compiler invocation; may be repeated" sep:"none"`
	Root            string            `name:"root" help:"Base directory of doc/ and lib/ (default: working directory)" type:"path"`
	MetricsFile     string            `name:"metrics-file" help:"Write Prometheus metrics in text format to this file after the command" type:"path"`
	Verbose         bool              `short:"v" help:"Enable verbose logging"`
	Version         kong.VersionFlag  `name:"version" help:"Show version and exit"`

	All     AllCmd     `cmd:"" default:"withargs" help:"Build the website and the documentation (default)"`
	Website WebsiteCmd `cmd:"" help:"Build only the website"`
	Docs    DocsCmd    `cmd:"" help:"Build only the documentation pages and index"`
	PDF     PDFCmd     `cmd:"" name:"pdf" help:"Build the PDF manuals"`
	JSON    JSONCmd    `cmd:"" name:"json" help:"Build JSON documentation"`
	Plan    PlanCmd    `cmd:"" help:"Print the commands a build would run"`
	Config  ConfigCmd  `cmd:"" help:"Print the normalized configuration as YAML"`
	Watch   WatchCmd   `cmd:"" help:"Build the website and rebuild it when sources change"`
}

// ProjectArg is the positional project file shared by every command.
type ProjectArg struct {
	Input string `arg:"" name:"input" help:"Project configuration file" type:"existingfile"`
}

// AfterApply runs after flag parsing; sets up logging and metrics once.
func (c *CLI) AfterApply(g *Global) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: LogLevel(c.Verbose)})))

	g.Recorder = metrics.NoopRecorder{}
	if c.MetricsFile != "" {
		g.registry = prometheus.NewRegistry()
		g.Recorder = metrics.NewPrometheusRecorder(g.registry)
	}
	return nil
}

// LogLevel resolves the log level from --verbose and DOCWEB_LOG_LEVEL.
func LogLevel(verbose bool) slog.Level {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return level
}

// FlushMetrics writes the metrics textfile when --metrics-file is set.
func (c *CLI) FlushMetrics(g *Global) error {
	if c.MetricsFile == "" || g.registry == nil {
		return nil
	}
	if err := metrics.WriteTextfile(c.MetricsFile, g.registry); err != nil {
		return derrors.ResourceError(c.MetricsFile, "write metrics", err)
	}
	slog.Debug("Wrote metrics", logfields.Path(c.MetricsFile))
	return nil
}

// Overrides maps the global flags onto configuration overrides.
func (c *CLI) Overrides() config.Overrides {
	return config.Overrides{
		Vars:         c.Var,
		Workers:      c.ParallelBuild,
		OutputDir:    c.Output,
		AnalyticsID:  c.GoogleAnalytics,
		CompilerArgs: c.CompilerArg,
		RootDir:      c.Root,
	}
}

// LoadProject loads the project file with the global overrides applied.
func (c *CLI) LoadProject(input string) (*config.ProjectConfig, error) {
	return config.Load(input, c.Overrides())
}

// NewService wires the engine, recorder and build service for one command.
func NewService(g *Global) (*build.DefaultBuildService, error) {
	eng := engine.New(engine.WithRecorder(g.Recorder), engine.WithOutput(g.Stdout))
	return build.NewBuildService(build.WithEngine(eng), build.WithRecorder(g.Recorder))
}
