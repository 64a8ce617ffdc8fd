package build

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docweb/internal/config"
	"git.home.luguber.info/inful/docweb/internal/engine"
	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/logfields"
	"git.home.luguber.info/inful/docweb/internal/metrics"
	"git.home.luguber.info/inful/docweb/internal/plan"
	"git.home.luguber.info/inful/docweb/internal/site"
)

// Output subdirectories below the configured output directory.
const (
	DocsDir = "docs"
	JSONDir = "json"
)

// WebsiteBuilder renders the website stage.
type WebsiteBuilder interface {
	Build(ctx context.Context, cfg *config.ProjectConfig) error
}

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	engine   *engine.Engine
	website  WebsiteBuilder
	recorder metrics.Recorder
	logger   *slog.Logger
	lookPath func(string) (string, error)
}

// Option configures a DefaultBuildService.
type Option func(*DefaultBuildService)

// WithEngine sets the engine used by every stage.
func WithEngine(e *engine.Engine) Option {
	return func(s *DefaultBuildService) { s.engine = e }
}

// WithWebsiteBuilder replaces the website stage (for testing).
func WithWebsiteBuilder(w WebsiteBuilder) Option {
	return func(s *DefaultBuildService) { s.website = w }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *DefaultBuildService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *DefaultBuildService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLookPath replaces toolchain detection (for testing).
func WithLookPath(f func(string) (string, error)) Option {
	return func(s *DefaultBuildService) { s.lookPath = f }
}

// NewBuildService creates a DefaultBuildService. Without WithEngine it runs
// commands through the platform shell; without WithWebsiteBuilder it uses
// the default site layout.
func NewBuildService(opts ...Option) (*DefaultBuildService, error) {
	s := &DefaultBuildService{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = engine.New(engine.WithRecorder(s.recorder), engine.WithLogger(s.logger))
	}
	if s.website == nil {
		b, err := site.NewBuilder(s.engine, site.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.website = b
	}
	return s, nil
}

// Run executes the stages selected by req.Mode in order.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	mode := req.Mode
	if mode == "" {
		mode = ModeAll
	}
	result := &BuildResult{Mode: mode, StartTime: startTime}
	finish := func(status BuildStatus, outcome metrics.BuildOutcomeLabel) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		s.recorder.IncBuildOutcome(outcome)
		s.recorder.ObserveBuildDuration(result.Duration)
	}

	if req.Config == nil {
		finish(BuildStatusFailed, metrics.BuildOutcomeFailed)
		return result, derrors.ValidationFailed("config", "configuration required")
	}
	stages := mode.Stages()
	if stages == nil {
		finish(BuildStatusFailed, metrics.BuildOutcomeFailed)
		return result, derrors.ValidationFailed("mode", "unknown build mode "+string(mode))
	}
	cfg := req.Config
	result.OutputPath = cfg.OutputDir

	s.logger.Info("Starting build", logfields.Mode(string(mode)), logfields.Path(cfg.OutputDir), logfields.Workers(cfg.Workers))

	for _, name := range stages {
		if err := ctx.Err(); err != nil {
			s.recorder.IncStageResult(name, metrics.ResultFatal)
			finish(BuildStatusCancelled, metrics.BuildOutcomeCanceled)
			return result, derrors.Wrap(err, derrors.CategoryRuntime, derrors.SeverityFatal, "build canceled")
		}

		stageStart := time.Now()
		sr, err := s.runStage(ctx, name, cfg)
		sr.Name = name
		sr.Duration = time.Since(stageStart)
		result.Stages = append(result.Stages, sr)
		s.recorder.ObserveStageDuration(name, sr.Duration)

		if err != nil {
			s.recorder.IncStageResult(name, metrics.ResultFatal)
			s.logger.Error("Stage failed", logfields.Stage(name), logfields.Error(err))
			if ctx.Err() != nil {
				finish(BuildStatusCancelled, metrics.BuildOutcomeCanceled)
			} else {
				finish(BuildStatusFailed, metrics.BuildOutcomeFailed)
			}
			return result, err
		}
		if sr.Skipped {
			s.recorder.IncStageResult(name, metrics.ResultWarning)
		} else {
			s.recorder.IncStageResult(name, metrics.ResultSuccess)
		}
		s.logger.Info("Stage complete", logfields.Stage(name),
			logfields.Jobs(sr.Jobs), logfields.DurationMS(float64(sr.Duration.Milliseconds())))
	}

	finish(BuildStatusSuccess, metrics.BuildOutcomeSuccess)
	s.logger.Info("Build complete", logfields.Mode(string(mode)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}

func (s *DefaultBuildService) runStage(ctx context.Context, name string, cfg *config.ProjectConfig) (StageResult, error) {
	switch name {
	case StageWebsite:
		jobs := len(plan.BuildCommands(cfg, cfg.OutputDir, plan.ModeWebDocs))
		return StageResult{Jobs: jobs}, s.website.Build(ctx, cfg)
	case StageDocs:
		return s.buildDocs(ctx, cfg)
	case StagePDF:
		return s.buildPDF(ctx, cfg)
	case StageJSON:
		return s.buildJSON(ctx, cfg)
	}
	return StageResult{}, derrors.InternalError("unknown stage "+name, nil)
}

// buildDocs compiles every documentation page, then the index over them.
func (s *DefaultBuildService) buildDocs(ctx context.Context, cfg *config.ProjectConfig) (StageResult, error) {
	dest := filepath.Join(cfg.OutputDir, DocsDir)
	if err := os.MkdirAll(dest, 0o750); err != nil {
		return StageResult{}, derrors.ResourceError(dest, "create output directory", err)
	}
	cmds := plan.BuildCommands(cfg, dest, plan.ModeDocs)
	if len(cmds) == 0 {
		s.logger.Warn("No documentation sources configured", logfields.Stage(StageDocs))
		return StageResult{}, nil
	}
	if _, err := s.engine.Run(ctx, cmds, cfg.Workers); err != nil {
		return StageResult{Jobs: len(cmds)}, err
	}
	if _, err := s.engine.Run(ctx, []string{plan.IndexCommand(cfg, dest)}, 1); err != nil {
		return StageResult{Jobs: len(cmds) + 1}, err
	}
	return StageResult{Jobs: len(cmds) + 1}, nil
}

// buildPDF typesets each manual with its own serial command sequence. A
// missing typesetting tool skips the stage.
func (s *DefaultBuildService) buildPDF(ctx context.Context, cfg *config.ProjectConfig) (StageResult, error) {
	if _, err := s.lookPath(cfg.TexCompiler); err != nil {
		s.logger.Warn("Typesetting tool not found, no PDF generated",
			logfields.Command(cfg.TexCompiler), logfields.Error(err))
		return StageResult{Skipped: true, SkipReason: cfg.TexCompiler + " not found"}, nil
	}
	dest := filepath.Join(cfg.OutputDir, DocsDir)
	if err := os.MkdirAll(dest, 0o750); err != nil {
		return StageResult{}, derrors.ResourceError(dest, "create output directory", err)
	}

	var sr StageResult
	for _, job := range plan.PDFJobs(cfg, dest) {
		sr.Jobs += len(job.Commands)
		if _, err := s.engine.Run(ctx, job.Commands, 1); err != nil {
			return sr, err
		}
		s.cleanup(job.Intermediates)
		s.logger.Info("Generated PDF", logfields.Path(job.Output))
	}
	return sr, nil
}

func (s *DefaultBuildService) cleanup(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Failed to remove intermediate file", logfields.Path(p), logfields.Error(err))
		}
	}
}

func (s *DefaultBuildService) buildJSON(ctx context.Context, cfg *config.ProjectConfig) (StageResult, error) {
	dest := filepath.Join(cfg.OutputDir, JSONDir)
	if err := os.MkdirAll(dest, 0o750); err != nil {
		return StageResult{}, derrors.ResourceError(dest, "create output directory", err)
	}
	cmds := plan.BuildCommands(cfg, dest, plan.ModeJSON)
	_, err := s.engine.Run(ctx, cmds, cfg.Workers)
	return StageResult{Jobs: len(cmds)}, err
}
