package build

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/docweb/internal/config"
	derrors "git.home.luguber.info/inful/docweb/internal/errors"
)

// BuildService is the canonical interface for executing builds.
type BuildService interface {
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// Mode selects which stages a build runs.
type Mode string

const (
	ModeAll     Mode = "all"
	ModeWebsite Mode = "website"
	ModeDocs    Mode = "docs"
	ModePDF     Mode = "pdf"
	ModeJSON    Mode = "json"
)

// Stage names, also used as metric labels.
const (
	StageWebsite = "website"
	StageDocs    = "docs"
	StagePDF     = "pdf"
	StageJSON    = "json"
)

// Stages returns the stage sequence for m.
func (m Mode) Stages() []string {
	switch m {
	case ModeAll, "":
		return []string{StageWebsite, StageDocs}
	case ModeWebsite:
		return []string{StageWebsite}
	case ModeDocs:
		return []string{StageDocs}
	case ModePDF:
		return []string{StagePDF}
	case ModeJSON:
		return []string{StageJSON}
	}
	return nil
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if m.Stages() == nil || s == "" {
		return "", derrors.ValidationFailed("mode", fmt.Sprintf("unknown build mode %q", s))
	}
	return m, nil
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded project configuration; it is not modified.
	Config *config.ProjectConfig

	// Mode selects the stages; empty means ModeAll.
	Mode Mode
}

// StageResult describes one finished (or skipped) stage.
type StageResult struct {
	Name     string
	Duration time.Duration
	// Jobs is the number of external commands the stage ran.
	Jobs int
	// Skipped is set when an optional toolchain was missing.
	Skipped    bool
	SkipReason string
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// Status indicates overall build outcome.
	Status BuildStatus

	Mode Mode

	// Stages lists the stages that ran, in order.
	Stages []StageResult

	// OutputPath is the output directory of the build.
	OutputPath string

	// Duration is the total build execution time.
	Duration time.Duration

	StartTime time.Time
	EndTime   time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed successfully.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
