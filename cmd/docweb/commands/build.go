package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/docweb/internal/build"
	"git.home.luguber.info/inful/docweb/internal/logfields"
)

// AllCmd implements the default 'all' command.
type AllCmd struct{ ProjectArg }

func (c *AllCmd) Run(g *Global, root *CLI) error { return RunBuild(g, root, c.Input, build.ModeAll) }

// WebsiteCmd implements the 'website' command.
type WebsiteCmd struct{ ProjectArg }

func (c *WebsiteCmd) Run(g *Global, root *CLI) error {
	return RunBuild(g, root, c.Input, build.ModeWebsite)
}

// DocsCmd implements the 'docs' command.
type DocsCmd struct{ ProjectArg }

func (c *DocsCmd) Run(g *Global, root *CLI) error { return RunBuild(g, root, c.Input, build.ModeDocs) }

// PDFCmd implements the 'pdf' command.
type PDFCmd struct{ ProjectArg }

func (c *PDFCmd) Run(g *Global, root *CLI) error { return RunBuild(g, root, c.Input, build.ModePDF) }

// JSONCmd implements the 'json' command.
type JSONCmd struct{ ProjectArg }

func (c *JSONCmd) Run(g *Global, root *CLI) error { return RunBuild(g, root, c.Input, build.ModeJSON) }

// RunBuild loads the project and runs the stages of mode.
func RunBuild(g *Global, root *CLI, input string, mode build.Mode) error {
	cfg, err := root.LoadProject(input)
	if err != nil {
		return err
	}
	svc, err := NewService(g)
	if err != nil {
		return err
	}

	result, runErr := svc.Run(g.Ctx, build.BuildRequest{Config: cfg, Mode: mode})
	if err := root.FlushMetrics(g); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	slog.Info("Build finished",
		logfields.Mode(string(mode)),
		logfields.Path(result.OutputPath),
		slog.Int("stages", len(result.Stages)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return nil
}
