package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docweb/internal/build"
	"git.home.luguber.info/inful/docweb/internal/site"
	"git.home.luguber.info/inful/docweb/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period before rebuilding" default:"500ms"`
	ProjectArg
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadProject(c.Input)
	if err != nil {
		return err
	}
	if err := RunBuild(g, root, c.Input, build.ModeWebsite); err != nil {
		// Keep watching so the next save can fix the failure.
		slog.Error("Initial website build failed", "error", err)
	}

	dirs := []string{cfg.InputDir}
	if news := filepath.Join(cfg.InputDir, site.NewsDir); isDir(news) {
		dirs = append(dirs, news)
	}
	opts := []watch.Option{watch.WithDebounce(c.Debounce), watch.WithSkipExtensions(".html", ".xml")}
	if cfg.OutputDir != cfg.InputDir {
		opts = append(opts, watch.WithIgnore(cfg.OutputDir))
	}
	w := watch.New(dirs, func(context.Context) error {
		// Reload so edits to the project file take effect.
		return RunBuild(g, root, c.Input, build.ModeWebsite)
	}, opts...)

	slog.Info("Watching project, press Ctrl+C to stop", "input", cfg.InputFile)
	return w.Run(g.Ctx)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
