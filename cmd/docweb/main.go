package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docweb/cmd/docweb/commands"
	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/version"
)

func main() {
	// Variables already in the environment win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli commands.CLI
	global := &commands.Global{Ctx: ctx, Stdout: os.Stdout}
	parser := kong.Parse(&cli,
		kong.Name("docweb"),
		kong.Description("Build a project website, documentation pages, PDF manuals and news feed."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := parser.Run(global, &cli); err != nil {
		cancel()
		derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
