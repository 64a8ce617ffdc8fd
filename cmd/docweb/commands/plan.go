package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/docweb/internal/build"
	"git.home.luguber.info/inful/docweb/internal/config"
	"git.home.luguber.info/inful/docweb/internal/plan"
)

// PlanCmd implements the 'plan' command.
type PlanCmd struct {
	Mode string `short:"m" help:"Command family to print (docs, webdocs, json, pdf)" enum:"docs,webdocs,json,pdf" default:"docs"`
	ProjectArg
}

func (c *PlanCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadProject(c.Input)
	if err != nil {
		return err
	}
	mode := plan.Mode(c.Mode)
	dest := PlanDestination(cfg, mode)
	cmds := plan.BuildCommands(cfg, dest, mode)
	if mode == plan.ModeDocs && len(cmds) > 0 {
		cmds = append(cmds, plan.IndexCommand(cfg, dest))
	}
	_, err = fmt.Fprint(g.Stdout, plan.Describe(mode, cmds))
	return err
}

// PlanDestination is the directory a build writes mode's output to.
func PlanDestination(cfg *config.ProjectConfig, mode plan.Mode) string {
	switch mode {
	case plan.ModeDocs, plan.ModePDF:
		return filepath.Join(cfg.OutputDir, build.DocsDir)
	case plan.ModeJSON:
		return filepath.Join(cfg.OutputDir, build.JSONDir)
	}
	return cfg.OutputDir
}
