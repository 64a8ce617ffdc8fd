package commands

import derrors "git.home.luguber.info/inful/docweb/internal/errors"

// ConfigCmd implements the 'config' command.
type ConfigCmd struct{ ProjectArg }

func (c *ConfigCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadProject(c.Input)
	if err != nil {
		return err
	}
	out, err := cfg.MarshalSummary()
	if err != nil {
		return derrors.InternalError("encode configuration", err)
	}
	_, err = g.Stdout.Write(out)
	return err
}
