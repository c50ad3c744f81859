package main

import (
	"fmt"
	"io"

	"github.com/goliatone/go-admin-console/components/console"
)

type fixturesCmd struct {
	Validate fixturesValidateCmd `cmd:"" help:"Validate fixture documents against their schemas."`
}

type fixturesValidateCmd struct {
	Dir string `arg:"" optional:"" type:"existingdir" help:"Fixture directory (defaults to fixtures.dir)."`
}

func (cmd *fixturesValidateCmd) Run(g *Globals, out io.Writer) error {
	dir := cmd.Dir
	if dir == "" {
		cfg, err := g.load()
		if err != nil {
			return err
		}
		dir = cfg.Fixtures.Dir
	}
	if dir == "" {
		return fmt.Errorf("consolectl: no fixture directory given")
	}
	if err := console.ValidateFixtureDir(dir); err != nil {
		return err
	}
	if _, err := console.LoadDatasetDir(dir); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ fixtures in %s are valid\n", dir)
	return nil
}
