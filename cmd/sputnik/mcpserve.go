package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/sputniklab/sputnik/internal/config"
	"github.com/sputniklab/sputnik/internal/mcpserver"
)

var mcpServeCommand = &cli.Command{
	Name:  "mcp-serve",
	Usage: "serve a read-only MCP surface over configured libraries' build state and signatures",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "config", Value: config.ProjectFileName, Usage: "project file"},
	},
	Action: func(c *cli.Context) error {
		proj, err := config.LoadProject(c.String("config"))
		if err != nil {
			return err
		}

		srv, err := mcpserver.New(proj.Libraries)
		if err != nil {
			return err
		}

		return srv.Run(context.Background())
	},
}
