package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sputniklab/sputnik/internal/library"
)

var introduceCommand = &cli.Command{
	Name:      "introduce",
	Usage:     "write a template config.json into a library directory",
	ArgsUsage: "<path>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "force",
			Usage: "overwrite an existing config.json",
		},
	},
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return fmt.Errorf("introduce: a library path is required")
		}

		if err := library.WriteDefault(path, c.Bool("force")); err != nil {
			return err
		}

		fmt.Printf("wrote %s/config.json\n", path)
		return nil
	},
}
