package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sputniklab/sputnik/internal/debugtrace"
	"github.com/sputniklab/sputnik/internal/errorkit"
	"github.com/sputniklab/sputnik/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "sputnik",
		Usage:   "differential testing harness generator for C library implementations",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "trace every toolchain subprocess invocation to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("trace") {
				debugtrace.SetOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			introduceCommand,
			prebuildCommand,
			harnessCommand,
			mcpServeCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		if kind, ok := errorkit.KindOf(err); ok {
			fmt.Fprintf(os.Stderr, "sputnik: [%s] %s\n", kind, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
