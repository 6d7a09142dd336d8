package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "mortar",
		Usage:     "generate a TypeScript client from an annotated OpenAPI document",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to mortar.json / mortar.yaml (default: discovered in the working directory)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "input",
				Usage: "OpenAPI document URL or path (overrides swaggerEndpoint)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "relative output directory (overrides outputDir)",
			},
			&cli.BoolFlag{
				Name:  "no-format",
				Usage: "skip the formatter",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "regenerate even when the document is unchanged",
			},
		},
		Action: runGenerate,
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "generate the client once (default)",
				Action: runGenerate,
			},
			{
				Name:   "watch",
				Usage:  "regenerate whenever the document changes",
				Action: runWatch,
			},
			{
				Name:   "dump",
				Usage:  "print the parsed modules, endpoints and schemas as a tree",
				Action: runDump,
			},
			{
				Name:  "config",
				Usage: "configuration helpers",
				Subcommands: []*cli.Command{
					{
						Name:   "validate",
						Usage:  "check the resolved configuration and report problems",
						Action: runConfigValidate,
					},
				},
			},
		},
	}
}

func runGenerate(cctx *cli.Context) error {
	s, err := setup(cctx, true)
	if err != nil {
		return err
	}
	_, err = s.pipeline(true).run(cctx.Context)
	return err
}

func runConfigValidate(cctx *cli.Context) error {
	s, err := setup(cctx, false)
	if err != nil {
		return err
	}
	out := cctx.App.Writer
	if s.configPath != "" {
		fmt.Fprintf(out, "config: %s\n", s.configPath)
	} else {
		fmt.Fprintln(out, "config: none found, using defaults and environment")
	}

	diags := diagnostic.NewCollector(false, false)
	s.cfg.ValidateDetailed().Report(diags, configSubject(s.configPath))
	for _, d := range diags.Diagnostics() {
		fmt.Fprintf(out, "%s: %s\n", d.Severity, d.Message)
	}
	if diags.HasErrors() {
		return fmt.Errorf("configuration has %d error(s)", diags.ErrorCount())
	}
	fmt.Fprintln(out, "configuration is valid")
	return nil
}
