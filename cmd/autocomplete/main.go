// Package main is the entry point for the autocomplete CLI application.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	accli "github.com/NikitaCOEUR/autocomplete/internal/cli"
	"github.com/NikitaCOEUR/autocomplete/internal/trace"
	"github.com/NikitaCOEUR/autocomplete/pkg/version"
)

func main() {
	stop := trace.Init()

	err := newApp(os.Stdout).Run(context.Background(), os.Args)
	stop()

	if err != nil {
		if code, ok := accli.ErrorCode(err); ok {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// defaultCacheDir returns the XDG cache location for packed dictionaries
func defaultCacheDir() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, "autocomplete")
}

func newApp(out io.Writer) *cli.Command {
	common := func(cmd *cli.Command) accli.CommonParams {
		return accli.CommonParams{
			LogLevel:   cmd.String("log-level"),
			ConfigPath: cmd.String("config"),
			CacheDir:   cmd.String("cache-dir"),
			Out:        out,
		}
	}

	return &cli.Command{
		Name:                  "autocomplete",
		Usage:                 "Keystroke-driven completion engine and store tooling",
		Version:               version.String(),
		Writer:                out,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("AUTOCOMPLETE_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (defaults to the user config, then built-in stores)",
				Sources: cli.EnvVars("AUTOCOMPLETE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Value:   defaultCacheDir(),
				Usage:   "Where YAML, JSON and text dictionaries are cached as msgpack (empty disables caching)",
				Sources: cli.EnvVars("AUTOCOMPLETE_CACHE_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "complete",
				Usage:     "Show what a store completes for a buffer",
				ArgsUsage: "[text]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "store",
						Aliases:  []string{"s"},
						Usage:    "Store name from the config",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "text",
						Aliases: []string{"t"},
						Usage:   "Buffer content",
					},
					&cli.IntFlag{
						Name:  "caret",
						Value: -1,
						Usage: "Caret byte offset (end of text when negative)",
					},
					&cli.IntFlag{
						Name:  "accept",
						Value: -1,
						Usage: "Accept this 0-based row and print the resulting buffer",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					text := cmd.String("text")
					if text == "" && cmd.Args().Len() > 0 {
						text = cmd.Args().Get(0)
					}
					_, err := accli.Complete(accli.CompleteParams{
						CommonParams: common(cmd),
						Store:        cmd.String("store"),
						Text:         text,
						Caret:        cmd.Int("caret"),
						Accept:       cmd.Int("accept"),
					})
					return err
				},
			},
			{
				Name:      "replay",
				Usage:     "Play a keystroke script against the configured stores",
				ArgsUsage: "<script.yml>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "timing",
						Usage: "Show engine time per step",
					},
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Rerun when the script or config file changes",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return fmt.Errorf("script path required")
					}
					_, err := accli.Replay(ctx, accli.ReplayParams{
						CommonParams: common(cmd),
						ScriptPath:   cmd.Args().Get(0),
						Timing:       cmd.Bool("timing"),
						Watch:        cmd.Bool("watch"),
					})
					return err
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "[config-file]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return accli.Validate(accli.ValidateParams{
						CommonParams: common(cmd),
						Path:         cmd.Args().Get(0),
					})
				},
			},
			{
				Name:      "schema",
				Usage:     "Display or export the JSON Schema for configuration files",
				ArgsUsage: "[output-file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (prints to stdout if not specified)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					outputPath := cmd.String("output")
					if outputPath == "" && cmd.Args().Len() > 0 {
						outputPath = cmd.Args().Get(0)
					}
					return accli.Schema(outputPath, out)
				},
			},
			{
				Name:  "stores",
				Usage: "Show the resolved configuration and its stores",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return accli.Stores(common(cmd))
				},
			},
			{
				Name:      "clean",
				Usage:     "Remove cached dictionaries",
				ArgsUsage: "[dictionary]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return accli.Clean(accli.CleanParams{
						CommonParams: common(cmd),
						Dictionary:   cmd.Args().Get(0),
					})
				},
			},
			{
				Name:  "dict",
				Usage: "Dictionary tools",
				Commands: []*cli.Command{
					{
						Name:      "pack",
						Usage:     "Convert a YAML, JSON or text dictionary to msgpack",
						ArgsUsage: "<input> <output.msgpack>",
						Action: func(_ context.Context, cmd *cli.Command) error {
							if cmd.Args().Len() != 2 {
								return fmt.Errorf("expected 2 arguments, got %d", cmd.Args().Len())
							}
							return accli.DictPack(accli.DictPackParams{
								CommonParams: common(cmd),
								Input:        cmd.Args().Get(0),
								Output:       cmd.Args().Get(1),
							})
						},
					},
				},
			},
		},
	}
}
