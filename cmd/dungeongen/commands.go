package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
	"github.com/Ko-stant/dungeon-builder/internal/level"
	"github.com/Ko-stant/dungeon-builder/internal/logging"
	"github.com/Ko-stant/dungeon-builder/internal/protocol"
)

const (
	outputASCII = "ascii"
	outputJSON  = "json"
)

type generateOptions struct {
	seed        int64
	graph       string
	output      string
	maxAttempts int
	maxRebuilds int
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "dungeongen",
		Short:         "Build and inspect procedural dungeon layouts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	logger := func(cmd *cobra.Command) (*slog.Logger, error) {
		return logging.New(logging.Options{Level: logLevel, Output: cmd.ErrOrStderr()})
	}

	root.AddCommand(newValidateCmd(), newGenerateCmd(logger), newSampleCmd())
	return root
}

// loadLevel reads the level at path, or the built-in dev level when no
// path is given.
func loadLevel(args []string) (*level.DungeonLevel, error) {
	if len(args) == 0 {
		return level.DevLevel(), nil
	}
	lvl, err := level.LoadLevelFile(args[0])
	if err != nil {
		return nil, err
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("level file %s is invalid: %w", args[0], err)
	}
	return lvl, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <level-file>",
		Short: "Check a level file for errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := loadLevel(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d templates, %d graphs)\n", lvl.Name, len(lvl.Templates), len(lvl.Graphs))
			return nil
		},
	}
}

func newGenerateCmd(newLogger func(*cobra.Command) (*slog.Logger, error)) *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate [level-file]",
		Short: "Generate a dungeon layout and print it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != outputASCII && opts.output != outputJSON {
				return fmt.Errorf("unknown output %q, want %s or %s", opts.output, outputASCII, outputJSON)
			}
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			lvl, err := loadLevel(args)
			if err != nil {
				return err
			}
			if opts.graph != "" {
				if lvl, err = lvl.WithGraph(opts.graph); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("seed") {
				opts.seed = dungeon.NewSeed()
			}

			b := dungeon.NewBuilder(dungeon.Settings{
				MaxBuildAttempts:           opts.maxAttempts,
				MaxRebuildAttemptsPerGraph: opts.maxRebuilds,
			}, opts.seed, logger)
			d, err := b.Generate(cmd.Context(), lvl)
			if err != nil {
				return err
			}
			return printDungeon(cmd, d, opts.output)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&opts.seed, "seed", 0, "layout seed (random when unset)")
	f.StringVar(&opts.graph, "graph", "", "only use the named room graph")
	f.StringVarP(&opts.output, "output", "o", outputASCII, "ascii or json")
	f.IntVar(&opts.maxAttempts, "max-attempts", dungeon.DefaultMaxBuildAttempts, "graph selections before giving up")
	f.IntVar(&opts.maxRebuilds, "max-rebuilds", dungeon.DefaultMaxRebuildAttemptsPerGraph, "layouts tried per selected graph")
	return cmd
}

func printDungeon(cmd *cobra.Command, d *dungeon.Dungeon, output string) error {
	out := cmd.OutOrStdout()
	if output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(protocol.NewDungeonSnapshot(d))
	}
	fmt.Fprintf(out, "%s / %s (seed %d, %d rooms, %d attempts)\n", d.Level, d.GraphName, d.Seed, d.Len(), d.Attempts)
	fmt.Fprintln(out, dungeon.ASCII(d))
	return nil
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print the built-in level as YAML, a starting point for new level files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(level.DevLevelDocument()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
