package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/onto16/internal"
	pkgconfig "github.com/starford/onto16/pkg/config"
)

// loadConfig reads the file named by --config over the built-in defaults.
// A missing file is not an error.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Apply one trigger file to the baseline profile",
		ArgsUsage: "<trigger>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the run report as JSON instead of progress lines",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("run: expected exactly one trigger file")
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			opts := []internal.Option{internal.WithConfig(cfg)}
			if c.Bool("json") {
				opts = append(opts, internal.WithOutput(io.Discard))
			}
			report, err := internal.RunExperiment(ctx, c.Args().Get(0), opts...)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			if c.Bool("json") {
				return printJSON(report)
			}
			return nil
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Run every trigger file in the triggers directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Triggers directory (overrides triggers.dir)",
				Sources: cli.EnvVars("ONTO16_TRIGGERS_DIR"),
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"j"},
				Usage:   "Maximum concurrent runs (overrides batch.concurrency)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if dir := c.String("dir"); dir != "" {
				cfg.Triggers.Dir = dir
			}
			if c.IsSet("concurrency") {
				cfg.Batch.Concurrency = int(c.Int("concurrency"))
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("batch: %w", err)
			}

			if _, err := internal.RunBatch(ctx, internal.WithConfig(cfg)); err != nil {
				return fmt.Errorf("batch: %w", err)
			}
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run triggers as they appear or change in the triggers directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Triggers directory (overrides triggers.dir)",
				Sources: cli.EnvVars("ONTO16_TRIGGERS_DIR"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if dir := c.String("dir"); dir != "" {
				cfg.Triggers.Dir = dir
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("watch: %w", err)
			}

			if err := internal.RunWatch(ctx, internal.WithConfig(cfg)); err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			return nil
		},
	}
}

func hashCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "Print the content hash of one or more profile documents",
		ArgsUsage: "<profile>...",
		Action: func(_ context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return fmt.Errorf("hash: expected at least one profile file")
			}
			for _, path := range c.Args().Slice() {
				sum, err := internal.HashProfile(path)
				if err != nil {
					return fmt.Errorf("hash: %w", err)
				}
				fmt.Printf("%s  %s\n", sum, path)
			}
			return nil
		},
	}
}

func diffCommand() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare two profile documents by hash and Jaccard distance",
		ArgsUsage: "<profileA> <profileB>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the comparison as JSON",
			},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("diff: expected two profile files")
			}
			cmp, err := internal.CompareProfiles(c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return fmt.Errorf("diff: %w", err)
			}
			if c.Bool("json") {
				return printJSON(cmp)
			}

			fmt.Printf("a: %s\nb: %s\n", cmp.HashA, cmp.HashB)
			fmt.Printf("identical: %t\nΔJaccard: %.3f\n", cmp.Identical, cmp.Distance)
			if len(cmp.Added) > 0 {
				fmt.Printf("added: %s\n", strings.Join(cmp.Added, ", "))
			}
			if len(cmp.Removed) > 0 {
				fmt.Printf("removed: %s\n", strings.Join(cmp.Removed, ", "))
			}
			return nil
		},
	}
}
