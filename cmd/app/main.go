package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	pkgconfig "github.com/starford/raido/pkg/config"
)

// loadConfig reads the config file named by the --config flag. A missing
// default file is not an error: the built-in defaults apply.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if cmd.IsSet("config") {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return cfg, nil
	}
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// applyManifestFlag lets --manifest override the configured manifest path.
// The explicit value "none" disables the manifest entirely.
func applyManifestFlag(cmd *cli.Command, cfg *internal.Config) {
	if !cmd.IsSet("manifest") {
		return
	}
	path := cmd.String("manifest")
	if path == "none" {
		path = ""
	}
	cfg.Manifest.Path = path
}

func dirJobFromArgs(cmd *cli.Command) (*internal.DirJob, error) {
	if cmd.Args().Len() != 2 {
		return nil, fmt.Errorf("expected <source-dir> and <output-dir> arguments")
	}
	return &internal.DirJob{
		SourceDir: cmd.Args().Get(0),
		OutputDir: cmd.Args().Get(1),
		SkipDirs:  cmd.String("skip-dirs"),
		ImageDir:  cmd.String("image-dir"),
		PDFDir:    cmd.String("pdf-dir"),
	}, nil
}

var dirFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "skip-dirs",
		Usage: "Regex of source subpaths to skip",
	},
	&cli.StringFlag{
		Name:  "image-dir",
		Usage: "Copy all images into this directory instead of mirroring",
	},
	&cli.StringFlag{
		Name:  "pdf-dir",
		Usage: "Copy all PDFs into this directory instead of mirroring",
	},
	&cli.StringFlag{
		Name:  "manifest",
		Usage: "Manifest database path (overrides config; \"none\" disables)",
	},
}

func runFile(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one Markdown file argument")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return internal.RunConvertFile(ctx,
		internal.WithConfig(cfg),
		internal.WithFileJob(&internal.FileJob{
			MarkdownFile: cmd.Args().First(),
			OutputDir:    cmd.String("output-dir"),
		}),
	)
}

func runDir(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyManifestFlag(cmd, cfg)
	job, err := dirJobFromArgs(cmd)
	if err != nil {
		return err
	}

	return internal.RunConvertDir(ctx,
		internal.WithConfig(cfg),
		internal.WithDirJob(job),
	)
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyManifestFlag(cmd, cfg)
	job, err := dirJobFromArgs(cmd)
	if err != nil {
		return err
	}

	return internal.RunWatch(ctx,
		internal.WithConfig(cfg),
		internal.WithDirJob(job),
	)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one output directory argument")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyManifestFlag(cmd, cfg)

	return internal.RunServe(ctx,
		internal.WithConfig(cfg),
		internal.WithDirJob(&internal.DirJob{
			OutputDir: cmd.Args().First(),
		}),
	)
}

func main() {
	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Convert Obsidian Markdown notes into org-roam note collections",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("RAIDO_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "file",
				Usage:     "Convert a single Markdown note",
				ArgsUsage: "<note.md>",
				Action:    runFile,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Directory to write the .org file into",
						Value:   "out",
					},
				},
			},
			{
				Name:      "dir",
				Usage:     "Convert a whole vault directory",
				ArgsUsage: "<source-dir> <output-dir>",
				Action:    runDir,
				Flags:     dirFlags,
			},
			{
				Name:      "watch",
				Usage:     "Convert a vault and re-convert on changes",
				ArgsUsage: "<source-dir> <output-dir>",
				Action:    runWatch,
				Flags:     dirFlags,
			},
			{
				Name:      "serve",
				Usage:     "Serve a converted corpus and its manifest over HTTP",
				ArgsUsage: "<output-dir>",
				Action:    runServe,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "Manifest database path (overrides config)",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
