package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/stickies/internal"
	"github.com/starford/stickies/internal/mcpserver"
	pkgconfig "github.com/starford/stickies/pkg/config"
)

const version = "1.0.0"

// applyFlags copies set flags (or their env vars) onto cfg.
func applyFlags(cmd *cli.Command, cfg *internal.Config) {
	if root := cmd.String("notes-root"); root != "" {
		cfg.Notes.Root = root
	}
	if ui := cmd.String("ui"); ui != "" {
		cfg.App.UI = ui
	}
}

// loadConfig reads the YAML config, if any. Flags win over the file.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	applyFlags(cmd, cfg)

	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	slog.SetDefault(logger)

	repo, err := internal.OpenRepository(cfg.Notes.Root, logger)
	if err != nil {
		return err
	}

	var srv *mcpserver.Server
	if cfg.SQLite.Enabled() {
		db, err := internal.OpenIndex(cfg.SQLite.Path, repo, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		srv = mcpserver.New(repo, db, version)
	} else {
		srv = mcpserver.New(repo, nil, version)
	}

	logger.Info("MCP server starting on stdio", slog.String("notes_root", cfg.Notes.Root))
	return srv.ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:    "stickies",
		Usage:   "Desktop sticky notes that save on every keystroke",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "notes-root",
				Usage:   "Directory holding one subdirectory per note",
				Sources: cli.EnvVars("STICKY_NOTES_DATA"),
			},
			&cli.StringFlag{
				Name:    "ui",
				Usage:   "Window backend: web or term",
				Sources: cli.EnvVars("STICKIES_UI"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve read-only note tools over MCP on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
