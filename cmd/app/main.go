package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/holmgren/dagaz/internal"
	"github.com/holmgren/dagaz/internal/index"
	"github.com/holmgren/dagaz/internal/journalservice"
	"github.com/holmgren/dagaz/internal/mcpserver"
	"github.com/holmgren/dagaz/internal/storage"
	pkgconfig "github.com/holmgren/dagaz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) && !cmd.IsSet("config") {
		// No config file; run on defaults.
		return cfg, nil
	}
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// newService builds the storage, index, and service stack for one-shot
// subcommands. The returned cleanup closes the database.
func newService(cfg *internal.Config) (*journalservice.Service, func(), error) {
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	svc := journalservice.NewService(store, db, cfg.Journal.EffectiveStructures())
	return svc, func() { db.Close() }, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func parseAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: dagaz parse <note.md>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, cleanup, err := newService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.ParseFile(ctx, path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return printJSON(res)
}

func lintAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: dagaz lint <note.md>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, cleanup, err := newService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.LintFile(ctx, path)
	if err != nil {
		return fmt.Errorf("lint %s: %w", path, err)
	}
	return printJSON(res)
}

func statsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, cleanup, err := newService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cmd.Bool("reindex") {
		n, err := svc.ReindexAll(ctx)
		if err != nil {
			return fmt.Errorf("reindex: %w", err)
		}
		fmt.Fprintf(os.Stderr, "reindexed %d files\n", n)
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	return printJSON(summary)
}

func mcpAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, cleanup, err := newService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return mcpserver.New(svc).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "dagaz",
		Usage:  "Dream-journal engine: parses callout-structured Markdown notes into entries, metrics, and diagnostics",
		Action: serveAction,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with vault watching and SSE",
				Action: serveAction,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:      "parse",
				Usage:     "Parse one vault note and print entries and diagnostics as JSON",
				ArgsUsage: "<note.md>",
				Action:    parseAction,
				Flags:     []cli.Flag{configFlag},
			},
			{
				Name:      "lint",
				Usage:     "Evaluate one vault note against every configured structure",
				ArgsUsage: "<note.md>",
				Action:    lintAction,
				Flags:     []cli.Flag{configFlag},
			},
			{
				Name:   "stats",
				Usage:  "Print aggregated metrics across all indexed entries",
				Action: statsAction,
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "reindex",
						Usage: "Reparse the whole vault before aggregating",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: mcpAction,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
