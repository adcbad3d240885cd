/*
main.go - Application entry point

PURPOSE:
  Starts drinklog: loads configuration, builds the logger, opens the
  configured store, hands control to the cli runner, and closes the store
  on the way out.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load .env, drinklog.yaml and DRINKLOG_* environment (config package)
  3. Validate configuration
  4. Open the store (sqlite, json or memory)
  5. Run the menu or a single subcommand
  6. Close the store

COMMAND-LINE FLAGS:
  -config   Path to a YAML config file (default: ./drinklog.yaml if present)
  -backend  sqlite | json | memory
  -db       Database path
  -goal     Daily goal in ounces

EXAMPLES:
  # Interactive menu on the default SQLite database
  ./drinklog

  # One-off entry in a JSON document store
  ./drinklog -backend=json -db=./drinklog.json add water 16

  # Weekly summary with a different goal
  DRINKLOG_GOAL=80 ./drinklog week 2024-01-03

SEE ALSO:
  - config/config.go: Configuration keys and defaults
  - cli/runner.go: Menu and subcommands
  - backend/factory.go: Store selection
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/drinklog/backend"
	"github.com/warp/drinklog/cli"
	"github.com/warp/drinklog/config"
	"github.com/warp/drinklog/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Flags
	configFile := flag.String("config", "", "path to YAML config file")
	backendType := flag.String("backend", "", "storage backend: sqlite, json or memory")
	dbPath := flag.String("db", "", "database path")
	goal := flag.Float64("goal", -1, "daily goal in ounces")
	flag.Parse()

	overrides := map[string]any{}
	if *backendType != "" {
		overrides["backend"] = *backendType
	}
	if *dbPath != "" {
		overrides["db_path"] = *dbPath
	}
	if *goal >= 0 {
		overrides["goal"] = *goal
	}

	cfg, err := config.Load(config.Options{ConfigFile: *configFile, Overrides: overrides})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		App:    "drinklog",
		Output: os.Stderr,
	})

	// Initialize store
	store, err := backend.Open(cfg, logging.WithComponent(logger, "backend"))
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := cli.New(cli.Options{
		Store:     store,
		Goal:      cfg.Goal,
		BackupDir: cfg.BackupDir,
		BackupExt: backend.BackupExt(cfg.Backend),
		Logger:    logger,
	})

	logger.Debug("starting", "backend", cfg.Backend, "goal", cfg.Goal)
	return runner.Run(ctx, flag.Args())
}
