// Package main is the entry point of the task board API. It serves the HTTP
// API and manages the PostgreSQL schema.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
)

type cli struct {
	app           *kingpin.Application
	configDir     *string
	serve         *kingpin.CmdClause
	migrate       *kingpin.CmdClause
	migrateAction *string
}

func newCLI() *cli {
	app := kingpin.New("taskboard-api", "Task board API server")
	c := &cli{
		app:       app,
		configDir: app.Flag("config-dir", "Directory holding config.yaml and .env").Default(".").String(),
		serve:     app.Command("serve", "Run the HTTP API server").Default(),
		migrate:   app.Command("migrate", "Manage the PostgreSQL schema"),
	}
	c.migrateAction = c.migrate.Arg("command", "Migration command").
		Required().Enum(postgres.MigrationCommands...)
	return c
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "taskboard-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	c := newCLI()
	command, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFrom(*c.configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, closer, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	defer func() { _ = closer.Close() }()

	switch command {
	case c.migrate.FullCommand():
		return runMigrations(ctx, cfg, *c.migrateAction, log)
	default:
		app, err := newApplication(ctx, cfg, log)
		if err != nil {
			return err
		}
		return app.serve(ctx)
	}
}
