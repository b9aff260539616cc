package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"webhook_feed/internal/config"
	"webhook_feed/migrations"
)

type command struct {
	name string
	help string
	run  func(ctx context.Context, db *sql.DB) error
}

var commands = []command{
	{"up", "Create or upgrade the change-feed tables", func(ctx context.Context, db *sql.DB) error {
		return goose.UpContext(ctx, db, ".")
	}},
	{"up-one", "Apply the next pending migration", func(ctx context.Context, db *sql.DB) error {
		return goose.UpByOneContext(ctx, db, ".")
	}},
	{"down", "Roll back the latest migration", func(ctx context.Context, db *sql.DB) error {
		return goose.DownContext(ctx, db, ".")
	}},
	{"status", "List applied and pending migrations", func(ctx context.Context, db *sql.DB) error {
		return goose.StatusContext(ctx, db, ".")
	}},
	{"version", "Print the schema version", func(ctx context.Context, db *sql.DB) error {
		return goose.VersionContext(ctx, db, ".")
	}},
	{"reset", "Drop every change-feed table", func(ctx context.Context, db *sql.DB) error {
		return goose.ResetContext(ctx, db, ".")
	}},
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [-db path] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Manages the schema the webhook worker reads from.")
	fmt.Fprintf(os.Stderr, "The database defaults to $DATABASE_PATH or %s.\n", config.DefaultDatabasePath)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s  %s\n", c.name, c.help)
	}
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dbPath := flag.String("db", config.DatabasePath(), "path to sqlite database")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		log.Error("unknown command", "command", args[0])
		usage()
		os.Exit(1)
	}

	if err := run(*dbPath, cmd); err != nil {
		log.Error("migrate failed", "command", cmd.name, "db", *dbPath, "error", err)
		os.Exit(1)
	}
}

func run(dbPath string, cmd *command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Setup(); err != nil {
		return fmt.Errorf("setup migrations: %w", err)
	}
	return cmd.run(ctx, db)
}
