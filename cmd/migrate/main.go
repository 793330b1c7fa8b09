// Command migrate manages the schema of the POS tables (sales channel types,
// payment and shipping methods, inventory snapshots, sync runs and logs).
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/swagpaypal/backend/internal/infrastructure/config"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"github.com/swagpaypal/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const usage = `Usage: migrate [-path dir] [-log-level level] <command> [arg]

Commands:
  up               apply all pending migrations
  down             roll back every migration
  step <n>         apply n migrations, negative n rolls back
  version          print the current version
  force <version>  mark version as applied without running it
  list             list the embedded migrations

Connection settings come from config.toml or POS_DATABASE_* variables.`

// command runs against an open migrator with the positional argument, if any.
type command func(m *migration.Migrator, arg string, log *zap.Logger) error

var commands = map[string]command{
	"up":   func(m *migration.Migrator, _ string, _ *zap.Logger) error { return m.Up() },
	"down": func(m *migration.Migrator, _ string, _ *zap.Logger) error { return m.Down() },
	"step": func(m *migration.Migrator, arg string, _ *zap.Logger) error {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("step needs an integer count: %w", err)
		}
		return m.Steps(n)
	},
	"force": func(m *migration.Migrator, arg string, _ *zap.Logger) error {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("force needs a version: %w", err)
		}
		return m.Force(v)
	},
	"version": func(m *migration.Migrator, _ string, log *zap.Logger) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	},
}

var errUsage = errors.New("usage")

func main() {
	path := flag.String("path", "", "read migrations from this directory instead of the embedded set")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(flag.Args(), *path, log); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal("Migration failed", zap.Error(err))
	}
}

func run(args []string, path string, log *zap.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	name, arg := args[0], ""
	if len(args) > 1 {
		arg = args[1]
	}

	if name == "list" {
		names, err := migration.ListEmbedded()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		log.Error("Unknown command", zap.String("command", name))
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := openDB(cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	var m *migration.Migrator
	if path != "" {
		m, err = migration.New(db, path, log)
	} else {
		m, err = migration.NewEmbedded(db, log)
	}
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := cmd(m, arg, log); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
