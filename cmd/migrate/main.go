package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		action         string
		migrationsPath string
		configPath     string
		logLevel       string
		target         string
		name           string
		description    string
		confirm        bool
	)
	flag.StringVar(&action, "action", "", "up | down | step | goto | version | force | drop | create | list")
	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to the migrations directory")
	flag.StringVar(&configPath, "config", "", "Config file (default: ./config.toml when present)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&target, "n", "", "Step count for step, version for goto and force")
	flag.StringVar(&name, "name", "", "Migration name for create")
	flag.StringVar(&description, "desc", "", "Migration description for create")
	flag.BoolVar(&confirm, "confirm", false, "Required by drop")
	flag.Usage = printUsage
	flag.Parse()

	if action == "" {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	log = log.With(zap.String("action", action), zap.String("migrations_path", absPath))

	// create and list only touch the filesystem
	switch action {
	case "create":
		if name == "" {
			log.Fatal("Migration name required: -action create -name <name> [-desc <text>]")
		}
		mig, err := migration.CreateMigration(absPath, name, description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", mig.Version),
			zap.String("up_file", mig.UpPath),
			zap.String("down_file", mig.DownPath),
		)
		return
	case "list":
		migrations, err := migration.ListMigrations(absPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, m := range migrations {
			fmt.Printf("  %06d  %s\n", m.Version, m.Name)
		}
		log.Info("Available migrations", zap.Int("count", len(migrations)))
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, absPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := run(m, action, target, confirm, log); err != nil {
		log.Error("Migration failed", zap.Error(err))
		_ = m.Close()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func run(m *migration.Migrator, action, target string, confirm bool, log *zap.Logger) error {
	switch action {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("step requires -n <count>: %w", err)
		}
		return m.Steps(n)
	case "goto":
		v, err := strconv.ParseUint(target, 10, 0)
		if err != nil {
			return fmt.Errorf("goto requires -n <version>: %w", err)
		}
		return m.GoTo(uint(v))
	case "force":
		v, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("force requires -n <version>: %w", err)
		}
		return m.Force(v)
	case "drop":
		if !confirm {
			return fmt.Errorf("drop removes every table; rerun with -confirm")
		}
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown action %q", action)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `CRM database migration tool

Usage:
  migrate -action <action> [flags]

Actions:
  up                      Apply all pending migrations
  down                    Roll back all migrations
  step -n <count>         Apply count migrations, negative rolls back
  goto -n <version>       Migrate to a specific version
  version                 Show the applied version
  force -n <version>      Mark version as applied and clear the dirty flag
  drop -confirm           Drop every table
  create -name <name>     Create the next numbered up/down pair
  list                    List migrations on disk

Flags:
  -path string            Migrations directory (default "migrations")
  -config string          Config file (default ./config.toml when present)
  -log-level string       debug, info, warn, error (default "info")

Database settings come from config.toml and CRM_DATABASE_* variables.`)
}
