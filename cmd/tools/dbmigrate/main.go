// cmd/tools/dbmigrate/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		dbPath         = flag.String("db", "", "Path to SQLite database")
		migrationsPath = flag.String("migrations", "internal/db/migrations", "Path to migrations directory")
		command        = flag.String("command", "", "Command to run (up, down, steps, force, version)")
		steps          = flag.Int("n", 0, "Step count for steps, target version for force")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *dbPath == "" || *command == "" {
		fmt.Fprintln(os.Stderr, "-db and -command are required:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	absDB, err := filepath.Abs(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database path")
	}
	absMigrations, err := filepath.Abs(*migrationsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid migrations path")
	}
	if _, err := os.Stat(absMigrations); os.IsNotExist(err) {
		log.Fatal().Str("path", absMigrations).Msg("Migrations directory does not exist")
	}
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	m, err := migrate.New("file://"+absMigrations, "sqlite3://"+absDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrate instance")
	}
	defer m.Close()

	logger := log.With().Str("db", absDB).Str("command", *command).Logger()
	if err := run(m, *command, *steps); err != nil {
		logger.Fatal().Err(err).Msg("Migration command failed")
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info().Msg("No migrations applied")
	case err != nil:
		logger.Fatal().Err(err).Msg("Failed to get version")
	default:
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migration command completed")
	}
}

func run(m *migrate.Migrate, command string, n int) error {
	var err error
	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if n == 0 {
			return fmt.Errorf("steps requires a non-zero -n")
		}
		err = m.Steps(n)
	case "force":
		err = m.Force(n)
	case "version":
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
