package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	status := flag.Bool("status", false, "List applied migrations and exit")
	dir := flag.String("dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console"})

	dsn := os.Getenv("DATABASE_URL")
	migrationsDir := *dir
	if dsn == "" || migrationsDir == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logging.Fatal().Err(err).Msg("DATABASE_URL is not set and configuration could not be loaded")
		}
		if cfg.DBDriver != "postgres" {
			logging.Fatal().Str("driver", cfg.DBDriver).Msg("migrate only manages postgres databases; sqlite is auto-migrated")
		}
		if dsn == "" {
			dsn = cfg.PostgresDSN()
		}
		if migrationsDir == "" {
			migrationsDir = cfg.Migrations
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if _, err := db.Exec(createMigrationsTable); err != nil {
		logging.Fatal().Err(err).Msg("failed to create migrations table")
	}

	switch {
	case *status:
		err = printStatus(db)
	case *rollback:
		err = rollbackLast(db, migrationsDir)
	default:
		err = applyPending(db, migrationsDir)
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
}

func applyPending(db *sql.DB, migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".sql") && !strings.HasSuffix(file.Name(), "_rollback.sql") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.SplitN(name, "_", 2)[0]

		var applied bool
		if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			logging.Info().Str("migration", name).Msg("already applied")
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		err = inTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(string(content)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", name, err)
			}
			_, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", version, name)
			return err
		})
		if err != nil {
			return err
		}
		logging.Info().Str("migration", name).Msg("applied migration")
	}

	logging.Info().Msg("all migrations applied")
	return nil
}

func rollbackLast(db *sql.DB, migrationsDir string) error {
	var version, name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&version, &name)
	if errors.Is(err, sql.ErrNoRows) {
		logging.Info().Msg("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackPath := filepath.Join(migrationsDir, strings.TrimSuffix(name, ".sql")+"_rollback.sql")
	content, err := os.ReadFile(rollbackPath)
	if err != nil {
		return fmt.Errorf("failed to read rollback file: %w", err)
	}

	err = inTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", version)
		return err
	})
	if err != nil {
		return err
	}

	logging.Info().Str("migration", name).Msg("rolled back migration")
	return nil
}

func printStatus(db *sql.DB) error {
	rows, err := db.Query("SELECT version, name, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var version, name, appliedAt string
		if err := rows.Scan(&version, &name, &appliedAt); err != nil {
			return err
		}
		fmt.Printf("%s\t%s\t%s\n", version, name, appliedAt)
	}
	return rows.Err()
}

func inTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
