package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

var runMigrations bool

var rootCmd = &cobra.Command{
	Use:          "loaddata",
	Short:        "loaddata fills the foodgram catalog and creates accounts",
	Long:         "loaddata imports ingredients and tags from CSV or JSON fixtures and creates users. It reads the same environment as the API server.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&runMigrations, "migrate", false, "Apply migrations before loading")
}

// openDB connects with the environment configuration, migrating first when asked
func openDB() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if runMigrations {
		if err := database.RunMigrations(db, cfg.Migrations); err != nil {
			return nil, err
		}
	}
	return db, nil
}
