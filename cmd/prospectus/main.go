// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the prospectus CLI. It extracts the
// curriculum of each degree program from the text of a university prospectus
// and loads it into a relational store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/prospectus/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the prospectus CLI.
var rootCmd = &cobra.Command{
	Use:   "prospectus",
	Short: "Extract program curricula from a university prospectus",
	Long: `prospectus reads the text extracted from a university prospectus (pages
separated by form feeds), finds each program's tentative study plan, parses its
semesters and courses, and loads them into SQLite or PostgreSQL.

Use load to run the full pipeline, parse to preview what would be loaded, and
courses or export to read the store back.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := types.DefaultPipelineConfig()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./prospectus.yaml or ~/.config/prospectus/prospectus.yaml)")
	pf.String("document", defaults.Locator.Document, "prospectus text file, pages separated by form feeds")
	pf.String("db-driver", string(defaults.Store.Driver), "store driver: sqlite3 or pgx")
	pf.String("dsn", defaults.Store.DSN, "sqlite3 file path or PostgreSQL connection URL")
	pf.String("log-level", defaults.Log.Level, "log level: debug, info, warn, error")
	pf.Bool("log-json", defaults.Log.JSON, "log JSON lines instead of console output")

	viper.BindPFlag("locator.document", pf.Lookup("document"))
	viper.BindPFlag("store.driver", pf.Lookup("db-driver"))
	viper.BindPFlag("store.dsn", pf.Lookup("dsn"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.json", pf.Lookup("log-json"))
}

func initConfig() {
	// A .env file is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("prospectus")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "prospectus"))
		}
	}

	viper.SetEnvPrefix("PROSPECTUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// DATABASE_URL is honored as a fallback for the DSN.
	viper.BindEnv("store.dsn", "PROSPECTUS_STORE_DSN", "DATABASE_URL")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
