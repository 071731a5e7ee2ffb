// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the questscholar CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abdoljh/questscholar/internal/secrets"
	"github.com/abdoljh/questscholar/internal/session"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for
// key, otherwise "".
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the questscholar CLI.
var rootCmd = &cobra.Command{
	Use:   "questscholar",
	Short: "Aggregate, critique, and report on academic papers",
	Long: `questscholar searches academic APIs (Semantic Scholar, PubMed, arXiv,
OpenAlex) for papers on a research subject, collects them into a local
library, ingests critic evaluations, and renders executive summary reports
as PDF and interactive HTML.

Each workflow phase is a subcommand: search, dedupe, snapshot, critique,
report, export, and clear. The library persists in a SQLite database
between invocations.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file sets API keys for local development; absence is fine.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./questscholar.yaml or ~/.config/questscholar/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "session database path (default: ./questscholar.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("questscholar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "questscholar"))
		}
	}

	viper.SetDefault("db_path", "questscholar.db")
	viper.SetDefault("output_dir", ".")

	viper.SetEnvPrefix("QUESTSCHOLAR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// dbPath resolves the session database location: flag, then config, then
// the default beside the working directory.
func dbPath() string {
	if p, _ := rootCmd.PersistentFlags().GetString("db"); p != "" {
		return p
	}
	return viper.GetString("db_path")
}

// loadSession opens the session store and loads the persisted library.
// The caller owns the returned store and must Close it.
func loadSession(ctx context.Context) (*session.Store, *session.Session, error) {
	store, err := session.OpenStore(dbPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening session store: %w", err)
	}
	sess, err := store.Load(ctx)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("loading session: %w", err)
	}
	return store, sess, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
