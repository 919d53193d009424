// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the repo-scout CLI.
// Implements: prd001-search, prd002-metrics, prd003-analysis,
//             prd004-ranking, prd005-pipeline, prd006-agent,
//             prd007-run-history (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/repo-scout/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the CLI-wide structured logger; --verbose lowers it to debug.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05.00",
	Level:           log.WarnLevel,
})

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the repo-scout CLI.
var rootCmd = &cobra.Command{
	Use:   "repo-scout",
	Short: "Discover and rank open-source repositories",
	Long: `repo-scout finds repositories matching a requirement, measures their
health from provider metrics (stars, contributors, activity, maintenance,
stability), and ranks them by a transparent composite score.

Use find for the full discovery workflow, search for the raw candidate
list, and runs to revisit saved rankings.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger.SetLevel(log.DebugLevel)
		}

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
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./repo-scout.yaml or ~/.config/repo-scout/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("repo-scout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "repo-scout"))
		}
	}

	viper.SetEnvPrefix("REPO_SCOUT")
	viper.AutomaticEnv()

	viper.SetDefault("search.max_candidates", 20)
	viper.SetDefault("search.per_page", 30)
	viper.SetDefault("analyze.concurrency", 4)
	viper.SetDefault("ai.model", "gpt-4-turbo-preview")
	viper.SetDefault("store.path", "repo-scout.db")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
