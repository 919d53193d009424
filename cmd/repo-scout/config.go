// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/repo-scout/pkg/types"
)

const defaultUserAgent = "repo-scout/0.1"

// pipelineConfig assembles the run configuration: viper-backed file and
// environment settings first, command flags on top.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.PipelineConfig{
		Search: types.SearchConfig{
			MaxCandidates: viper.GetInt("search.max_candidates"),
			PerPage:       viper.GetInt("search.per_page"),
		},
		Metrics: types.MetricsConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: defaultUserAgent,
			},
			MaxRetries: viper.GetInt("metrics.max_retries"),
		},
		Analyze: types.AnalyzeConfig{
			Concurrency: viper.GetInt("analyze.concurrency"),
		},
		Rank: types.DefaultRankConfig(),
		AI: types.AIConfig{
			Endpoint:    viper.GetString("ai.endpoint"),
			Model:       viper.GetString("ai.model"),
			APIKey:      secretDefault("openai-api-key", viper.GetString("ai.api_key")),
			Temperature: viper.GetFloat64("ai.temperature"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
	}

	if n, _ := cmd.Flags().GetInt("max-candidates"); n > 0 {
		cfg.Search.MaxCandidates = n
	}
	if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
		cfg.Analyze.Concurrency = n
	}
	return cfg
}

// githubToken resolves the provider token: flag, then environment via
// viper, then .secrets/github-token.
func githubToken(cmd *cobra.Command) string {
	if tok, _ := cmd.Flags().GetString("token"); tok != "" {
		return tok
	}
	return secretDefault("github-token", viper.GetString("github_token"))
}
