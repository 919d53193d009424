// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/repo-scout/internal/agent"
	"github.com/pdiddy/repo-scout/internal/github"
	"github.com/pdiddy/repo-scout/internal/pipeline"
	"github.com/pdiddy/repo-scout/internal/store"
	"github.com/pdiddy/repo-scout/pkg/types"
)

var findCmd = &cobra.Command{
	Use:   "find [requirement...]",
	Short: "Discover and rank repositories for a requirement",
	Long: `Find runs the full discovery workflow: the requirement is parsed into
search parameters (through the language-model agent when an API key is
configured), candidates are searched, analyzed in parallel, and ranked by
composite score.

The ranked table marks metrics that could not be measured; they score
zero but are reported as unknown, never as a measured zero. Completed
runs are saved to the local run history unless --no-save is given.`,
	RunE: runFind,
}

func init() {
	findCmd.Flags().String("language", "", "restrict candidates to a language")
	findCmd.Flags().StringSlice("topic", nil, "restrict candidates to topics (repeatable)")
	findCmd.Flags().Int("max-candidates", 0, "maximum candidates to analyze (default 20)")
	findCmd.Flags().Int("concurrency", 0, "parallel metric fetches (default 4)")
	findCmd.Flags().String("token", "", "provider API token (default: .secrets/github-token)")
	findCmd.Flags().Bool("json", false, "output results as JSON")
	findCmd.Flags().String("output", "", "write a YAML report to this file")
	findCmd.Flags().Bool("explain", false, "generate a conversational explanation of the top results")
	findCmd.Flags().Int("top", 5, "number of results to explain")
	findCmd.Flags().Bool("no-save", false, "skip saving the run to history")

	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a requirement, e.g.: repo-scout find fast key-value store")
	}
	userQuery := strings.Join(args, " ")

	cfg := pipelineConfig(cmd)
	ctx := cmd.Context()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	var progress io.Writer = os.Stderr
	if jsonOutput {
		progress = io.Discard
	}

	ai := agent.New(cfg.AI)
	query := buildQuery(ctx, ai, userQuery, cmd)
	logger.Debug("resolved query", "terms", query.Terms, "language", query.Language, "topics", query.Topics)

	client := github.NewClient(githubToken(cmd), cfg.Metrics)
	p := pipeline.New(client, client, cfg)

	result, err := p.Run(ctx, query, progress)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Candidates); err != nil {
			return err
		}
	} else {
		printRankedTable(result.Candidates)
	}

	if explain, _ := cmd.Flags().GetBool("explain"); explain {
		if err := explainResults(ctx, ai, userQuery, result.Candidates, cmd); err != nil {
			fmt.Fprintf(os.Stderr, "warning: explanation unavailable: %v\n", err)
		}
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := pipeline.WriteReportFile(path, userQuery, query, cfg, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote report to %s\n", path)
	}

	if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave && len(result.Candidates) > 0 {
		if err := saveRun(ctx, cfg.Store, userQuery, query, result.Candidates); err != nil {
			fmt.Fprintf(os.Stderr, "warning: run not saved: %v\n", err)
		}
	}
	return nil
}

// buildQuery turns the free-text requirement into search parameters,
// through the agent when one is configured, from flags otherwise.
func buildQuery(ctx context.Context, ai *agent.Client, userQuery string, cmd *cobra.Command) types.Query {
	language, _ := cmd.Flags().GetString("language")
	topics, _ := cmd.Flags().GetStringSlice("topic")

	query := types.Query{Terms: strings.Fields(userQuery), Language: language, Topics: topics}
	if !ai.Configured() {
		return query
	}

	parsed, err := ai.ParseQuery(ctx, userQuery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: query parsing failed, using raw terms: %v\n", err)
		return query
	}
	// Explicit flags beat the agent's inference.
	if language != "" {
		parsed.Language = language
	}
	if len(topics) > 0 {
		parsed.Topics = topics
	}
	return parsed
}

func explainResults(ctx context.Context, ai *agent.Client, userQuery string, ranked []types.ScoredCandidate, cmd *cobra.Command) error {
	if !ai.Configured() {
		return fmt.Errorf("no language model configured: set ai.model and .secrets/openai-api-key")
	}
	top, _ := cmd.Flags().GetInt("top")
	if top <= 0 || top > len(ranked) {
		top = len(ranked)
	}
	text, err := ai.Explain(ctx, userQuery, ranked[:top])
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(text)
	return nil
}

func saveRun(ctx context.Context, cfg types.StoreConfig, userQuery string, query types.Query, ranked []types.ScoredCandidate) error {
	s, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.SaveRun(ctx, userQuery, query, ranked)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved run %s\n", id)
	return nil
}
