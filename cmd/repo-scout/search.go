// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/repo-scout/internal/github"
	"github.com/pdiddy/repo-scout/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Search the provider for candidate repositories",
	Long: `Search queries the repository provider and prints the deduplicated
candidate list in relevance order, without analyzing or ranking it. Use
find for the full workflow.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("language", "", "restrict candidates to a language")
	searchCmd.Flags().StringSlice("topic", nil, "restrict candidates to topics (repeatable)")
	searchCmd.Flags().Int("max-candidates", 0, "maximum candidates to collect (default 20)")
	searchCmd.Flags().String("token", "", "provider API token (default: .secrets/github-token)")
	searchCmd.Flags().Bool("json", false, "output candidates as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	language, _ := cmd.Flags().GetString("language")
	topics, _ := cmd.Flags().GetStringSlice("topic")

	query := types.Query{Terms: args, Language: language, Topics: topics}
	if query.IsEmpty() {
		return fmt.Errorf("provide search terms, --language, or --topic")
	}

	cfg := pipelineConfig(cmd)
	client := github.NewClient(githubToken(cmd), cfg.Metrics)

	candidates, err := client.SearchRepositories(cmd.Context(), query, cfg.Search)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	if len(candidates) == 0 {
		fmt.Println("No repositories matched the query.")
		return nil
	}
	for i, cand := range candidates {
		fmt.Printf("%2d. %s\n", i+1, cand.FullName())
	}
	fmt.Printf("\n%d candidate(s) for %q\n", len(candidates), strings.Join(args, " "))
	return nil
}
