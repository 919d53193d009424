// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/repo-scout/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List and inspect saved discovery runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(pipelineConfig(cmd).Store)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No saved runs.")
			return nil
		}

		for _, r := range runs {
			fmt.Printf("%s  %s  %2d result(s)  %q\n",
				r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Candidates, r.UserQuery)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the ranked results of one saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(pipelineConfig(cmd).Store)
		if err != nil {
			return err
		}
		defer s.Close()

		run, ranked, err := s.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Run %s (%s)\n", run.ID, run.CreatedAt.Local().Format(time.DateTime))
		fmt.Printf("Requirement: %s\n", run.UserQuery)
		if len(run.Query.Terms) > 0 {
			fmt.Printf("Search terms: %s\n", strings.Join(run.Query.Terms, " "))
		}
		if run.Query.Language != "" {
			fmt.Printf("Language: %s\n", run.Query.Language)
		}
		fmt.Println()
		printRankedTable(ranked)
		return nil
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
