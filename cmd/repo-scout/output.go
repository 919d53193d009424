// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pdiddy/repo-scout/pkg/types"
)

// printRankedTable renders the ranked candidates as a table. Unknown
// metrics print as "?" so a missing measurement never reads as zero.
func printRankedTable(ranked []types.ScoredCandidate) {
	if len(ranked) == 0 {
		fmt.Println("No repositories matched the query.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Rank", "Repository", "Score", "Stars", "Contributors", "Push Age (d)", "PR Merge (h)", "Notes"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, sc := range ranked {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			sc.Candidate.FullName(),
			fmt.Sprintf("%.0f", sc.Score),
			intCell(sc.Metrics.Stars),
			intCell(sc.Metrics.Contributors),
			floatCell(sc.Metrics.LastPushAgeDays),
			floatCell(sc.Metrics.MedianPRMergeHours),
			notesCell(sc),
		})
	}
	if err := table.Bulk(data); err != nil {
		logger.Error("rendering table", "err", err)
		return
	}
	if err := table.Render(); err != nil {
		logger.Error("rendering table", "err", err)
	}
}

func intCell(m types.Metric[int]) string {
	if !m.Known {
		return "?"
	}
	return strconv.Itoa(m.Value)
}

func floatCell(m types.Metric[float64]) string {
	if !m.Known {
		return "?"
	}
	return fmt.Sprintf("%.1f", m.Value)
}

// notesCell summarizes degraded measurements for one candidate.
func notesCell(sc types.ScoredCandidate) string {
	n := len(sc.Metrics.FetchErrors)
	switch {
	case sc.Metrics.AllUnknown():
		return "no data"
	case n == 1:
		return "1 metric unavailable"
	case n > 1:
		return fmt.Sprintf("%d metrics unavailable", n)
	default:
		return ""
	}
}
