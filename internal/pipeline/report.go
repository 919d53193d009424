// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/repo-scout/pkg/types"
)

// ReportFile is the on-disk representation of a discovery run. The user
// can save a run to a file and inspect or diff it later without
// re-querying the provider.
// Implements: prd005-pipeline R4.2.
type ReportFile struct {
	UserQuery string                  `yaml:"user_query,omitempty"`
	Query     types.Query             `yaml:"query"`
	Config    ReportConfig            `yaml:"config"`
	Results   []types.ScoredCandidate `yaml:"results"`
	Summary   ReportSummary           `yaml:"summary"`
}

// ReportConfig stores the configuration that produced the results.
type ReportConfig struct {
	MaxCandidates int `yaml:"max_candidates"`
	Concurrency   int `yaml:"concurrency"`
}

// ReportSummary stores run statistics and a timestamp.
type ReportSummary struct {
	State      string    `yaml:"state"`
	Candidates int       `yaml:"candidates"`
	Degraded   int       `yaml:"degraded"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// WriteReportFile saves a run outcome to a YAML file. Degraded counts
// candidates with at least one unavailable metric.
func WriteReportFile(path, userQuery string, query types.Query, cfg types.PipelineConfig, result Result) error {
	degraded := 0
	for _, sc := range result.Candidates {
		if len(sc.Metrics.FetchErrors) > 0 {
			degraded++
		}
	}

	report := ReportFile{
		UserQuery: userQuery,
		Query:     query,
		Config: ReportConfig{
			MaxCandidates: cfg.Search.MaxCandidates,
			Concurrency:   cfg.Analyze.Concurrency,
		},
		Results: result.Candidates,
		Summary: ReportSummary{
			State:      string(result.State),
			Candidates: len(result.Candidates),
			Degraded:   degraded,
			Timestamp:  time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}
	return nil
}
