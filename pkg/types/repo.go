// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the repo-scout pipeline.
// Implements: prd001-search (Query, CandidateRef);
//
//	prd002-metrics (MetricsRecord, FetchError);
//	prd004-ranking (ScoredCandidate, ComponentScore).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Query holds the parsed search parameters handed to the pipeline. It is
// produced by the (external) query parser and immutable once handed over.
type Query struct {
	// Terms is the ordered sequence of search terms.
	Terms []string `json:"terms" yaml:"terms"`

	// Language is an optional language filter (e.g. "go", "python").
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Topics is a set of topic filters (e.g. "cli", "web-framework").
	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty"`
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return len(q.Terms) == 0 && q.Language == "" && len(q.Topics) == 0
}

// CandidateRef identifies one repository returned by the searcher.
type CandidateRef struct {
	// Owner is the account that owns the repository.
	Owner string `json:"owner" yaml:"owner"`

	// Name is the repository name.
	Name string `json:"name" yaml:"name"`

	// ID is the provider's opaque repository ID. Unique within one
	// pipeline run; used for deduplication and tie-breaking.
	ID string `json:"id" yaml:"id"`
}

// FullName returns "owner/name".
func (c CandidateRef) FullName() string {
	return c.Owner + "/" + c.Name
}

// MetricName identifies one measurable fact about a candidate.
type MetricName string

const (
	MetricStars        MetricName = "stars"
	MetricContributors MetricName = "contributors"
	MetricLastPush     MetricName = "last_push"
	MetricPRMerge      MetricName = "pr_merge"
	MetricIssueRatio   MetricName = "issue_ratio"
	MetricReleases     MetricName = "releases"
)

// AllMetrics returns the full metric set in canonical order.
func AllMetrics() []MetricName {
	return []MetricName{
		MetricStars,
		MetricContributors,
		MetricLastPush,
		MetricPRMerge,
		MetricIssueRatio,
		MetricReleases,
	}
}

// ErrorKind classifies a per-metric fetch failure.
type ErrorKind string

const (
	ErrorNotFound    ErrorKind = "not_found"
	ErrorRateLimited ErrorKind = "rate_limited"
	ErrorTransient   ErrorKind = "transient"
	ErrorMalformed   ErrorKind = "malformed"
)

// FetchError records one failed metric fetch for a candidate.
type FetchError struct {
	Metric MetricName `json:"metric" yaml:"metric"`
	Kind   ErrorKind  `json:"kind" yaml:"kind"`
}

// MetricsRecord holds the normalized metrics for one candidate. It is owned
// exclusively by the analyzer that built it and immutable once returned.
// A metric the client could not fetch is unknown, never zero; the failure
// is recorded in FetchErrors.
type MetricsRecord struct {
	// Stars is the stargazer count.
	Stars Metric[int] `json:"stars" yaml:"stars"`

	// Contributors is the contributor count.
	Contributors Metric[int] `json:"contributors" yaml:"contributors"`

	// LastPushAgeDays is the age of the most recent push, in days.
	LastPushAgeDays Metric[float64] `json:"last_push_age_days" yaml:"last_push_age_days"`

	// MedianPRMergeHours is the median time from PR creation to merge,
	// in hours, over recently merged pull requests.
	MedianPRMergeHours Metric[float64] `json:"median_pr_merge_hours" yaml:"median_pr_merge_hours"`

	// OpenIssueRatio is the open-issue burden in [0,1].
	OpenIssueRatio Metric[float64] `json:"open_issue_ratio" yaml:"open_issue_ratio"`

	// ReleaseCount90d is the number of releases published in the last 90 days.
	ReleaseCount90d Metric[int] `json:"release_count_90d" yaml:"release_count_90d"`

	// FetchErrors records every metric that failed, with its classified kind.
	FetchErrors []FetchError `json:"fetch_errors,omitempty" yaml:"fetch_errors,omitempty"`
}

// AllUnknown reports whether no metric was fetched at all.
func (m MetricsRecord) AllUnknown() bool {
	return !m.Stars.Known && !m.Contributors.Known && !m.LastPushAgeDays.Known &&
		!m.MedianPRMergeHours.Known && !m.OpenIssueRatio.Known && !m.ReleaseCount90d.Known
}

// Component names one contribution to the composite score.
type Component string

const (
	ComponentPopularity  Component = "popularity"
	ComponentCommunity   Component = "community"
	ComponentActivity    Component = "activity"
	ComponentMaintenance Component = "maintenance"
	ComponentStability   Component = "stability"
)

// ComponentScore is one entry in a score breakdown. Unavailable marks a
// component whose underlying metric was unknown; its Points are always 0,
// which is distinct from a component measured as zero.
type ComponentScore struct {
	Points      float64 `json:"points" yaml:"points"`
	Unavailable bool    `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

// ScoredCandidate pairs a candidate with its metrics and composite score.
// The breakdown values always sum exactly to Score.
type ScoredCandidate struct {
	Candidate CandidateRef                 `json:"candidate" yaml:"candidate"`
	Metrics   MetricsRecord                `json:"metrics" yaml:"metrics"`
	Score     float64                      `json:"score" yaml:"score"`
	Breakdown map[Component]ComponentScore `json:"score_breakdown" yaml:"score_breakdown"`
}
