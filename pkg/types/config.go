package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "repo-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the repository searcher. HTTP settings
// come from MetricsConfig: search and metric fetches share one provider
// client.
// Per prd001-search R2.1-R2.4.
type SearchConfig struct {
	// MaxCandidates caps the number of distinct candidates collected
	// (default 20). Bounds total metrics-API cost downstream.
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// PerPage is the provider page size for search requests (default 30).
	PerPage int `json:"per_page" yaml:"per_page"`
}

// MetricsConfig holds settings for the metrics client.
// Per prd002-metrics R4.1-R4.3.
type MetricsConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRetries is the number of retries for transient failures
	// (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// ReleaseWindow is the lookback window for the release count metric
	// (default 90 days).
	ReleaseWindow time.Duration `json:"release_window" yaml:"release_window"`
}

// AnalyzeConfig holds settings for the analyzer worker pool.
// Per prd003-analysis R2.1.
type AnalyzeConfig struct {
	// Concurrency bounds the number of candidates analyzed in parallel
	// (default 4). The shared constraint is the metrics provider's
	// rate-limit quota, not CPU.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// StepPoints maps a raw-metric threshold to awarded points. A candidate
// whose raw value is at most Threshold earns Points. Steps are evaluated
// in ascending threshold order, so a curve stays monotonically decreasing
// as long as Points decrease with Threshold.
type StepPoints struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Points    float64 `json:"points" yaml:"points"`
}

// RankConfig holds the tunable scoring constants. The caps and the
// monotonicity of the step curves are the contract; the specific numbers
// are product tuning.
// Per prd004-ranking R1.1-R1.6.
type RankConfig struct {
	// KPop scales stars into popularity points (default 0.1, cap 1000).
	KPop float64 `json:"k_pop" yaml:"k_pop"`

	// KComm scales contributors into community points (default 5, cap 500).
	KComm float64 `json:"k_comm" yaml:"k_comm"`

	// ActivitySteps awards points by last-push age in days, cap 300.
	// Beyond the last threshold a candidate is stale and earns 0.
	ActivitySteps []StepPoints `json:"activity_steps" yaml:"activity_steps"`

	// MaintenanceSteps awards points by median PR merge hours, cap 200.
	MaintenanceSteps []StepPoints `json:"maintenance_steps" yaml:"maintenance_steps"`
}

// DefaultRankConfig returns the scoring constants carried over from the
// original product tuning.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		KPop:  0.1,
		KComm: 5,
		ActivitySteps: []StepPoints{
			{Threshold: 7, Points: 300},
			{Threshold: 30, Points: 200},
			{Threshold: 90, Points: 100},
		},
		MaintenanceSteps: []StepPoints{
			{Threshold: 24, Points: 200},
			{Threshold: 72, Points: 150},
			{Threshold: 168, Points: 100},
			{Threshold: 336, Points: 50},
		},
	}
}

// AIConfig holds settings for the external LLM completion service used
// for query parsing and response generation.
type AIConfig struct {
	// Endpoint is the chat-completions URL (OpenAI-compatible).
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Model is the model identifier (e.g. "gpt-4-turbo-preview").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// StoreConfig holds settings for the run-history store.
type StoreConfig struct {
	// Path is the sqlite database file (default "repo-scout.db").
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Search  SearchConfig  `json:"search" yaml:"search"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Analyze AnalyzeConfig `json:"analyze" yaml:"analyze"`
	Rank    RankConfig    `json:"rank" yaml:"rank"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}
