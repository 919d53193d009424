// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences search, analysis, and ranking into one
// discovery run.
// Implements: prd005-pipeline (R1-R4);
//
//	docs/ARCHITECTURE § Orchestration.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/repo-scout/internal/analyze"
	"github.com/pdiddy/repo-scout/internal/github"
	"github.com/pdiddy/repo-scout/internal/rank"
	"github.com/pdiddy/repo-scout/pkg/types"
)

// ErrSearchUnavailable marks a run aborted because the search provider
// was unreachable after retry. A query the provider rejected as invalid
// (github.ErrQueryRejected) is returned as-is instead: the provider is
// up, the query is the problem. Per-metric failures never surface here;
// they are absorbed into the individual MetricsRecords.
var ErrSearchUnavailable = errors.New("search provider unavailable")

// State names the orchestrator's position in a run.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StateAnalyzing State = "analyzing"
	StateRanking   State = "ranking"
	StateDone      State = "done"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Searcher issues the provider search. *github.Client implements it.
type Searcher interface {
	SearchRepositories(ctx context.Context, query types.Query, cfg types.SearchConfig) ([]types.CandidateRef, error)
}

// Result is the outcome of one pipeline run. Candidates is the ranked
// list; for a cancelled run it holds exactly the candidates whose
// analysis completed before cancellation, already ranked among
// themselves. Per-candidate diagnostics travel inside each candidate's
// MetricsRecord.
type Result struct {
	State      State
	Candidates []types.ScoredCandidate
}

// Pipeline runs the discovery workflow: Searching → Analyzing → Ranking
// → Done, with Failed reachable from Searching and a short-circuit to
// Done when the search comes back empty. Each run owns its own provider
// client state; a Pipeline is built per invocation.
type Pipeline struct {
	searcher Searcher
	fetcher  analyze.Fetcher
	cfg      types.PipelineConfig

	mu    sync.Mutex
	state State
}

// New builds a pipeline over a searcher and a metrics fetcher. In
// production both are the same *github.Client.
func New(searcher Searcher, fetcher analyze.Fetcher, cfg types.PipelineConfig) *Pipeline {
	return &Pipeline{
		searcher: searcher,
		fetcher:  fetcher,
		cfg:      cfg,
		state:    StateIdle,
	}
}

// State reports the pipeline's current position. Safe to call from
// another goroutine while Run is in flight.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) transition(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run executes one discovery run. Progress is reported on w.
//
// Outcomes: (Done, nil) with a ranked list, possibly empty when the
// search matched nothing; (Failed, ErrSearchUnavailable) when the
// provider was unreachable; (Cancelled, ctx.Err()) carrying the
// candidates already fully analyzed — never a partial silent success.
func (p *Pipeline) Run(ctx context.Context, query types.Query, w io.Writer) (Result, error) {
	if query.IsEmpty() {
		return Result{State: StateFailed}, fmt.Errorf("query is empty: provide search terms or filters")
	}

	maxCandidates := p.cfg.Search.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 20
	}

	p.transition(StateSearching)
	candidates, err := p.searcher.SearchRepositories(ctx, query, p.cfg.Search)
	if err != nil {
		if ctx.Err() != nil {
			p.transition(StateCancelled)
			return Result{State: StateCancelled}, ctx.Err()
		}
		p.transition(StateFailed)
		if errors.Is(err, github.ErrQueryRejected) {
			return Result{State: StateFailed}, err
		}
		return Result{State: StateFailed}, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	// No matches is a normal outcome: skip straight to Done with an
	// empty ranked list (R2.3).
	if len(candidates) == 0 {
		p.transition(StateDone)
		fmt.Fprintln(w, "no repositories matched the query")
		return Result{State: StateDone}, nil
	}

	// Cap candidate count before analysis to bound provider cost.
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	fmt.Fprintf(w, "found %d candidate(s)\n", len(candidates))

	p.transition(StateAnalyzing)
	analyzed := analyze.Analyze(ctx, p.fetcher, candidates, p.cfg.Analyze, w)

	if ctx.Err() != nil {
		completed := make([]analyze.Result, 0, len(analyzed))
		for _, a := range analyzed {
			if a.Done {
				completed = append(completed, a)
			}
		}
		p.transition(StateCancelled)
		return Result{
			State:      StateCancelled,
			Candidates: rank.Rank(completed, p.cfg.Rank),
		}, ctx.Err()
	}

	p.transition(StateRanking)
	ranked := rank.Rank(analyzed, p.cfg.Rank)

	p.transition(StateDone)
	return Result{State: StateDone, Candidates: ranked}, nil
}
