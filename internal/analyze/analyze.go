// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze assembles a metrics record for every search candidate.
// Implements: prd003-analysis (R1-R3);
//
//	docs/ARCHITECTURE § Analysis.
package analyze

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/repo-scout/pkg/types"
)

// Fetcher is the metrics source for one candidate. *github.Client
// implements it; tests substitute fakes.
type Fetcher interface {
	FetchMetrics(ctx context.Context, cand types.CandidateRef, metricSet []types.MetricName) types.MetricsRecord
}

// Result pairs one candidate with its metrics record. Done is false only
// when the run was cancelled before this candidate's analysis finished;
// such results carry no usable record.
type Result struct {
	Candidate types.CandidateRef
	Metrics   types.MetricsRecord
	Done      bool
}

// Analyze fetches the full metric set for every candidate through a
// bounded worker pool. The output is one-to-one with the input and in
// input order regardless of completion order: workers write into indexed
// slots rather than streaming (R1.2, R2.2).
//
// Candidates are independent; the pool width trades end-to-end latency
// against the shared provider quota. A candidate whose every metric
// failed still comes back, with an all-unknown record — dropping it is
// the ranking engine's decision to make, never ours (R1.3).
//
// On cancellation Analyze stops issuing fetches, waits for in-flight
// ones, and returns with only the finished results marked Done (R3.1).
func Analyze(ctx context.Context, f Fetcher, candidates []types.CandidateRef, cfg types.AnalyzeConfig, w io.Writer) []Result {
	results := make([]Result, len(candidates))
	for i, cand := range candidates {
		results[i] = Result{Candidate: cand}
	}
	if len(candidates) == 0 {
		return results
	}

	workers := cfg.Concurrency
	if workers <= 0 {
		workers = 4
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex // guards w

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec := f.FetchMetrics(ctx, candidates[i], types.AllMetrics())

				// A record assembled under a cancelled context may be
				// truncated; leave the slot not-Done instead.
				if ctx.Err() != nil {
					return
				}

				results[i].Metrics = rec
				results[i].Done = true

				mu.Lock()
				if n := len(rec.FetchErrors); n > 0 {
					fmt.Fprintf(w, "analyzed %s (%d metric(s) unavailable)\n", candidates[i].FullName(), n)
				} else {
					fmt.Fprintf(w, "analyzed %s\n", candidates[i].FullName())
				}
				mu.Unlock()
			}
		}()
	}

	for i := range candidates {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
