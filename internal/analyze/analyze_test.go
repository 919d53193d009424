// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/repo-scout/pkg/types"
)

// fakeFetcher returns canned records keyed by candidate ID and tracks
// concurrency.
type fakeFetcher struct {
	records map[string]types.MetricsRecord
	delay   time.Duration

	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int32
}

func (f *fakeFetcher) FetchMetrics(ctx context.Context, cand types.CandidateRef, _ []types.MetricName) types.MetricsRecord {
	atomic.AddInt32(&f.calls, 1)

	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(f.delay):
		}
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	return f.records[cand.ID]
}

func candidates(n int) []types.CandidateRef {
	out := make([]types.CandidateRef, n)
	for i := range out {
		id := strconv.Itoa(i + 1)
		out[i] = types.CandidateRef{Owner: "o", Name: "repo-" + id, ID: id}
	}
	return out
}

func TestAnalyzePreservesInputOrder(t *testing.T) {
	cands := candidates(8)
	f := &fakeFetcher{
		records: map[string]types.MetricsRecord{
			"3": {Stars: types.Known(30)},
			"7": {Stars: types.Known(70)},
		},
		delay: time.Millisecond,
	}

	got := Analyze(context.Background(), f, cands, types.AnalyzeConfig{Concurrency: 4}, &bytes.Buffer{})

	if len(got) != len(cands) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(cands))
	}
	for i, r := range got {
		if r.Candidate.ID != cands[i].ID {
			t.Errorf("got[%d].ID = %s, want %s: output must follow input order", i, r.Candidate.ID, cands[i].ID)
		}
		if !r.Done {
			t.Errorf("got[%d] not done", i)
		}
	}
	if got[2].Metrics.Stars.Or(0) != 30 {
		t.Errorf("got[2].Stars = %+v, want 30", got[2].Metrics.Stars)
	}
	if got[6].Metrics.Stars.Or(0) != 70 {
		t.Errorf("got[6].Stars = %+v, want 70", got[6].Metrics.Stars)
	}
}

func TestAnalyzeBoundsConcurrency(t *testing.T) {
	f := &fakeFetcher{delay: 10 * time.Millisecond}

	Analyze(context.Background(), f, candidates(12), types.AnalyzeConfig{Concurrency: 3}, &bytes.Buffer{})

	if f.peak > 3 {
		t.Errorf("peak concurrency = %d, want at most 3", f.peak)
	}
	if f.calls != 12 {
		t.Errorf("calls = %d, want 12", f.calls)
	}
}

func TestAnalyzeKeepsFailedCandidates(t *testing.T) {
	f := &fakeFetcher{
		records: map[string]types.MetricsRecord{
			"1": {Stars: types.Known(10)},
			"2": {FetchErrors: []types.FetchError{
				{Metric: types.MetricStars, Kind: types.ErrorNotFound},
			}},
		},
	}

	got := Analyze(context.Background(), f, candidates(2), types.AnalyzeConfig{}, &bytes.Buffer{})

	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if !got[1].Done {
		t.Error("failed candidate should still complete analysis")
	}
	if !got[1].Metrics.AllUnknown() {
		t.Error("failed candidate record should be all-unknown")
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	got := Analyze(context.Background(), &fakeFetcher{}, nil, types.AnalyzeConfig{}, &bytes.Buffer{})
	if len(got) != 0 {
		t.Errorf("len(got) = %d, want 0", len(got))
	}
}

func TestAnalyzeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeFetcher{delay: 20 * time.Millisecond}
	cands := candidates(20)

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	got := Analyze(ctx, f, cands, types.AnalyzeConfig{Concurrency: 2}, &bytes.Buffer{})
	elapsed := time.Since(start)

	// 20 candidates at 20ms through 2 workers would take ~200ms; the
	// cancelled run must return well before that.
	if elapsed > 150*time.Millisecond {
		t.Errorf("Analyze took %v after cancellation", elapsed)
	}
	if len(got) != len(cands) {
		t.Fatalf("len(got) = %d, want %d: slots exist even when cancelled", len(got), len(cands))
	}

	done := 0
	for _, r := range got {
		if r.Done {
			done++
		}
	}
	if done == len(cands) {
		t.Error("every candidate marked done despite cancellation")
	}
}

func TestAnalyzeProgressOutput(t *testing.T) {
	var buf bytes.Buffer
	f := &fakeFetcher{
		records: map[string]types.MetricsRecord{
			"2": {FetchErrors: []types.FetchError{
				{Metric: types.MetricPRMerge, Kind: types.ErrorTransient},
				{Metric: types.MetricReleases, Kind: types.ErrorTransient},
			}},
		},
	}

	Analyze(context.Background(), f, candidates(2), types.AnalyzeConfig{Concurrency: 1}, &buf)

	out := buf.String()
	if !strings.Contains(out, "analyzed o/repo-1") {
		t.Errorf("output missing clean progress line: %q", out)
	}
	if !strings.Contains(out, "analyzed o/repo-2 (2 metric(s) unavailable)") {
		t.Errorf("output missing degraded progress line: %q", out)
	}
}
