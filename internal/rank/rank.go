// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank converts metrics records into composite scores and a
// deterministic total order.
// Implements: prd004-ranking (R1-R3);
//
//	docs/ARCHITECTURE § Ranking.
package rank

import (
	"math"
	"sort"

	"github.com/pdiddy/repo-scout/internal/analyze"
	"github.com/pdiddy/repo-scout/pkg/types"
)

// Component caps. The composite score is the sum of five independently
// capped contributions; the caps are the contract, the curves inside
// them are tuning (RankConfig).
const (
	CapPopularity  = 1000.0
	CapCommunity   = 500.0
	CapActivity    = 300.0
	CapMaintenance = 200.0
	CapStability   = 100.0
)

// pointsGrid is the resolution component points are snapped to. Every
// quantized value and every partial sum of the five components is then
// exactly representable as a float64, so the breakdown sums to the score
// bit-identically in whatever order a consumer iterates the map.
const pointsGrid = 1024

// quantize snaps points onto the 1/pointsGrid grid.
func quantize(points float64) float64 {
	return math.Round(points*pointsGrid) / pointsGrid
}

// scoreOrder fixes the summation order so equal inputs always produce
// bit-identical scores.
var scoreOrder = []types.Component{
	types.ComponentPopularity,
	types.ComponentCommunity,
	types.ComponentActivity,
	types.ComponentMaintenance,
	types.ComponentStability,
}

// Rank scores every analyzed candidate and returns them in descending
// score order, ties broken by star count descending (unknown stars sort
// after every known count), then candidate ID ascending. The order is a
// stable total order: ranking the same input twice yields the same
// output (R3.1-R3.3).
//
// A candidate with all-unknown metrics scores 0 and lands at the bottom
// of its tie group; it is never dropped (R1.6).
func Rank(analyzed []analyze.Result, cfg types.RankConfig) []types.ScoredCandidate {
	scored := make([]types.ScoredCandidate, 0, len(analyzed))
	for _, a := range analyzed {
		score, breakdown := Score(a.Metrics, cfg)
		scored = append(scored, types.ScoredCandidate{
			Candidate: a.Candidate,
			Metrics:   a.Metrics,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		si, sj := scored[i].Metrics.Stars, scored[j].Metrics.Stars
		if si.Known != sj.Known {
			return si.Known
		}
		if si.Known && si.Value != sj.Value {
			return si.Value > sj.Value
		}
		return scored[i].Candidate.ID < scored[j].Candidate.ID
	})

	return scored
}

// Score computes the composite score and its breakdown for one record.
// Every component whose underlying metric is unknown contributes exactly
// 0 points and is flagged Unavailable in the breakdown, so callers can
// tell "measured as zero" from "could not measure" (R2.4). Points are
// quantized (see pointsGrid), so the breakdown values sum exactly to the
// returned score in any summation order.
func Score(m types.MetricsRecord, cfg types.RankConfig) (float64, map[types.Component]types.ComponentScore) {
	breakdown := map[types.Component]types.ComponentScore{
		types.ComponentPopularity:  scaled(m.Stars, cfg.KPop, CapPopularity),
		types.ComponentCommunity:   scaled(m.Contributors, cfg.KComm, CapCommunity),
		types.ComponentActivity:    stepped(m.LastPushAgeDays, cfg.ActivitySteps, CapActivity),
		types.ComponentMaintenance: stepped(m.MedianPRMergeHours, cfg.MaintenanceSteps, CapMaintenance),
		types.ComponentStability:   stability(m.OpenIssueRatio),
	}

	var score float64
	for _, c := range scoreOrder {
		score += breakdown[c].Points
	}
	return score, breakdown
}

// scaled is the linear-with-cap transform used by popularity and
// community: min(cap, value·k).
func scaled(m types.Metric[int], k, limit float64) types.ComponentScore {
	if !m.Known {
		return types.ComponentScore{Unavailable: true}
	}
	points := float64(m.Value) * k
	if points > limit {
		points = limit
	}
	if points < 0 {
		points = 0
	}
	return types.ComponentScore{Points: quantize(points)}
}

// stepped awards the points of the first step whose threshold the raw
// value does not exceed. Past the last step the candidate earns 0: for
// activity that is the staleness cutoff, for maintenance the
// slow-to-merge cutoff. Monotonicity holds as long as the configured
// points decrease with threshold.
func stepped(m types.Metric[float64], steps []types.StepPoints, limit float64) types.ComponentScore {
	if !m.Known {
		return types.ComponentScore{Unavailable: true}
	}
	for _, s := range steps {
		if m.Value <= s.Threshold {
			points := s.Points
			if points > limit {
				points = limit
			}
			return types.ComponentScore{Points: quantize(points)}
		}
	}
	return types.ComponentScore{}
}

// stability rewards a low open-issue burden: min(100, (1−ratio)·100).
func stability(m types.Metric[float64]) types.ComponentScore {
	if !m.Known {
		return types.ComponentScore{Unavailable: true}
	}
	points := (1 - m.Value) * CapStability
	if points > CapStability {
		points = CapStability
	}
	if points < 0 {
		points = 0
	}
	return types.ComponentScore{Points: quantize(points)}
}
