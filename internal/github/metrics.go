// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/pdiddy/repo-scout/pkg/types"
)

// providerError carries a classified provider failure for one metric group.
type providerError struct {
	Kind types.ErrorKind
	Err  error
}

func (e *providerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *providerError) Unwrap() error { return e.Err }

// FetchMetrics assembles a MetricsRecord fragment for one candidate,
// fetching only the requested metrics. Failures are strictly per metric:
// a metric the provider refused stays unknown and is recorded in
// FetchErrors with its classified kind, and sibling metrics are still
// fetched (R3.1-R3.4). FetchMetrics never returns an error; total failure
// yields an all-unknown record.
//
// Metrics derived from the same provider call form a group; a group
// failure records one FetchError per affected requested metric.
func (c *Client) FetchMetrics(ctx context.Context, cand types.CandidateRef, metricSet []types.MetricName) types.MetricsRecord {
	want := make(map[types.MetricName]bool, len(metricSet))
	for _, m := range metricSet {
		want[m] = true
	}

	var rec types.MetricsRecord

	fail := func(err error, affected ...types.MetricName) {
		kind := types.ErrorTransient
		var pe *providerError
		if errors.As(err, &pe) {
			kind = pe.Kind
		}
		for _, m := range affected {
			if want[m] {
				rec.FetchErrors = append(rec.FetchErrors, types.FetchError{Metric: m, Kind: kind})
			}
		}
	}

	if want[types.MetricStars] || want[types.MetricLastPush] || want[types.MetricIssueRatio] {
		details, err := c.repoDetails(ctx, cand)
		if err != nil {
			fail(err, types.MetricStars, types.MetricLastPush, types.MetricIssueRatio)
		} else {
			if want[types.MetricStars] {
				rec.Stars = types.Known(details.Stargazers)
			}
			if want[types.MetricLastPush] {
				if details.PushedAt.IsZero() {
					fail(&providerError{Kind: types.ErrorMalformed, Err: fmt.Errorf("missing pushed_at")}, types.MetricLastPush)
				} else {
					age := c.now().Sub(details.PushedAt).Hours() / 24
					if age < 0 {
						age = 0
					}
					rec.LastPushAgeDays = types.Known(age)
				}
			}
			if want[types.MetricIssueRatio] {
				rec.OpenIssueRatio = types.Known(issueRatio(details.OpenIssues, details.Stargazers))
			}
		}
	}

	if want[types.MetricContributors] {
		n, err := c.contributorCount(ctx, cand)
		if err != nil {
			fail(err, types.MetricContributors)
		} else {
			rec.Contributors = types.Known(n)
		}
	}

	if want[types.MetricPRMerge] {
		median, ok, err := c.medianMergeHours(ctx, cand)
		if err != nil {
			fail(err, types.MetricPRMerge)
		} else if ok {
			// A repository with no merged PRs has no median; the metric
			// stays unknown without a fetch error.
			rec.MedianPRMergeHours = types.Known(median)
		}
	}

	if want[types.MetricReleases] {
		n, err := c.releaseCount(ctx, cand)
		if err != nil {
			fail(err, types.MetricReleases)
		} else {
			rec.ReleaseCount90d = types.Known(n)
		}
	}

	return rec
}

// issueRatio normalizes open-issue burden into [0,1]: open issues per
// star, clamped. A repository with no stars and any open issues saturates
// at 1.
func issueRatio(openIssues, stars int) float64 {
	if stars < 1 {
		stars = 1
	}
	ratio := float64(openIssues) / float64(stars)
	if ratio > 1 {
		return 1
	}
	if ratio < 0 {
		return 0
	}
	return ratio
}

// getJSON performs one metric-group call and decodes the payload,
// classifying failures into the pipeline taxonomy.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return &providerError{Kind: classify(0, err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return &providerError{Kind: classify(resp.StatusCode, nil), Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, path)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &providerError{Kind: types.ErrorMalformed, Err: fmt.Errorf("parsing %s response: %w", path, err)}
	}
	return nil
}

// Provider JSON structures.
type repoDetailsPayload struct {
	Stargazers int       `json:"stargazers_count"`
	OpenIssues int       `json:"open_issues_count"`
	PushedAt   time.Time `json:"pushed_at"`
}

type contributorPayload struct {
	Login string `json:"login"`
}

type pullPayload struct {
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at"`
}

type releasePayload struct {
	PublishedAt time.Time `json:"published_at"`
	Draft       bool      `json:"draft"`
}

// repoDetails fetches the repository record: stars, open issue count,
// and the last push timestamp come from this one call.
func (c *Client) repoDetails(ctx context.Context, cand types.CandidateRef) (*repoDetailsPayload, error) {
	var details repoDetailsPayload
	path := fmt.Sprintf("/repos/%s/%s", cand.Owner, cand.Name)
	if err := c.getJSON(ctx, path, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// contributorCount counts contributors on the first provider page. An
// empty repository answers 204 and counts as zero contributors, which is
// a measured value, not an unknown.
func (c *Client) contributorCount(ctx context.Context, cand types.CandidateRef) (int, error) {
	var contributors []contributorPayload
	path := fmt.Sprintf("/repos/%s/%s/contributors", cand.Owner, cand.Name)
	params := url.Values{"per_page": {"100"}}
	if err := c.getJSON(ctx, path, params, &contributors); err != nil {
		return 0, err
	}
	return len(contributors), nil
}

// medianMergeHours computes the median open-to-merge time over recently
// closed pull requests. ok is false when the repository has no merged
// PRs to measure.
func (c *Client) medianMergeHours(ctx context.Context, cand types.CandidateRef) (median float64, ok bool, err error) {
	var pulls []pullPayload
	path := fmt.Sprintf("/repos/%s/%s/pulls", cand.Owner, cand.Name)
	params := url.Values{
		"state":     {"closed"},
		"per_page":  {"100"},
		"sort":      {"updated"},
		"direction": {"desc"},
	}
	if err := c.getJSON(ctx, path, params, &pulls); err != nil {
		return 0, false, err
	}

	var hours []float64
	for _, pr := range pulls {
		if pr.MergedAt == nil || pr.CreatedAt.IsZero() {
			continue
		}
		hours = append(hours, pr.MergedAt.Sub(pr.CreatedAt).Hours())
	}
	if len(hours) == 0 {
		return 0, false, nil
	}

	sort.Float64s(hours)
	mid := len(hours) / 2
	if len(hours)%2 == 1 {
		return hours[mid], true, nil
	}
	return (hours[mid-1] + hours[mid]) / 2, true, nil
}

// releaseCount counts releases published within the lookback window.
// The provider 404s the listing for repositories without releases; that
// counts as zero, matching the repository simply having none.
func (c *Client) releaseCount(ctx context.Context, cand types.CandidateRef) (int, error) {
	var releases []releasePayload
	path := fmt.Sprintf("/repos/%s/%s/releases", cand.Owner, cand.Name)
	params := url.Values{"per_page": {"100"}}
	if err := c.getJSON(ctx, path, params, &releases); err != nil {
		var pe *providerError
		if errors.As(err, &pe) && pe.Kind == types.ErrorNotFound {
			return 0, nil
		}
		return 0, err
	}

	cutoff := c.now().Add(-c.releaseWindow)
	count := 0
	for _, r := range releases {
		if !r.Draft && !r.PublishedAt.IsZero() && r.PublishedAt.After(cutoff) {
			count++
		}
	}
	return count, nil
}
