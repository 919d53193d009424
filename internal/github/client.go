// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package github is the sole component that talks to the code-hosting
// provider. It implements repository search and per-candidate metric
// fetches over the GitHub REST API, normalizing provider responses and
// provider failures into the pipeline's types.
// Implements: prd001-search (R2); prd002-metrics (R1-R4);
//
//	docs/ARCHITECTURE § Provider Client.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/repo-scout/internal/httputil"
	"github.com/pdiddy/repo-scout/pkg/types"
)

// APIBase is the GitHub REST API root. Declared as a var so tests can
// substitute an httptest server.
var APIBase = "https://api.github.com"

const apiVersion = "2022-11-28"

// errRateLimited marks a request that failed because the quota stayed
// exhausted after one wait-and-retry cycle.
var errRateLimited = errors.New("rate limit exhausted")

// Client issues authenticated requests against the provider API. Each
// pipeline run owns one Client and with it one rate-limit view; the
// limiter is the only shared mutable state and is safe for concurrent use.
type Client struct {
	http          *http.Client
	token         string
	userAgent     string
	maxRetries    int
	releaseWindow time.Duration
	limiter       *limiter

	// now is a test seam for age computations.
	now func() time.Time
}

// NewClient builds a provider client. An empty token means
// unauthenticated requests, which get a much smaller quota.
func NewClient(token string, cfg types.MetricsConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	window := cfg.ReleaseWindow
	if window <= 0 {
		window = 90 * 24 * time.Hour
	}
	return &Client{
		http:          &http.Client{Timeout: timeout},
		token:         token,
		userAgent:     cfg.UserAgent,
		maxRetries:    cfg.MaxRetries,
		releaseWindow: window,
		limiter:       newLimiter(),
		now:           time.Now,
	}
}

// get performs one provider GET with auth headers, quota accounting, and
// transient retry. On a rate-limited response it waits cooperatively for
// the quota reset and retries once; a second rate-limited response fails
// with errRateLimited (R4.2).
func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := APIBase + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.acquire(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", apiVersion)
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
		if err != nil {
			return nil, err
		}

		// Refresh the quota view from response headers after every call.
		c.limiter.observe(resp.Header)

		if !isRateLimited(resp) {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if attempt >= 1 {
			return nil, errRateLimited
		}
		if err := c.limiter.waitReset(ctx); err != nil {
			return nil, err
		}
	}
}

// isRateLimited reports whether the provider rejected the call for quota
// reasons: 429, or GitHub's 403 with a zeroed remaining header.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// classify maps a provider failure to the pipeline error taxonomy.
func classify(status int, err error) types.ErrorKind {
	if err != nil {
		if errors.Is(err, errRateLimited) {
			return types.ErrorRateLimited
		}
		return types.ErrorTransient
	}
	switch {
	case status == http.StatusNotFound:
		return types.ErrorNotFound
	case status == http.StatusTooManyRequests:
		return types.ErrorRateLimited
	case status >= 500:
		return types.ErrorTransient
	default:
		return types.ErrorMalformed
	}
}
