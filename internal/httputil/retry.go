// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across pipeline components.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient failures. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

const defaultMaxRetries = 2

// IsTransient reports whether an HTTP status code counts as a transient
// failure worth retrying.
func IsTransient(status int) bool {
	return status >= 500
}

// DoWithRetry executes an HTTP request and retries transient failures:
// network errors and 5xx responses. The delay starts at RetryBaseDelay
// (1 s) and doubles each attempt: 1 s, 2 s.
//
// When maxRetries is 0 the default (2) is used. On each transient response
// the body is closed before sleeping. If the context is cancelled during a
// backoff wait the function returns ctx.Err(). After exhausting retries the
// last response or error is returned so the caller can classify it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !IsTransient(resp.StatusCode) {
			return resp, nil
		}

		// Exhausted retries — hand back whatever we last saw.
		if attempt >= maxRetries {
			return resp, err
		}

		// Drain and close the body before retrying.
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
