// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestLimiterUnseededNeverBlocks(t *testing.T) {
	l := newLimiter()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 10; i++ {
		if err := l.acquire(ctx); err != nil {
			t.Fatalf("acquire: %v", err)
		}
	}
}

func TestLimiterObserveAndDecrement(t *testing.T) {
	l := newLimiter()
	h := http.Header{}
	h.Set("X-RateLimit-Remaining", "2")
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
	l.observe(h)

	ctx := context.Background()
	if err := l.acquire(ctx); err != nil {
		t.Fatalf("acquire 1: %v", err)
	}
	if err := l.acquire(ctx); err != nil {
		t.Fatalf("acquire 2: %v", err)
	}
	if l.remaining != 0 {
		t.Errorf("remaining = %d, want 0", l.remaining)
	}
}

func TestLimiterBlocksUntilReset(t *testing.T) {
	l := newLimiter()
	h := http.Header{}
	h.Set("X-RateLimit-Remaining", "0")
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(50*time.Millisecond).Unix(), 10))
	l.observe(h)

	start := time.Now()
	if err := l.acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	// Unix-second granularity means the wait may round down to zero; the
	// call must return rather than hang.
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("acquire blocked %v, want under the reset horizon", elapsed)
	}
}

func TestLimiterAcquireHonorsCancellation(t *testing.T) {
	l := newLimiter()
	h := http.Header{}
	h.Set("X-RateLimit-Remaining", "0")
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
	l.observe(h)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.acquire(ctx)
	if err == nil {
		t.Fatal("expected context error while waiting for reset")
	}
}

func TestLimiterObserveIgnoresMissingHeaders(t *testing.T) {
	l := newLimiter()
	l.observe(http.Header{})
	if l.seeded {
		t.Error("limiter should stay unseeded without X-RateLimit headers")
	}
}

// --- client-level rate limit handling ---

func TestGetWaitsOnceThenFails(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Unix(), 10))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()
	withAPIBase(t, ts)

	c := testClient()
	_, err := c.get(context.Background(), "/repos/acme/widget", nil)
	if err != errRateLimited {
		t.Fatalf("err = %v, want errRateLimited", err)
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2 (original plus one post-reset retry)", calls)
	}
}

func TestGetRecoversAfterReset(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Unix(), 10))
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("X-RateLimit-Remaining", "4999")
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()
	withAPIBase(t, ts)

	c := testClient()
	resp, err := c.get(context.Background(), "/repos/acme/widget", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if calls != 2 {
		t.Errorf("server calls = %d, want 2", calls)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		remaining string
		want      bool
	}{
		{"429", http.StatusTooManyRequests, "", true},
		{"403 with zeroed quota", http.StatusForbidden, "0", true},
		{"403 permission denied", http.StatusForbidden, "55", false},
		{"200", http.StatusOK, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			if tt.remaining != "" {
				resp.Header.Set("X-RateLimit-Remaining", tt.remaining)
			}
			if got := isRateLimited(resp); got != tt.want {
				t.Errorf("isRateLimited() = %v, want %v", got, tt.want)
			}
		})
	}
}
