// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/repo-scout/pkg/types"
)

// searchPageCap bounds pagination; the provider refuses to page past
// 1000 search results anyway.
const searchPageCap = 10

// ErrQueryRejected marks a search the provider refused as invalid (a
// 4xx answer). The provider is reachable; the query itself is the
// problem, so it is not a SearchUnavailable condition.
var ErrQueryRejected = errors.New("provider rejected the search query")

// SearchRepositories issues the provider search and collects candidates
// until cfg.MaxCandidates distinct IDs are found or the provider is
// exhausted. Candidates are deduplicated by ID preserving first-seen
// order, which is the provider's relevance order (R2.1-R2.4).
//
// Zero matches is a normal outcome: an empty slice and a nil error. An
// error is returned only when the provider itself is unreachable after
// retry, or rejects the query (ErrQueryRejected).
func (c *Client) SearchRepositories(ctx context.Context, query types.Query, cfg types.SearchConfig) ([]types.CandidateRef, error) {
	q := buildSearchQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty search query")
	}
	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 20
	}

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 30
	}
	if maxCandidates < perPage {
		perPage = maxCandidates
	}

	seen := make(map[string]bool)
	var candidates []types.CandidateRef

	for page := 1; page <= searchPageCap; page++ {
		params := url.Values{
			"q":        {q},
			"sort":     {"stars"},
			"order":    {"desc"},
			"per_page": {strconv.Itoa(perPage)},
			"page":     {strconv.Itoa(page)},
		}

		resp, err := c.get(ctx, "/search/repositories", params)
		if err != nil {
			return nil, fmt.Errorf("repository search: %w", err)
		}

		if resp.StatusCode != 200 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			// Rate-limit rejections never reach here; get() handles them.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, fmt.Errorf("%w: HTTP %d", ErrQueryRejected, resp.StatusCode)
			}
			return nil, fmt.Errorf("repository search returned HTTP %d", resp.StatusCode)
		}

		var sr searchResponse
		err = json.NewDecoder(resp.Body).Decode(&sr)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing search response: %w", err)
		}

		for _, item := range sr.Items {
			id := strconv.FormatInt(item.ID, 10)
			if seen[id] {
				continue
			}
			seen[id] = true
			candidates = append(candidates, types.CandidateRef{
				Owner: item.Owner.Login,
				Name:  item.Name,
				ID:    id,
			})
			if len(candidates) >= maxCandidates {
				return candidates, nil
			}
		}

		// Short page means the provider has no more results.
		if len(sr.Items) < perPage {
			break
		}
	}

	return candidates, nil
}

// buildSearchQuery renders a Query as a provider query string, e.g.
// "web framework language:go topic:rest".
func buildSearchQuery(q types.Query) string {
	var parts []string
	if terms := strings.TrimSpace(strings.Join(q.Terms, " ")); terms != "" {
		parts = append(parts, terms)
	}
	if q.Language != "" {
		parts = append(parts, "language:"+q.Language)
	}
	for _, topic := range q.Topics {
		if topic != "" {
			parts = append(parts, "topic:"+topic)
		}
	}
	return strings.Join(parts, " ")
}

// Provider search JSON structures.
type searchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []searchItem `json:"items"`
}

type searchItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}
