// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent talks to the external LLM completion service. The
// pipeline treats both operations as black-box text-in/text-out calls:
// free text in, a Query out; a ranked list in, a natural-language
// explanation out.
// Implements: prd006-agent (R1-R3).
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/repo-scout/pkg/types"
)

// DefaultEndpoint is the OpenAI chat-completions URL used when the
// configuration leaves the endpoint empty.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	http        *http.Client
}

// New builds an agent client from configuration.
func New(cfg types.AIConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.1
	}
	return &Client{
		endpoint:    endpoint,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: temperature,
		http:        &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether the client has what it needs to make calls.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.model != ""
}

// parsedQuery is the JSON shape the parse prompt asks the model for.
type parsedQuery struct {
	SearchTerms []string `json:"search_terms"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
}

// ParseQuery extracts structured search parameters from a free-text
// requirement. When the model returns unparsable JSON the raw query is
// used as a single search term rather than failing the run (R1.3).
func (c *Client) ParseQuery(ctx context.Context, userQuery string) (types.Query, error) {
	content, err := c.complete(ctx, parseSystemPrompt, "User query: "+userQuery)
	if err != nil {
		return types.Query{}, fmt.Errorf("parsing query: %w", err)
	}

	var parsed parsedQuery
	if err := json.Unmarshal([]byte(stripFences(content)), &parsed); err != nil || len(parsed.SearchTerms) == 0 {
		// Fallback: use the query as-is.
		return types.Query{Terms: []string{userQuery}}, nil
	}

	return types.Query{
		Terms:    parsed.SearchTerms,
		Language: strings.ToLower(strings.TrimSpace(parsed.Language)),
		Topics:   parsed.Topics,
	}, nil
}

// Explain produces a conversational comparison of the top candidates
// (R3.1). The pipeline's output contract to the generator is exactly the
// scored-candidate shape, nothing richer.
func (c *Client) Explain(ctx context.Context, userQuery string, top []types.ScoredCandidate) (string, error) {
	if len(top) == 0 {
		return "I couldn't find any repositories matching your criteria. Try refining your search terms.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User was looking for: %s\n\nTop repositories found:\n", userQuery)
	for i, sc := range top {
		fmt.Fprintf(&b, "\nRepository #%d: %s\n", i+1, sc.Candidate.FullName())
		fmt.Fprintf(&b, "- Composite score: %.0f\n", sc.Score)
		fmt.Fprintf(&b, "- Stars: %s\n", formatMetric(sc.Metrics.Stars))
		fmt.Fprintf(&b, "- Contributors: %s\n", formatMetric(sc.Metrics.Contributors))
		fmt.Fprintf(&b, "- Days since last push: %s\n", formatFloatMetric(sc.Metrics.LastPushAgeDays))
		fmt.Fprintf(&b, "- Median PR merge hours: %s\n", formatFloatMetric(sc.Metrics.MedianPRMergeHours))
	}
	b.WriteString("\nPlease provide a conversational explanation of these recommendations.")

	return c.complete(ctx, explainSystemPrompt, b.String())
}

// formatMetric renders an integer metric, keeping "unknown" distinct
// from a measured zero.
func formatMetric(m types.Metric[int]) string {
	if !m.Known {
		return "unknown"
	}
	return fmt.Sprintf("%d", m.Value)
}

func formatFloatMetric(m types.Metric[float64]) string {
	if !m.Known {
		return "unknown"
	}
	return fmt.Sprintf("%.1f", m.Value)
}

// stripFences removes a Markdown code fence the model may wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// Chat completions JSON structures.
type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete posts one system+user exchange and returns the first choice.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("agent client misconfigured: model and api key are required")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("completion API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("parsing completion response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	return cr.Choices[0].Message.Content, nil
}
