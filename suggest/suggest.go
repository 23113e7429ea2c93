// Package suggest implements the optional, best-effort fix-suggestion stage.
// It runs strictly after the run's exit signal is computed; nothing here may
// influence that signal, so every failure is logged and swallowed.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sourcegraph/conc/pool"

	"github.com/e2e-infra/run-reporter/reporting"
	"github.com/e2e-infra/run-reporter/types"
)

const (
	defaultMaxConcurrent = 4
	requestTimeout       = 30 * time.Second
)

// Suggestion is one fix proposal returned by the suggestion service.
type Suggestion struct {
	TestID     string                `json:"testId"`
	Category   types.FailureCategory `json:"category"`
	Suggestion string                `json:"suggestion"`
}

// Client posts failures to an HTTP suggestion service and collects proposals.
type Client struct {
	log           log.Logger
	http          *retryablehttp.Client
	endpoint      string
	maxConcurrent int
}

// NewClient creates a suggestion client for the given endpoint.
func NewClient(logger log.Logger, endpoint string) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 2
	httpClient.RetryWaitMin = 500 * time.Millisecond
	httpClient.HTTPClient.Timeout = requestTimeout
	httpClient.Logger = nil

	return &Client{
		log:           logger,
		http:          httpClient,
		endpoint:      endpoint,
		maxConcurrent: defaultMaxConcurrent,
	}
}

// SuggestFixes requests a suggestion for every failure, with bounded
// concurrency, and returns whatever succeeded. Individual request failures
// are logged and dropped.
func (c *Client) SuggestFixes(ctx context.Context, failures []types.Failure) []Suggestion {
	p := pool.NewWithResults[*Suggestion]().WithMaxGoroutines(c.maxConcurrent)
	for _, failure := range failures {
		failure := failure
		p.Go(func() *Suggestion {
			suggestion, err := c.suggestOne(ctx, failure)
			if err != nil {
				c.log.Warn("Fix suggestion request failed",
					"testId", failure.TestID,
					"error", err)
				return nil
			}
			return suggestion
		})
	}

	results := p.Wait()
	suggestions := make([]Suggestion, 0, len(results))
	for _, result := range results {
		if result != nil {
			suggestions = append(suggestions, *result)
		}
	}
	c.log.Info("Fix suggestions collected",
		"requested", len(failures),
		"received", len(suggestions))
	return suggestions
}

func (c *Client) suggestOne(ctx context.Context, failure types.Failure) (*Suggestion, error) {
	body, err := json.Marshal(failure)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal failure: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggestion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestion service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Suggestion string `json:"suggestion"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode suggestion response: %w", err)
	}

	return &Suggestion{
		TestID:     failure.TestID,
		Category:   failure.Category,
		Suggestion: payload.Suggestion,
	}, nil
}

// WriteSuggestions persists collected suggestions next to the other run
// artifacts.
func (c *Client) WriteSuggestions(outputDir string, suggestions []Suggestion) error {
	data, err := json.MarshalIndent(suggestions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	path := filepath.Join(outputDir, reporting.FixesFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
