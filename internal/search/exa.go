package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
	"unicode/utf8"
)

const (
	exaEndpoint     = "https://api.exa.ai/search"
	maxResults      = 5
	snippetMaxChars = 300
)

// ExaProvider searches through the Exa API.
type ExaProvider struct {
	apiKey   string
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// NewExaProvider creates an ExaProvider with the given API key.
func NewExaProvider(apiKey string, logger *slog.Logger) *ExaProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExaProvider{
		apiKey:   apiKey,
		endpoint: exaEndpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

type exaRequest struct {
	Query      string          `json:"query"`
	Type       string          `json:"type"`
	NumResults int             `json:"numResults"`
	Contents   map[string]bool `json:"contents"`
}

type exaResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
	} `json:"results"`
}

// Search queries Exa. Upstream failures are logged and yield an empty
// result set so callers keep working without search.
func (p *ExaProvider) Search(ctx context.Context, query string) ([]Result, error) {
	body, err := json.Marshal(exaRequest{
		Query:      query,
		Type:       "auto",
		NumResults: maxResults,
		Contents:   map[string]bool{"text": true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		p.logger.Warn("search request failed", "query", query, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		p.logger.Warn("search returned non-200", "query", query,
			"status", resp.StatusCode, "body", string(respBody))
		return nil, nil
	}

	var parsed exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		p.logger.Warn("search response decode failed", "query", query, "error", err)
		return nil, nil
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		snippet := truncateSnippet(r.Text)
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: snippet})
	}
	return results, nil
}

// truncateSnippet caps a snippet at snippetMaxChars bytes without
// splitting a multi-byte rune.
func truncateSnippet(s string) string {
	if len(s) <= snippetMaxChars {
		return s
	}
	cut := snippetMaxChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// NewProvider picks a provider based on configuration. With an API key
// it searches through Exa, otherwise search is disabled.
func NewProvider(logger *slog.Logger) Provider {
	if key := os.Getenv("INKWELL_SEARCH_API_KEY"); key != "" {
		if logger != nil {
			logger.Info("using exa search provider")
		}
		return NewExaProvider(key, logger)
	}
	if logger != nil {
		logger.Info("search disabled, no INKWELL_SEARCH_API_KEY")
	}
	return Disabled{}
}
