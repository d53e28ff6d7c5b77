package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/tmc/langchaingo/tools"
)

var (
	_ Searcher   = (*TavilySearch)(nil)
	_ tools.Tool = (*TavilySearch)(nil)
)

// TavilySearch searches the web through the Tavily API.
type TavilySearch struct {
	APIKey      string
	BaseURL     string
	MaxResults  int
	SearchDepth string
	Client      *http.Client
}

type TavilyOption func(*TavilySearch)

// WithTavilyBaseURL sets the endpoint, mostly useful for tests.
func WithTavilyBaseURL(baseURL string) TavilyOption {
	return func(t *TavilySearch) {
		t.BaseURL = baseURL
	}
}

// WithTavilyMaxResults sets the number of results per query.
func WithTavilyMaxResults(n int) TavilyOption {
	return func(t *TavilySearch) {
		if n > 0 {
			t.MaxResults = n
		}
	}
}

// WithTavilySearchDepth sets "basic" or "advanced" search depth.
func WithTavilySearchDepth(depth string) TavilyOption {
	return func(t *TavilySearch) {
		t.SearchDepth = depth
	}
}

// WithTavilyHTTPClient overrides the HTTP client.
func WithTavilyHTTPClient(c *http.Client) TavilyOption {
	return func(t *TavilySearch) {
		t.Client = c
	}
}

// NewTavilySearch creates a new TavilySearch tool.
// If apiKey is empty, it tries to read from TAVILY_API_KEY environment variable.
func NewTavilySearch(apiKey string, opts ...TavilyOption) (*TavilySearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY not set")
	}

	t := &TavilySearch{
		APIKey:      apiKey,
		BaseURL:     "https://api.tavily.com/search",
		MaxResults:  3,
		SearchDepth: "basic",
		Client:      defaultHTTPClient(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// Search implements Searcher.
func (t *TavilySearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:      t.APIKey,
		Query:       query,
		MaxResults:  t.MaxResults,
		SearchDepth: t.SearchDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tavily api error (status %d): %s", resp.StatusCode, string(msg))
	}

	var result tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Results, nil
}

// Name returns the name of the tool.
func (t *TavilySearch) Name() string {
	return "tavily_search"
}

// Description returns the description of the tool.
func (t *TavilySearch) Description() string {
	return "Search the web using Tavily. Input should be a search query string. " +
		"Returns relevant results with URLs, titles and content snippets."
}

// Call executes the search and formats the results as text.
func (t *TavilySearch) Call(ctx context.Context, input string) (string, error) {
	results, err := t.Search(ctx, input)
	if err != nil {
		return "", err
	}
	return FormatResults(input, results), nil
}
