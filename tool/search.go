package tool

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// Searcher runs a web search for a single query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// FormatResults renders results the way they are handed to a model as tool output.
func FormatResults(query string, results []SearchResult) string {
	if len(results) == 0 {
		return "No results found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d results for query: %s\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&sb, "Result %d:\nTitle: %s\nURL: %s\nContent: %s\n", i+1, r.Title, r.URL, r.Content)
		if r.Score > 0 {
			fmt.Fprintf(&sb, "Relevance Score: %.2f\n", r.Score)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
