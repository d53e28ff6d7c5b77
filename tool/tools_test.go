package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req["api_key"])
		assert.Equal(t, "quantum computing", req["query"])
		assert.Equal(t, float64(3), req["max_results"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "quantum computing",
			"results": [
				{"title": "QC 101", "url": "https://example.com/a", "content": "Qubits are neat.", "score": 0.91},
				{"title": "Error correction", "url": "https://example.com/b", "content": "Surface codes."}
			]
		}`))
	}))
	defer server.Close()

	search, err := NewTavilySearch("test-key", WithTavilyBaseURL(server.URL))
	require.NoError(t, err)

	results, err := search.Search(context.Background(), "quantum computing")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "QC 101", results[0].Title)
	assert.Equal(t, "Qubits are neat.", results[0].Content)
	assert.InDelta(t, 0.91, results[0].Score, 1e-9)

	out, err := search.Call(context.Background(), "quantum computing")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 results for query: quantum computing")
	assert.Contains(t, out, "URL: https://example.com/b")
	assert.Contains(t, out, "Relevance Score: 0.91")
}

func TestTavilySearch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	search, err := NewTavilySearch("bad", WithTavilyBaseURL(server.URL), WithTavilyMaxResults(5))
	require.NoError(t, err)
	assert.Equal(t, 5, search.MaxResults)

	_, err = search.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestNewTavilySearch_RequiresKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	_, err := NewTavilySearch("")
	assert.EqualError(t, err, "TAVILY_API_KEY not set")

	t.Setenv("TAVILY_API_KEY", "from-env")
	s, err := NewTavilySearch("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.APIKey)
	assert.Equal(t, "tavily_search", s.Name())
}

func TestBraveSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "brave-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "20", r.URL.Query().Get("count"))

		_, _ = w.Write([]byte(`{"web": {"results": [
			{"title": "The Go Programming Language", "url": "https://go.dev", "description": "Build simple, secure, scalable systems."}
		]}}`))
	}))
	defer server.Close()

	search, err := NewBraveSearch("brave-key", WithBraveBaseURL(server.URL), WithBraveCount(50))
	require.NoError(t, err)

	results, err := search.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://go.dev", results[0].URL)
	assert.Equal(t, "Build simple, secure, scalable systems.", results[0].Content)
}

func TestBraveSearch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	search, err := NewBraveSearch("k", WithBraveBaseURL(server.URL))
	require.NoError(t, err)

	_, err = search.Call(context.Background(), "q")
	assert.EqualError(t, err, "brave api returned status: 429")
}

func TestFormatResults_Empty(t *testing.T) {
	assert.Equal(t, "No results found", FormatResults("q", nil))
}

func TestPageFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>T</title><style>.x{}</style></head>
<body><script>var hidden = 1;</script><h1>Quantum   news</h1>
<p>Logical qubits
reached a milestone.</p><noscript>enable js</noscript></body></html>`))
	}))
	defer server.Close()

	f := NewPageFetcher()
	text, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Quantum news Logical qubits reached a milestone.", text)

	f.MaxChars = 7
	text, err = f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Quantum", text)
}

func TestPageFetcher_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewPageFetcher().Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestExtractText_NoBody(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("plain <b>text</b>"))
	require.NoError(t, err)
	assert.Equal(t, "plain text", ExtractText(doc))
}
