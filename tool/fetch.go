package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageFetcher downloads a page and extracts its readable text.
type PageFetcher struct {
	Client    *http.Client
	UserAgent string
	// MaxChars truncates the extracted text. Zero means 5000.
	MaxChars int
	// MaxBytes limits how much of the response body is read. Zero means 1MB.
	MaxBytes int64
}

// NewPageFetcher creates a PageFetcher with default limits.
func NewPageFetcher() *PageFetcher {
	return &PageFetcher{
		Client:    defaultHTTPClient(),
		UserAgent: "Mozilla/5.0 (compatible; research-agent/1.0)",
	}
}

// Fetch returns the visible text of the page at rawURL.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	maxBytes := f.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}

	return f.truncate(ExtractText(doc)), nil
}

// ExtractText returns the whitespace-normalized text of the document body,
// without script, style and noscript content.
func ExtractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return strings.Join(strings.Fields(root.Text()), " ")
}

func (f *PageFetcher) truncate(s string) string {
	limit := f.MaxChars
	if limit <= 0 {
		limit = 5000
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
