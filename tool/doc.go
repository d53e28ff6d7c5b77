// Package tool provides the web search and page fetching tools used by the
// research agents.
//
// # Search
//
// Searchers return structured results:
//
//	search, err := tool.NewTavilySearch(os.Getenv("TAVILY_API_KEY"),
//		tool.WithTavilyMaxResults(3),
//	)
//	results, err := search.Search(ctx, "latest developments in quantum computing")
//	for _, r := range results {
//		fmt.Println(r.Title, r.URL)
//	}
//
// TavilySearch and BraveSearch also implement langchaingo's tools.Tool, so
// the same value can be handed to a tool-calling model; Call returns the
// results formatted as text.
//
// # Page fetching
//
// PageFetcher downloads a page and extracts its visible text with goquery.
// The stateful agent uses it to fill in results whose snippet is empty.
package tool
