// Package research implements the two research agents.
//
// Agent is the stateful workflow. It runs four nodes on a typed graph:
//
//	generate_queries -> search_web -> extract_findings -> generate_summary
//
// Every node reads and writes a single State, so a run can be observed (and
// persisted) after each step:
//
//	model, _ := research.NewModel(research.ModelConfig{APIKey: key})
//	search, _ := tool.NewTavilySearch(tavilyKey)
//	agent, _ := research.New(model, search)
//	result, err := agent.Research(ctx, "Latest developments in quantum computing")
//
// NaiveAgent is the baseline. It hands the whole task to the model with the
// search tool attached and keeps nothing but the message history.
package research
