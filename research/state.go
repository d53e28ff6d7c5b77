package research

import "github.com/aishitdharwal/ai-agent/tool"

// Node names, in execution order.
const (
	StepInit            = "init"
	StepGenerateQueries = "generate_queries"
	StepSearchWeb       = "search_web"
	StepExtractFindings = "extract_findings"
	StepGenerateSummary = "generate_summary"
)

const (
	MethodStateful = "stateful_langgraph"
	MethodNaive    = "naive_stateless"
)

// State is the record carried through the research workflow.
type State struct {
	Topic         string              `json:"topic"`
	SearchQueries []string            `json:"search_queries"`
	SearchResults []tool.SearchResult `json:"search_results"`
	KeyFindings   []string            `json:"key_findings"`
	Summary       string              `json:"summary"`
	CurrentStep   string              `json:"current_step"`
	Error         string              `json:"error"`
}

// NewState returns the initial state for topic.
func NewState(topic string) State {
	return State{
		Topic:         topic,
		SearchQueries: []string{},
		SearchResults: []tool.SearchResult{},
		KeyFindings:   []string{},
		CurrentStep:   StepInit,
	}
}

// Result is the API-facing view of a finished run.
type Result struct {
	Topic         string   `json:"topic"`
	SearchQueries []string `json:"search_queries"`
	NumResults    int      `json:"num_results"`
	KeyFindings   []string `json:"key_findings"`
	Summary       string   `json:"summary"`
	Method        string   `json:"method,omitempty"`
}

// Result converts the state into its API view.
func (s State) Result() *Result {
	return &Result{
		Topic:         s.Topic,
		SearchQueries: s.SearchQueries,
		NumResults:    len(s.SearchResults),
		KeyFindings:   s.KeyFindings,
		Summary:       s.Summary,
		Method:        MethodStateful,
	}
}

// NaiveResult is what the naive agent returns.
type NaiveResult struct {
	Topic  string `json:"topic"`
	Output string `json:"output"`
	Method string `json:"method"`
}
