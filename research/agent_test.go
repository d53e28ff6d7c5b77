package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aishitdharwal/ai-agent/graph"
	"github.com/aishitdharwal/ai-agent/log"
	"github.com/aishitdharwal/ai-agent/tool"
)

func newTestAgent(t *testing.T, model *scriptedModel, searcher *fakeSearcher, opts ...Option) *Agent {
	t.Helper()
	opts = append([]Option{WithLogger(log.NoOpLogger{})}, opts...)
	a, err := New(model, searcher, opts...)
	require.NoError(t, err)
	return a
}

func TestAgent_Research(t *testing.T) {
	model := newScriptedModel(
		"```json\n[\"quantum error correction\", \"quantum hardware 2024\"]\n```",
		`["Logical qubits are improving", "Hardware is scaling"]`,
		"Quantum computing is moving fast.",
	)
	searcher := &fakeSearcher{results: map[string][]tool.SearchResult{
		"quantum error correction": {{Title: "A", URL: "https://a", Content: "surface codes"}},
		"quantum hardware 2024": {
			{Title: "B", URL: "https://b", Content: "1000 qubits"},
			{Title: "C", URL: "https://c"},
		},
	}}
	a := newTestAgent(t, model, searcher, WithPageFetcher(fakeFetcher{"https://c": "fetched page"}))

	res, err := a.Research(context.Background(), "quantum computing")
	require.NoError(t, err)

	assert.Equal(t, "quantum computing", res.Topic)
	assert.Equal(t, []string{"quantum error correction", "quantum hardware 2024"}, res.SearchQueries)
	assert.Equal(t, 3, res.NumResults)
	assert.Equal(t, []string{"Logical qubits are improving", "Hardware is scaling"}, res.KeyFindings)
	assert.Equal(t, "Quantum computing is moving fast.", res.Summary)
	assert.Equal(t, MethodStateful, res.Method)

	require.Equal(t, 3, model.callCount())
	assert.Equal(t, "Topic: quantum computing", model.humanText(0))
	assert.Equal(t,
		"Topic: quantum computing\n\nSearch Results:\nSource 1: surface codes\n\nSource 2: 1000 qubits\n\nSource 3: fetched page",
		model.humanText(1))
	assert.Equal(t,
		"Topic: quantum computing\n\nKey Findings:\n1. Logical qubits are improving\n2. Hardware is scaling",
		model.humanText(2))

	for _, o := range model.opts {
		assert.Equal(t, 0.0, o.Temperature)
	}
	assert.ElementsMatch(t, []string{"quantum error correction", "quantum hardware 2024"}, searcher.queries)
}

func TestAgent_QueryFallback(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "1. first query\n2. second query"},
		{"not a list", `{"queries": ["a"]}`},
		{"empty list", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := newScriptedModel(tt.reply, `["f"]`, "s")
			searcher := &fakeSearcher{results: map[string][]tool.SearchResult{
				"solar power": {{Content: "cheap panels"}},
			}}
			a := newTestAgent(t, model, searcher)

			state, err := a.Run(context.Background(), "solar power")
			require.NoError(t, err)
			assert.Equal(t, []string{"solar power"}, state.SearchQueries)
			assert.Len(t, state.SearchResults, 1)
		})
	}
}

func TestAgent_SearchFailuresAreSkipped(t *testing.T) {
	model := newScriptedModel(`["bad", "good"]`, `["f"]`, "s")
	searcher := &fakeSearcher{
		results: map[string][]tool.SearchResult{"good": {{Content: "ok"}}},
		errs:    map[string]error{"bad": errors.New("rate limited")},
	}
	a := newTestAgent(t, model, searcher)

	state, err := a.Run(context.Background(), "topic")
	require.NoError(t, err)
	assert.Equal(t, []tool.SearchResult{{Content: "ok"}}, state.SearchResults)
	assert.Equal(t, StepGenerateSummary, state.CurrentStep)
}

func TestAgent_NoResultsSkipsExtraction(t *testing.T) {
	model := newScriptedModel(`["q"]`, "Nothing to report.")
	searcher := &fakeSearcher{}
	a := newTestAgent(t, model, searcher)

	state, err := a.Run(context.Background(), "obscure")
	require.NoError(t, err)
	assert.Equal(t, []string{"No search results found"}, state.KeyFindings)
	assert.Equal(t, 2, model.callCount())
	assert.Contains(t, model.humanText(1), "1. No search results found")
}

func TestAgent_FindingsFallback(t *testing.T) {
	long := strings.Repeat("x", 600)

	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"object", `{"finding": "one"}`, []string{`{"finding":"one"}`}},
		{"string", `"just one"`, []string{"just one"}},
		{"prose", "The results show growth.", []string{"Analysis: The results show growth."}},
		{"long prose", long, []string{"Analysis: " + long[:500]}},
		{"empty", "", []string{"Unable to extract findings from search results"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := newScriptedModel(`["q"]`, tt.reply, "s")
			searcher := &fakeSearcher{results: map[string][]tool.SearchResult{"q": {{}}}}
			a := newTestAgent(t, model, searcher)

			state, err := a.Run(context.Background(), "t")
			require.NoError(t, err)
			assert.Equal(t, tt.want, state.KeyFindings)
			assert.Contains(t, model.humanText(1), "Source 1: No content")
		})
	}
}

func TestAgent_ModelErrorIsFatal(t *testing.T) {
	model := &scriptedModel{replies: []reply{
		{content: `["q"]`},
		{err: errors.New("openai: 503")},
	}}
	searcher := &fakeSearcher{results: map[string][]tool.SearchResult{"q": {{Content: "c"}}}}
	a := newTestAgent(t, model, searcher)

	state, err := a.Run(context.Background(), "t")
	require.Error(t, err)

	var nodeErr *graph.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, StepExtractFindings, nodeErr.Node)
	assert.Contains(t, err.Error(), "openai: 503")

	assert.Equal(t, StepSearchWeb, state.CurrentStep)
	assert.Len(t, state.SearchResults, 1)
	assert.Equal(t, err.Error(), state.Error)

	_, err = a.Research(context.Background(), "t")
	assert.Error(t, err)
}

func TestAgent_RetryPolicy(t *testing.T) {
	model := &scriptedModel{replies: []reply{
		{err: errors.New("timeout")},
		{content: `["q"]`},
		{content: `["f"]`},
		{content: "s"},
	}}
	searcher := &fakeSearcher{results: map[string][]tool.SearchResult{"q": {{Content: "c"}}}}
	a := newTestAgent(t, model, searcher, WithRetryPolicy(&graph.RetryPolicy{MaxRetries: 1, BaseDelay: 1}))

	res, err := a.Research(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "s", res.Summary)
	assert.Equal(t, 4, model.callCount())
}

func TestAgent_EmptyTopic(t *testing.T) {
	model := newScriptedModel()
	a := newTestAgent(t, model, &fakeSearcher{})

	_, err := a.Research(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTopic)
	assert.Zero(t, model.callCount())
}

func TestAgent_ListenersSeeEveryStep(t *testing.T) {
	model := newScriptedModel(`["q"]`, `["f"]`, "s")
	searcher := &fakeSearcher{results: map[string][]tool.SearchResult{"q": {{Content: "c"}}}}
	a := newTestAgent(t, model, searcher)

	history := &graph.HistoryListener[State]{}
	_, err := a.Run(context.Background(), "t", history)
	require.NoError(t, err)

	assert.Equal(t, []string{
		StepGenerateQueries, StepSearchWeb, StepExtractFindings, StepGenerateSummary,
	}, history.Completed())

	for _, step := range history.Steps {
		if step.Event == graph.NodeEventComplete {
			assert.Equal(t, step.NodeName, step.State.CurrentStep)
		}
	}
}

func TestAgent_Tracer(t *testing.T) {
	model := newScriptedModel(`["q"]`, `["f"]`, "s")
	searcher := &fakeSearcher{results: map[string][]tool.SearchResult{"q": {{Content: "c"}}}}
	tracer := graph.NewTracer()
	a := newTestAgent(t, model, searcher, WithTracer(tracer))

	_, err := a.Run(context.Background(), "t")
	require.NoError(t, err)

	var ended []string
	for _, span := range tracer.Spans() {
		if span.Event == graph.TraceEventNodeEnd {
			ended = append(ended, span.NodeName)
		}
	}
	assert.Equal(t, []string{
		StepGenerateQueries, StepSearchWeb, StepExtractFindings, StepGenerateSummary,
	}, ended)
}

func TestAgent_Graph(t *testing.T) {
	a := newTestAgent(t, newScriptedModel(), &fakeSearcher{})
	out := graph.NewExporter(a.Graph()).DrawASCII()
	assert.Equal(t,
		"START\n  │\n  ▼\ngenerate_queries\n  │\n  ▼\nsearch_web\n  │\n  ▼\nextract_findings\n  │\n  ▼\ngenerate_summary\n  │\n  ▼\nEND\n",
		out)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, &fakeSearcher{})
	assert.Error(t, err)
	_, err = New(newScriptedModel(), nil)
	assert.Error(t, err)
}
