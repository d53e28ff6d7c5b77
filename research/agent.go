package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"golang.org/x/sync/errgroup"

	"github.com/aishitdharwal/ai-agent/graph"
	"github.com/aishitdharwal/ai-agent/log"
	"github.com/aishitdharwal/ai-agent/tool"
)

// ErrEmptyTopic is returned when research is requested without a topic.
var ErrEmptyTopic = errors.New("topic is required")

const (
	noResultsFinding   = "No search results found"
	noFindingsFinding  = "Unable to extract findings from search results"
	analysisPrefix     = "Analysis: "
	analysisMaxRunes   = 500
	defaultSearchLimit = 3
)

// PageFetcher downloads the readable text of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger. Defaults to the package logger.
func WithLogger(l log.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithPageFetcher enables back-filling search results that have no content.
func WithPageFetcher(f PageFetcher) Option {
	return func(a *Agent) { a.fetcher = f }
}

// WithTemperature overrides the sampling temperature (default 0).
func WithTemperature(t float64) Option {
	return func(a *Agent) { a.temperature = t }
}

// WithRetryPolicy retries failed nodes according to p.
func WithRetryPolicy(p *graph.RetryPolicy) Option {
	return func(a *Agent) { a.retry = p }
}

// WithSearchConcurrency bounds how many queries are searched at once.
func WithSearchConcurrency(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.searchLimit = n
		}
	}
}

// WithTracer records a span for every step of every run.
func WithTracer(t *graph.Tracer) Option {
	return func(a *Agent) {
		a.tracer = t
	}
}

// Agent is the stateful research agent: a fixed four-step workflow that
// plans queries, searches, extracts findings and writes a summary.
type Agent struct {
	model       llms.Model
	searcher    tool.Searcher
	fetcher     PageFetcher
	logger      log.Logger
	temperature float64
	retry       *graph.RetryPolicy
	searchLimit int
	tracer      *graph.Tracer

	runnable *graph.StateRunnable[State]
}

// New builds and compiles the research workflow.
func New(model llms.Model, searcher tool.Searcher, opts ...Option) (*Agent, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}

	a := &Agent{
		model:       model,
		searcher:    searcher,
		searchLimit: defaultSearchLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = log.OrDefault(a.logger)

	runnable, err := a.Graph().Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile research graph: %w", err)
	}
	if a.tracer != nil {
		runnable.SetTracer(a.tracer)
	}
	a.runnable = runnable
	return a, nil
}

// Workflow returns the stateful workflow's shape without a model or search
// tool. It is for rendering only; its nodes must not be run.
func Workflow() *graph.StateGraph[State] {
	return (&Agent{logger: log.NoOpLogger{}}).Graph()
}

// Graph returns the uncompiled workflow, for rendering.
func (a *Agent) Graph() *graph.StateGraph[State] {
	g := graph.NewStateGraph[State]()
	g.AddNode(StepGenerateQueries, "Plan 2-3 search queries for the topic", a.generateQueries)
	g.AddNode(StepSearchWeb, "Run every query through the search tool", a.searchWeb)
	g.AddNode(StepExtractFindings, "Extract key findings from the results", a.extractFindings)
	g.AddNode(StepGenerateSummary, "Write a summary of the findings", a.generateSummary)

	g.SetEntryPoint(StepGenerateQueries)
	g.AddEdge(StepGenerateQueries, StepSearchWeb)
	g.AddEdge(StepSearchWeb, StepExtractFindings)
	g.AddEdge(StepExtractFindings, StepGenerateSummary)
	g.AddEdge(StepGenerateSummary, graph.END)

	if a.retry != nil {
		g.SetRetryPolicy(a.retry)
	}
	return g
}

// Research runs the workflow for topic and returns its result.
func (a *Agent) Research(ctx context.Context, topic string) (*Result, error) {
	state, err := a.Run(ctx, topic)
	if err != nil {
		return nil, err
	}
	return state.Result(), nil
}

// Run executes the workflow and returns the final state. Listeners observe
// every node event, which lets callers persist progress. On failure the
// returned state is the last good one with Error set.
func (a *Agent) Run(ctx context.Context, topic string, listeners ...graph.NodeListener[State]) (State, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return State{}, ErrEmptyTopic
	}

	a.logger.Info("starting research on: %s", topic)

	state, err := a.runnable.WithListeners(listeners...).Invoke(ctx, NewState(topic))
	if err != nil {
		state.Error = err.Error()
		a.logger.Error("research failed: %v", err)
		return state, err
	}

	a.logger.Info("research complete: %d queries, %d results, %d findings",
		len(state.SearchQueries), len(state.SearchResults), len(state.KeyFindings))
	return state, nil
}

func (a *Agent) generate(ctx context.Context, system, human string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, human),
	}

	resp, err := a.model.GenerateContent(ctx, messages, llms.WithTemperature(a.temperature))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from model")
	}
	return resp.Choices[0].Content, nil
}

func (a *Agent) generateQueries(ctx context.Context, state State) (State, error) {
	a.logger.Debug("generating search queries")

	reply, err := a.generate(ctx, generateQueriesPrompt, "Topic: "+state.Topic)
	if err != nil {
		return state, fmt.Errorf("failed to generate queries: %w", err)
	}

	queries, _, err := parseStringList(reply)
	if err != nil || len(queries) == 0 {
		a.logger.Warn("could not parse queries, falling back to topic: %q", reply)
		queries = []string{state.Topic}
	}

	state.SearchQueries = queries
	state.CurrentStep = StepGenerateQueries
	a.logger.Info("generated %d queries", len(queries))
	return state, nil
}

func (a *Agent) searchWeb(ctx context.Context, state State) (State, error) {
	perQuery := make([][]tool.SearchResult, len(state.SearchQueries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.searchLimit)
	for i, query := range state.SearchQueries {
		g.Go(func() error {
			a.logger.Debug("searching: %s", query)
			results, err := a.searcher.Search(gctx, query)
			if err != nil {
				a.logger.Warn("search failed for %q: %v", query, err)
				return nil
			}
			a.backfill(gctx, results)
			perQuery[i] = results
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return state, err
	}

	results := append([]tool.SearchResult{}, state.SearchResults...)
	for _, rs := range perQuery {
		results = append(results, rs...)
	}

	state.SearchResults = results
	state.CurrentStep = StepSearchWeb
	a.logger.Info("found %d search results", len(results))
	return state, nil
}

func (a *Agent) backfill(ctx context.Context, results []tool.SearchResult) {
	if a.fetcher == nil {
		return
	}
	for i := range results {
		if results[i].Content != "" || results[i].URL == "" {
			continue
		}
		text, err := a.fetcher.Fetch(ctx, results[i].URL)
		if err != nil {
			a.logger.Debug("fetch %s: %v", results[i].URL, err)
			continue
		}
		results[i].Content = text
	}
}

func (a *Agent) extractFindings(ctx context.Context, state State) (State, error) {
	state.CurrentStep = StepExtractFindings

	if len(state.SearchResults) == 0 {
		state.KeyFindings = []string{noResultsFinding}
		return state, nil
	}

	sources := make([]string, 0, len(state.SearchResults))
	for i, r := range state.SearchResults {
		content := r.Content
		if content == "" {
			content = "No content"
		}
		sources = append(sources, fmt.Sprintf("Source %d: %s", i+1, content))
	}

	human := fmt.Sprintf("Topic: %s\n\nSearch Results:\n%s", state.Topic, strings.Join(sources, "\n\n"))
	reply, err := a.generate(ctx, extractFindingsPrompt, human)
	if err != nil {
		return state, fmt.Errorf("failed to extract findings: %w", err)
	}

	findings, value, err := parseStringList(reply)
	switch {
	case err == nil:
	case errors.Is(err, errNotList):
		findings = []string{stringify(value)}
	case strings.TrimSpace(reply) != "":
		a.logger.Warn("could not parse findings, keeping raw analysis")
		findings = []string{analysisPrefix + truncateRunes(reply, analysisMaxRunes)}
	default:
		findings = []string{noFindingsFinding}
	}

	state.KeyFindings = findings
	a.logger.Info("extracted %d findings", len(findings))
	return state, nil
}

func (a *Agent) generateSummary(ctx context.Context, state State) (State, error) {
	lines := make([]string, 0, len(state.KeyFindings))
	for i, f := range state.KeyFindings {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, f))
	}

	human := fmt.Sprintf("Topic: %s\n\nKey Findings:\n%s", state.Topic, strings.Join(lines, "\n"))
	reply, err := a.generate(ctx, generateSummaryPrompt, human)
	if err != nil {
		return state, fmt.Errorf("failed to generate summary: %w", err)
	}

	state.Summary = reply
	state.CurrentStep = StepGenerateSummary
	return state, nil
}
