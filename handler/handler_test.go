package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aishitdharwal/ai-agent/graph"
	"github.com/aishitdharwal/ai-agent/log"
	"github.com/aishitdharwal/ai-agent/research"
	"github.com/aishitdharwal/ai-agent/store"
	"github.com/aishitdharwal/ai-agent/store/memory"
	"github.com/aishitdharwal/ai-agent/tool"
)

// fakeAgent walks the four steps, notifying listeners, and optionally fails
// at failAt.
type fakeAgent struct {
	failAt string
	topics []string
	seen   []store.Status
	st     store.Store
	reqID  string
}

func (a *fakeAgent) Run(ctx context.Context, topic string, listeners ...graph.NodeListener[research.State]) (research.State, error) {
	a.topics = append(a.topics, topic)
	state := research.NewState(topic)

	steps := []struct {
		name  string
		apply func(*research.State)
	}{
		{research.StepGenerateQueries, func(s *research.State) { s.SearchQueries = []string{"q1", "q2"} }},
		{research.StepSearchWeb, func(s *research.State) {
			s.SearchResults = []tool.SearchResult{{Title: "a", Content: "x"}, {Title: "b", Content: "y"}}
		}},
		{research.StepExtractFindings, func(s *research.State) { s.KeyFindings = []string{"f1"} }},
		{research.StepGenerateSummary, func(s *research.State) { s.Summary = "summary" }},
	}

	for _, step := range steps {
		if step.name == a.failAt {
			err := &graph.NodeError{Node: step.name, Err: errors.New("model unavailable")}
			state.Error = err.Error()
			return state, err
		}
		next := state
		step.apply(&next)
		next.CurrentStep = step.name
		for _, l := range listeners {
			l.OnNodeEvent(ctx, graph.NodeEventComplete, step.name, next, nil)
		}
		if a.st != nil {
			if rec, err := a.st.Load(ctx, a.reqID); err == nil {
				a.seen = append(a.seen, rec.Status)
			}
		}
		state = next
	}
	return state, nil
}

type failingStore struct{ store.Store }

func (failingStore) Save(context.Context, *store.Record) error {
	return errors.New("bucket does not exist")
}

func (failingStore) Load(context.Context, string) (*store.Record, error) {
	return nil, errors.New("throttled")
}

func post(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/research",
		Body:       body,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "apigw-req-1",
		},
	}
}

func decode(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	return out
}

func assertCORS(t *testing.T, resp events.APIGatewayProxyResponse) {
	t.Helper()
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "Content-Type", resp.Headers["Access-Control-Allow-Headers"])
	assert.Equal(t, "GET, POST, OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
}

func TestHandle_Research(t *testing.T) {
	st := memory.New()
	agent := &fakeAgent{st: st, reqID: "lambda-req-1"}
	h := New(agent, st, WithLogger(log.NoOpLogger{}))

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "lambda-req-1"})
	resp, err := h.Handle(ctx, post(`{"topic": "  quantum computing "}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertCORS(t, resp)
	assert.Contains(t, resp.Body, "\n  \"request_id\": \"lambda-req-1\"")

	body := decode(t, resp)
	assert.Equal(t, "lambda-req-1", body["request_id"])
	assert.Equal(t, "quantum computing", body["topic"])

	result := body["result"].(map[string]any)
	assert.Equal(t, []any{"q1", "q2"}, result["search_queries"])
	assert.Equal(t, float64(2), result["num_results"])
	assert.Equal(t, []any{"f1"}, result["key_findings"])
	assert.Equal(t, "summary", result["summary"])
	assert.Equal(t, "stateful_langgraph", result["method"])

	assert.Equal(t, []string{"quantum computing"}, agent.topics)
	assert.Equal(t, []store.Status{
		store.StatusRunning, store.StatusRunning, store.StatusRunning, store.StatusRunning,
	}, agent.seen)

	rec, err := st.Load(context.Background(), "lambda-req-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, rec.Status)
	var saved research.Result
	require.NoError(t, rec.Decode(&saved))
	assert.Equal(t, "summary", saved.Summary)
	assert.Equal(t, 2, saved.NumResults)
}

func TestHandle_RequestIDFallbacks(t *testing.T) {
	st := memory.New()
	h := New(&fakeAgent{}, st, WithLogger(log.NoOpLogger{}), WithIDGenerator(func() string { return "generated" }))

	resp, err := h.Handle(context.Background(), post(`{"topic": "t"}`))
	require.NoError(t, err)
	assert.Equal(t, "apigw-req-1", decode(t, resp)["request_id"])

	req := post(`{"topic": "t"}`)
	req.RequestContext.RequestID = ""
	resp, err = h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "generated", decode(t, resp)["request_id"])

	ids, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"apigw-req-1", "generated"}, ids)
}

func TestHandle_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		base64  bool
		wantErr string
	}{
		{"empty body", "", false, "Missing required field: topic"},
		{"empty object", "{}", false, "Missing required field: topic"},
		{"blank topic", `{"topic": "   "}`, false, "Missing required field: topic"},
		{"non-string topic", `{"topic": 42}`, false, "Missing required field: topic"},
		{"malformed", `{"topic": `, false, "Invalid JSON body"},
		{"array", `["topic"]`, false, "Invalid JSON body"},
		{"bad base64", "!!!", true, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := &fakeAgent{}
			h := New(agent, memory.New(), WithLogger(log.NoOpLogger{}))

			req := post(tt.body)
			req.IsBase64Encoded = tt.base64
			resp, err := h.Handle(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assertCORS(t, resp)
			assert.Equal(t, map[string]any{"error": tt.wantErr}, decode(t, resp))
			assert.Empty(t, agent.topics)
		})
	}
}

func TestHandle_Base64Body(t *testing.T) {
	h := New(&fakeAgent{}, nil, WithLogger(log.NoOpLogger{}))

	req := post(base64.StdEncoding.EncodeToString([]byte(`{"topic": "encoded"}`)))
	req.IsBase64Encoded = true
	resp, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "encoded", decode(t, resp)["topic"])
}

func TestHandle_AgentError(t *testing.T) {
	st := memory.New()
	h := New(&fakeAgent{failAt: research.StepExtractFindings}, st, WithLogger(log.NoOpLogger{}))

	resp, err := h.Handle(context.Background(), post(`{"topic": "t"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assertCORS(t, resp)

	body := decode(t, resp)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "error in node extract_findings: model unavailable", body["message"])

	rec, err := st.Load(context.Background(), "apigw-req-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, rec.Status)

	var state research.State
	require.NoError(t, rec.Decode(&state))
	assert.Equal(t, research.StepSearchWeb, state.CurrentStep)
	assert.Len(t, state.SearchResults, 2)
	assert.Equal(t, "error in node extract_findings: model unavailable", state.Error)
}

func TestHandle_SaveFailuresDoNotFailRequest(t *testing.T) {
	h := New(&fakeAgent{}, failingStore{}, WithLogger(log.NoOpLogger{}))

	resp, err := h.Handle(context.Background(), post(`{"topic": "t"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandle_GetState(t *testing.T) {
	st := memory.New()
	rec, err := store.NewRecord("req-1", store.StatusCompleted, map[string]string{"summary": "s"})
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), rec))

	h := New(&fakeAgent{}, st, WithLogger(log.NoOpLogger{}))

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Path:           "/research/req-1",
		PathParameters: map[string]string{"request_id": "req-1"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertCORS(t, resp)

	body := decode(t, resp)
	assert.Equal(t, "req-1", body["request_id"])
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, map[string]any{"summary": "s"}, body["state"])

	// Path only, no path parameters.
	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/prod/research/req-1/",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandle_GetStateErrors(t *testing.T) {
	get := func(h *Handler, path string) events.APIGatewayProxyResponse {
		resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: path})
		require.NoError(t, err)
		return resp
	}

	h := New(&fakeAgent{}, memory.New(), WithLogger(log.NoOpLogger{}))
	resp := get(h, "/research/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "State not found"}, decode(t, resp))

	resp = get(h, "/research")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Path:           "/research/..%2Fx",
		PathParameters: map[string]string{"request_id": "../x"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Invalid request_id"}, decode(t, resp))

	resp = get(New(&fakeAgent{}, nil, WithLogger(log.NoOpLogger{})), "/research/x")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(New(&fakeAgent{}, failingStore{}, WithLogger(log.NoOpLogger{})), "/research/x")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "throttled", decode(t, resp)["message"])
}

func TestHandle_OptionsAndMethods(t *testing.T) {
	h := New(&fakeAgent{}, nil, WithLogger(log.NoOpLogger{}))

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions, Path: "/research"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assertCORS(t, resp)

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodDelete, Path: "/research/x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assertCORS(t, resp)
}

func TestRespond_DoesNotEscapeHTML(t *testing.T) {
	resp := respond(http.StatusOK, map[string]string{"summary": "a < b & c"})
	assert.Equal(t, "{\n  \"summary\": \"a < b & c\"\n}", resp.Body)

	// Headers are not shared between responses.
	resp.Headers["X-Test"] = "1"
	assert.NotContains(t, respond(http.StatusOK, nil).Headers, "X-Test")
}
