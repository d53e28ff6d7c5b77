// Package handler serves the research agent behind API Gateway.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"github.com/aishitdharwal/ai-agent/graph"
	"github.com/aishitdharwal/ai-agent/log"
	"github.com/aishitdharwal/ai-agent/research"
	"github.com/aishitdharwal/ai-agent/store"
)

const saveTimeout = 10 * time.Second

// Researcher runs the stateful research workflow.
type Researcher interface {
	Run(ctx context.Context, topic string, listeners ...graph.NodeListener[research.State]) (research.State, error)
}

// Handler routes API Gateway proxy requests. It is built once per cold
// start and reused across invocations.
type Handler struct {
	agent  Researcher
	store  store.Store
	logger log.Logger
	newID  func() string
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithIDGenerator sets the fallback request id source (default: UUIDs).
func WithIDGenerator(f func() string) Option {
	return func(h *Handler) { h.newID = f }
}

// New creates a handler. st may be nil, in which case nothing is persisted
// and state lookups return 404.
func New(agent Researcher, st store.Store, opts ...Option) *Handler {
	h := &Handler{agent: agent, store: st, newID: uuid.NewString}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = log.OrDefault(h.logger)
	return h
}

// Handle is the Lambda entry point.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.Debug("received %s %s", req.HTTPMethod, req.Path)

	switch req.HTTPMethod {
	case http.MethodOptions:
		return respond(http.StatusOK, nil), nil
	case http.MethodPost:
		return h.research(ctx, req), nil
	case http.MethodGet:
		return h.getState(ctx, req), nil
	default:
		return respondError(http.StatusMethodNotAllowed, "Method not allowed"), nil
	}
}

type researchRequest struct {
	Topic any `json:"topic"`
}

func (h *Handler) research(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return respondError(http.StatusBadRequest, "Invalid JSON body")
	}

	var in researchRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return respondError(http.StatusBadRequest, "Invalid JSON body")
	}
	topic, _ := in.Topic.(string)
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return respondError(http.StatusBadRequest, "Missing required field: topic")
	}

	requestID := h.requestID(ctx, req)
	h.logger.Info("processing research request %s for topic: %s", requestID, topic)

	progress := graph.NodeListenerFunc[research.State](
		func(ctx context.Context, event graph.NodeEvent, node string, state research.State, _ error) {
			if event == graph.NodeEventComplete {
				h.save(ctx, requestID, store.StatusRunning, state)
			}
		})

	state, err := h.agent.Run(ctx, topic, progress)
	if err != nil {
		h.logger.Error("error processing request %s: %v", requestID, err)
		h.save(ctx, requestID, store.StatusFailed, state)
		return respond(http.StatusInternalServerError, errorBody{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}

	result := state.Result()
	h.save(ctx, requestID, store.StatusCompleted, result)

	return respond(http.StatusOK, researchBody{
		RequestID: requestID,
		Topic:     topic,
		Result:    result,
	})
}

func (h *Handler) getState(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	requestID := pathRequestID(req)
	if requestID == "" {
		return respondError(http.StatusBadRequest, "Missing path parameter: request_id")
	}
	if h.store == nil {
		return respondError(http.StatusNotFound, "State not found")
	}

	rec, err := h.store.Load(ctx, requestID)
	switch {
	case err == nil:
		return respond(http.StatusOK, rec)
	case errors.Is(err, store.ErrNotFound):
		return respondError(http.StatusNotFound, "State not found")
	case errors.Is(err, store.ErrInvalidID):
		return respondError(http.StatusBadRequest, "Invalid request_id")
	default:
		h.logger.Error("error loading state %s: %v", requestID, err)
		return respond(http.StatusInternalServerError, errorBody{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}

// save persists a snapshot. Failures are logged and never fail the request.
// Saves outlive the request context so a failed snapshot still lands after
// a deadline.
func (h *Handler) save(ctx context.Context, requestID string, status store.Status, v any) {
	if h.store == nil {
		return
	}

	rec, err := store.NewRecord(requestID, status, v)
	if err != nil {
		h.logger.Warn("failed to encode state for %s: %v", requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := h.store.Save(ctx, rec); err != nil {
		h.logger.Warn("failed to save state for %s: %v", requestID, err)
		return
	}
	h.logger.Debug("saved %s state for %s", status, requestID)
}

func (h *Handler) requestID(ctx context.Context, req events.APIGatewayProxyRequest) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	if req.RequestContext.RequestID != "" {
		return req.RequestContext.RequestID
	}
	return h.newID()
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, err
		}
		body = string(decoded)
	}
	if strings.TrimSpace(body) == "" {
		return []byte("{}"), nil
	}
	return []byte(body), nil
}

func pathRequestID(req events.APIGatewayProxyRequest) string {
	if id := req.PathParameters["request_id"]; id != "" {
		return id
	}
	path := strings.TrimSuffix(req.Path, "/")
	if i := strings.LastIndex(path, "/research/"); i >= 0 {
		return path[i+len("/research/"):]
	}
	return ""
}
