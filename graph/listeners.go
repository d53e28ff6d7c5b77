package graph

import (
	"context"
	"time"
)

// NodeEvent represents different types of node events
type NodeEvent string

const (
	// NodeEventStart indicates a node has started execution
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node has completed successfully
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node encountered an error
	NodeEventError NodeEvent = "error"
)

// NodeListener receives node lifecycle events during a run.
// For NodeEventStart the state is the node's input, for NodeEventComplete
// it is the node's output, and for NodeEventError it is the last good state.
type NodeListener[S any] interface {
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc[S any] func(ctx context.Context, event NodeEvent, nodeName string, state S, err error)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc[S]) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	f(ctx, event, nodeName, state, err)
}

// StepRecord is a single entry captured by a HistoryListener.
type StepRecord[S any] struct {
	Timestamp time.Time
	NodeName  string
	Event     NodeEvent
	State     S
	Error     error
}

// HistoryListener keeps every event it sees, in order.
type HistoryListener[S any] struct {
	Steps []StepRecord[S]
}

// OnNodeEvent implements the NodeListener interface
func (h *HistoryListener[S]) OnNodeEvent(_ context.Context, event NodeEvent, nodeName string, state S, err error) {
	h.Steps = append(h.Steps, StepRecord[S]{
		Timestamp: time.Now(),
		NodeName:  nodeName,
		Event:     event,
		State:     state,
		Error:     err,
	})
}

// Completed returns the names of the nodes that finished successfully.
func (h *HistoryListener[S]) Completed() []string {
	var names []string
	for _, s := range h.Steps {
		if s.Event == NodeEventComplete {
			names = append(names, s.NodeName)
		}
	}
	return names
}
