package graph

import (
	"context"
	"fmt"
	"time"
)

// DefaultMaxSteps bounds the number of node executions in a single run.
const DefaultMaxSteps = 25

// StateGraph represents a state-based graph with compile-time type safety.
// The type parameter S represents the state type, which is typically a struct
// or a pointer to one.
//
// Example usage:
//
//	type MyState struct {
//	    Count int
//	}
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("increment", "Increment counter", func(ctx context.Context, state MyState) (MyState, error) {
//	    state.Count++
//	    return state, nil
//	})
//	g.SetEntryPoint("increment")
//	g.AddEdge("increment", graph.END)
type StateGraph[S any] struct {
	// nodes is a map of node names to their corresponding Node objects
	nodes map[string]Node[S]

	// order keeps node names in insertion order for rendering
	order []string

	// edges is a slice of Edge objects representing the connections between nodes
	edges []Edge

	// conditionalEdges maps a "From" node to a function choosing the "To" node at runtime
	conditionalEdges map[string]func(ctx context.Context, state S) string

	// entryPoint is the name of the entry point node in the graph
	entryPoint string

	// retryPolicy defines retry behavior for failed nodes
	retryPolicy *RetryPolicy

	nodeTimeout time.Duration
	maxSteps    int
}

// NewStateGraph creates a new instance of StateGraph with type safety.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]func(ctx context.Context, state S) string),
		maxSteps:         DefaultMaxSteps,
	}
}

// AddNode adds a new node to the state graph with the given name, description and function.
// Adding a node with an existing name replaces it.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	if _, exists := g.nodes[name]; !exists {
		g.order = append(g.order, name)
	}
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdge adds a conditional edge where the target node is determined at runtime.
// A conditional edge takes precedence over static edges from the same node.
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetRetryPolicy sets the retry policy applied to every node.
func (g *StateGraph[S]) SetRetryPolicy(policy *RetryPolicy) {
	g.retryPolicy = policy
}

// SetNodeTimeout bounds each node execution. Zero disables the bound.
func (g *StateGraph[S]) SetNodeTimeout(d time.Duration) {
	g.nodeTimeout = d
}

// SetMaxSteps sets the maximum number of node executions per run.
func (g *StateGraph[S]) SetMaxSteps(n int) {
	if n > 0 {
		g.maxSteps = n
	}
}

// Compile validates the graph and returns a StateRunnable instance.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint)
	}

	outgoing := make(map[string]int)
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, fmt.Errorf("%w: edge source %s", ErrNodeNotFound, e.From)
		}
		if _, ok := g.nodes[e.To]; !ok && e.To != END {
			return nil, fmt.Errorf("%w: edge target %s", ErrNodeNotFound, e.To)
		}
		outgoing[e.From]++
	}
	for from, n := range outgoing {
		if _, conditional := g.conditionalEdges[from]; conditional {
			continue
		}
		if n > 1 {
			return nil, fmt.Errorf("node %s has %d static outgoing edges, expected one", from, n)
		}
	}

	return &StateRunnable[S]{graph: g}, nil
}

// StateRunnable represents a compiled state graph that can be invoked with type safety.
type StateRunnable[S any] struct {
	graph     *StateGraph[S]
	tracer    *Tracer
	listeners []NodeListener[S]
}

// SetTracer sets a tracer for observability.
func (r *StateRunnable[S]) SetTracer(tracer *Tracer) {
	r.tracer = tracer
}

// AddListener registers a listener notified of every node event.
func (r *StateRunnable[S]) AddListener(l NodeListener[S]) {
	r.listeners = append(r.listeners, l)
}

// WithListeners returns a copy of the runnable with extra listeners appended.
// The receiver is left untouched, so a shared runnable can serve concurrent runs.
func (r *StateRunnable[S]) WithListeners(ls ...NodeListener[S]) *StateRunnable[S] {
	cp := &StateRunnable[S]{
		graph:     r.graph,
		tracer:    r.tracer,
		listeners: make([]NodeListener[S], 0, len(r.listeners)+len(ls)),
	}
	cp.listeners = append(cp.listeners, r.listeners...)
	cp.listeners = append(cp.listeners, ls...)
	return cp
}

// Invoke executes the compiled state graph with the given input state.
//
// Nodes run one at a time starting from the entry point. On failure the
// returned state is the last state produced by a successful node (or the
// initial state) together with a *NodeError.
func (r *StateRunnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	state := initialState
	current := r.graph.entryPoint

	var graphSpan *TraceSpan
	if r.tracer != nil {
		graphSpan = r.tracer.StartSpan(ctx, TraceEventGraphStart, "graph")
		ctx = ContextWithSpan(ctx, graphSpan)
	}
	finish := func(err error) {
		if graphSpan != nil {
			r.tracer.EndSpan(ctx, graphSpan, err)
		}
	}

	for steps := 0; current != END; steps++ {
		if err := ctx.Err(); err != nil {
			finish(err)
			return state, err
		}
		if steps >= r.graph.maxSteps {
			err := fmt.Errorf("%w: %d", ErrMaxStepsExceeded, r.graph.maxSteps)
			finish(err)
			return state, err
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			err := fmt.Errorf("%w: %s", ErrNodeNotFound, current)
			finish(err)
			return state, err
		}

		r.notify(ctx, NodeEventStart, current, state, nil)

		var nodeSpan *TraceSpan
		if r.tracer != nil {
			nodeSpan = r.tracer.StartSpan(ctx, TraceEventNodeStart, current)
		}

		next, err := r.runNode(ctx, node, state)

		if nodeSpan != nil {
			r.tracer.EndSpan(ctx, nodeSpan, err)
		}
		if err != nil {
			r.notify(ctx, NodeEventError, current, state, err)
			err = &NodeError{Node: current, Err: err}
			finish(err)
			return state, err
		}

		state = next
		r.notify(ctx, NodeEventComplete, current, state, nil)

		to, err := r.nextNode(ctx, current, state)
		if err != nil {
			finish(err)
			return state, err
		}
		if r.tracer != nil {
			r.tracer.TraceEdgeTraversal(ctx, current, to)
		}
		current = to
	}

	finish(nil)
	return state, nil
}

func (r *StateRunnable[S]) runNode(ctx context.Context, node Node[S], state S) (out S, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Node: node.Name, Value: p}
		}
	}()

	if r.graph.nodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.graph.nodeTimeout)
		defer cancel()
	}
	return runWithRetry(ctx, r.graph.retryPolicy, node.Function, state)
}

// nextNode determines the node to run after from.
func (r *StateRunnable[S]) nextNode(ctx context.Context, from string, state S) (string, error) {
	if cond, ok := r.graph.conditionalEdges[from]; ok {
		to := cond(ctx, state)
		if to == "" {
			return "", fmt.Errorf("conditional edge returned empty next node from %s", from)
		}
		return to, nil
	}
	for _, e := range r.graph.edges {
		if e.From == from {
			return e.To, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, from)
}

func (r *StateRunnable[S]) notify(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	for _, l := range r.listeners {
		l.OnNodeEvent(ctx, event, nodeName, state, err)
	}
}

// Graph returns the graph this runnable was compiled from.
func (r *StateRunnable[S]) Graph() *StateGraph[S] {
	return r.graph
}
