// Package graph provides a small typed state-graph engine in the style of
// LangGraph.
//
// A graph is a set of named nodes, each a function from state to state, wired
// together with edges. Execution starts at the entry point and follows one edge
// at a time until it reaches END, so the state handed to a node is always
// exactly what the previous node returned.
//
// # Building a graph
//
//	g := graph.NewStateGraph[*State]()
//	g.AddNode("plan", "Plan the work", planNode)
//	g.AddNode("act", "Do the work", actNode)
//	g.SetEntryPoint("plan")
//	g.AddEdge("plan", "act")
//	g.AddEdge("act", graph.END)
//
//	runnable, err := g.Compile()
//	final, err := runnable.Invoke(ctx, &State{})
//
// Conditional edges choose the next node at runtime and take precedence over
// static edges from the same node:
//
//	g.AddConditionalEdge("act", func(ctx context.Context, s *State) string {
//		if s.Done {
//			return graph.END
//		}
//		return "act"
//	})
//
// # Observability
//
// A NodeListener sees every node start, completion and failure. Listeners are
// called synchronously on the running goroutine, which makes them a natural
// place to persist progress:
//
//	observed := runnable.WithListeners(graph.NodeListenerFunc[*State](
//		func(ctx context.Context, ev graph.NodeEvent, node string, s *State, err error) {
//			log.Printf("%s %s", node, ev)
//		}))
//
// A Tracer records timed spans for the run, each node and each edge taken.
//
// # Failure handling
//
// A RetryPolicy retries failing nodes with fixed, linear or exponential
// backoff. SetNodeTimeout bounds each node. Panics are recovered and returned
// as *PanicError; node failures are returned as *NodeError together with the
// last good state.
//
// # Visualization
//
// Exporter renders a graph as a Mermaid flowchart or as plain ASCII.
package graph
