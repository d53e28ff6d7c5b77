package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Exporter renders a graph in text formats.
type Exporter[S any] struct {
	graph *StateGraph[S]
}

// NewExporter creates a new graph exporter for the given graph
func NewExporter[S any](graph *StateGraph[S]) *Exporter[S] {
	return &Exporter[S]{graph: graph}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter[S]) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options
func (ge *Exporter[S]) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	if ge.graph.entryPoint != "" {
		sb.WriteString("    START([\"START\"])\n")
		fmt.Fprintf(&sb, "    START --> %s\n", ge.graph.entryPoint)
	}

	for _, name := range ge.graph.order {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, name)
	}

	hasEnd := false
	for _, edge := range ge.graph.edges {
		if edge.To == END {
			hasEnd = true
		}
	}
	if hasEnd {
		sb.WriteString("    END([\"END\"])\n")
	}

	for _, edge := range ge.graph.edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", edge.From, edge.To)
	}

	conditional := make([]string, 0, len(ge.graph.conditionalEdges))
	for from := range ge.graph.conditionalEdges {
		conditional = append(conditional, from)
	}
	sort.Strings(conditional)
	for _, from := range conditional {
		fmt.Fprintf(&sb, "    %s -.-> %s_condition((?))\n", from, from)
	}

	if ge.graph.entryPoint != "" {
		fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", ge.graph.entryPoint)
	}
	return sb.String()
}

// DrawASCII renders the path reachable through static edges from the entry point.
//
//	START
//	  │
//	  ▼
//	generate_queries
//	  │
//	  ▼
//	END
func (ge *Exporter[S]) DrawASCII() string {
	if ge.graph.entryPoint == "" {
		return "No entry point set\n"
	}

	var sb strings.Builder
	sb.WriteString("START\n")

	visited := make(map[string]bool)
	current := ge.graph.entryPoint
	for {
		sb.WriteString("  │\n  ▼\n")
		if visited[current] {
			fmt.Fprintf(&sb, "%s (cycle)\n", current)
			break
		}
		visited[current] = true
		sb.WriteString(current + "\n")

		if current == END {
			break
		}
		if _, ok := ge.graph.conditionalEdges[current]; ok {
			sb.WriteString("  ┆\n  (?)\n")
			break
		}

		next := ""
		for _, e := range ge.graph.edges {
			if e.From == current {
				next = e.To
				break
			}
		}
		if next == "" {
			break
		}
		current = next
	}
	return sb.String()
}
