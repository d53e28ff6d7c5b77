package graph

import "fmt"

// NodeError wraps a failure raised by a single node.
type NodeError struct {
	// Node is the name of the node that failed
	Node string
	// Err is the underlying failure
	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("error in node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError is returned when a node panics.
type PanicError struct {
	Node  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in node %s: %v", e.Node, e.Value)
}
