package dag

import "sync"

// Graph is a collection of nodes and their dependencies, representing a DAG.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order records node IDs in insertion order and drives deterministic
	// iteration.
	order []string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	// id is the unique identifier for the node.
	id string
	// index is the node's insertion position.
	index int
	// deps holds the nodes this node depends on, with the edge label.
	deps map[string]string
	// dependents holds the nodes that depend on this node, with the edge label.
	dependents map[string]string
}

// Edge is a labelled dependency: To depends on From.
type Edge struct {
	From  string
	To    string
	Label string
}
