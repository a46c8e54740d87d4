// Package dag provides a small, concurrency-safe directed acyclic graph with
// labelled edges. Nodes are identified by string IDs and remember their
// insertion order, which the graph uses to break ties so that iteration and
// topological ordering are deterministic.
package dag
