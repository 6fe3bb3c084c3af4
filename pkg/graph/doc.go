// Package graph provides the immutable directed graph the path encoder works on.
//
// # Overview
//
// Every input graph carries exactly one node flagged as source and exactly one
// flagged as target. Nodes are addressed by dense integer indices 0..Order()-1
// assigned in insertion order, which is what the indicator variables of the
// encoder are keyed on. Names are kept only for presentation.
//
// # Basic Usage
//
// Build a graph with [NewBuilder], then query it:
//
//	b := graph.NewBuilder("g1")
//	b.AddNode("a")
//	b.AddNode("b")
//	b.AddEdge("a", "b")
//	b.MarkSource("a")
//	b.MarkTarget("b")
//	g, err := b.Build()
//
// [Graph.Successors] returns neighbours in ascending index order; the encoder and
// the decoder rely on that order for deterministic variable creation and
// first-match decoding.
//
// # Source and Target
//
// [Graph.Source] and [Graph.Target] return [ErrNoSource] / [ErrNoTarget] instead
// of an out-of-range index when a flag is missing. [Builder.Build] refuses graphs
// with zero or several sources or targets.
//
// # Concurrency
//
// A built Graph is never modified and may be shared between goroutines.
// A Builder is not safe for concurrent use.
package graph
