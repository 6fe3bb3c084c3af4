// Package pkg provides the libraries behind equalpath.
//
// # Overview
//
// equalpath decides whether several directed graphs, each with a source and
// a target node, share a path length: a k such that every graph has a simple
// source-to-target path of exactly k edges. The question is compiled into a
// propositional formula, handed to a SAT solver, and the satisfying
// assignment is decoded back into one path per graph.
//
// # Architecture
//
// The typical data flow:
//
//	DOT / JSON graph files
//	         ↓
//	    [io] package (parse into graph.Graph)
//	         ↓
//	    [encode] package (prune, build formula per length)
//	         ↓
//	    [sat] package (circuit → CNF → gini)
//	         ↓
//	    [encode] package (decode model into paths)
//	         ↓
//	    report, solution DOT / SVG
//
// [search] drives the per-length loop and [pipeline] ties loading, caching,
// searching and exporting together for the CLI and the HTTP [server].
//
// # Quick Start
//
//	graphs, _ := io.LoadAll([]string{"g1.dot", "g2.dot"})
//	enc := encode.NewEncoder(sat.New[encode.VarKey]())
//	res, _ := search.Run(ctx, enc, graphs, search.Options{})
//	if a, ok := res.First(); ok {
//	    for i, p := range a.Paths {
//	        fmt.Println(p.Format(graphs[i]))
//	    }
//	}
//
// # Supporting Packages
//
// [errors] carries coded errors shared by every layer. [cache] stores
// reports in files or redis. [config] reads equalpath.toml.
// [observability] exposes hooks for metrics and tracing.
package pkg
