// Package io reads input graphs and writes solution files.
//
// # Input Formats
//
// Graphs are read from Graphviz DOT or from JSON. In DOT, the source node
// carries the attribute initial=1 and the target node final=1:
//
//	digraph g1 {
//	    a [initial=1];
//	    c [final=1];
//	    a -> b;
//	    b -> c;
//	}
//
// The JSON form lists nodes with boolean source/target flags:
//
//	{
//	  "name": "g1",
//	  "nodes": [
//	    {"id": "a", "source": true},
//	    {"id": "b"},
//	    {"id": "c", "target": true}
//	  ],
//	  "edges": [
//	    {"from": "a", "to": "b"},
//	    {"from": "b", "to": "c"}
//	  ]
//	}
//
// Nodes are indexed in order of first appearance. [Load] picks the format from
// the file extension and [Parse] from an explicit format name.
//
// # Errors
//
// Parsing failures are coded errors from pkg/errors: INVALID_FORMAT for
// malformed input, NO_SOURCE / NO_TARGET for missing flags, INVALID_GRAPH for
// other structural problems and FILE_NOT_FOUND for missing files. The
// underlying graph sentinel errors stay reachable with errors.Is.
//
// # Solutions
//
// [WriteSolutionDOT] writes all graphs into a single digraph named
// Sol_Length<k>, prefixing every node of graph i with _<i>_. The source is
// green, the target red, path nodes are filled light blue and path edges are
// blue. [RenderSVG] turns such DOT into SVG with go-graphviz.
package io
