package io

import (
	"encoding/json"
	"fmt"
	"io"

	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
)

type jsonGraph struct {
	Name  string     `json:"name,omitempty"`
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID     string `json:"id"`
	Source bool   `json:"source,omitempty"`
	Target bool   `json:"target,omitempty"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReadJSON decodes a JSON graph from r. If name is empty the "name" field of
// the document is used.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - A node has an empty or duplicate ID
//   - An edge references an unknown node ID
//   - Not exactly one node is flagged source, or not exactly one target
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader, name string) (*graph.Graph, error) {
	var data jsonGraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", name)
	}
	if name == "" {
		name = data.Name
	}

	b := graph.NewBuilder(name)
	for _, n := range data.Nodes {
		if _, err := b.AddNode(n.ID); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "graph %s: node %s", name, n.ID)
		}
		if n.Source {
			_ = b.MarkSource(n.ID)
		}
		if n.Target {
			_ = b.MarkTarget(n.ID)
		}
	}
	for _, e := range data.Edges {
		if err := b.AddEdge(e.From, e.To); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "graph %s: edge %s->%s", name, e.From, e.To)
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, buildError(name, err)
	}
	return g, nil
}

// WriteJSON encodes g as JSON. The output can be re-read with [ReadJSON].
func WriteJSON(g *graph.Graph, w io.Writer) error {
	out := jsonGraph{
		Name:  g.Name(),
		Nodes: make([]jsonNode, g.Order()),
		Edges: make([]jsonEdge, 0, g.EdgeCount()),
	}
	for u := range g.Order() {
		out.Nodes[u] = jsonNode{ID: g.NodeName(u), Source: g.IsSource(u), Target: g.IsTarget(u)}
		for _, v := range g.Successors(u) {
			out.Edges = append(out.Edges, jsonEdge{From: g.NodeName(u), To: g.NodeName(v)})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

