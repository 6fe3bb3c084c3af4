package io

import (
	"io"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
)

// ReadDOT parses a Graphviz digraph from r. Nodes with initial=1 and final=1
// become the source and the target. If name is empty the DOT graph's own
// name is used.
//
// ReadDOT does not close r.
func ReadDOT(r io.Reader, name string) (*graph.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", name)
	}
	gv, err := graphviz.ParseBytes(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse DOT %s", name)
	}
	defer gv.Close()

	if name == "" {
		if n, err := gv.Name(); err == nil {
			name = n
		}
	}

	b := graph.NewBuilder(name)
	var nodes []*graphviz.Node
	var ids []string
	n, err := gv.FirstNode()
	for err == nil && n != nil {
		id, nerr := n.Name()
		if nerr != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, nerr, "graph %s", name)
		}
		if _, aerr := b.AddNode(id); aerr != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidGraph, aerr, "graph %s: node %s", name, id)
		}
		if isSet(n.GetStr("initial")) {
			_ = b.MarkSource(id)
		}
		if isSet(n.GetStr("final")) {
			_ = b.MarkTarget(id)
		}
		nodes = append(nodes, n)
		ids = append(ids, id)
		n, err = gv.NextNode(n)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "graph %s", name)
	}

	for i, n := range nodes {
		e, err := gv.FirstOut(n)
		for err == nil && e != nil {
			head, herr := e.Head()
			if herr != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, herr, "graph %s", name)
			}
			to, nerr := head.Name()
			if nerr != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, nerr, "graph %s", name)
			}
			if aerr := b.AddEdge(ids[i], to); aerr != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidGraph, aerr, "graph %s: edge %s->%s", name, ids[i], to)
			}
			e, err = gv.NextOut(e)
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "graph %s", name)
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, buildError(name, err)
	}
	return g, nil
}

func isSet(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
