package io

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/equalpath/pkg/encode"
	"github.com/matzehuels/equalpath/pkg/graph"
)

// SolutionFileName returns the default file name for a length-k solution.
func SolutionFileName(k int) string {
	return fmt.Sprintf("result-l%d.dot", k)
}

// ToSolutionDOT renders graphs with their length-k paths highlighted as one
// DOT digraph. paths[i] belongs to graphs[i].
func ToSolutionDOT(graphs []*graph.Graph, paths []encode.Path, k int) (string, error) {
	if len(paths) != len(graphs) {
		return "", fmt.Errorf("got %d paths for %d graphs", len(paths), len(graphs))
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph Sol_Length%d {\n", k)
	for i, g := range graphs {
		writeSolutionGraph(&buf, i, g, paths[i])
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}

func writeSolutionGraph(buf *bytes.Buffer, i int, g *graph.Graph, path encode.Path) {
	id := func(u int) string { return dotID(fmt.Sprintf("_%d_%s", i, g.NodeName(u))) }

	pos := make(map[int]int, len(path))
	for p, u := range path {
		pos[u] = p
	}
	src, _ := g.Source()
	tgt, _ := g.Target()

	fmt.Fprintf(buf, "\t%s [initial=1, color=green] [style=filled, fillcolor=lightblue];\n", id(src))
	fmt.Fprintf(buf, "\t%s [final=1, color=red] [style=filled, fillcolor=lightblue];\n", id(tgt))
	for u := range g.Order() {
		if u == src || u == tgt {
			continue
		}
		if _, ok := pos[u]; ok {
			fmt.Fprintf(buf, "\t%s [style=filled, fillcolor=lightblue];\n", id(u))
		} else {
			fmt.Fprintf(buf, "\t%s ;\n", id(u))
		}
	}

	for u := range g.Order() {
		for _, v := range g.Successors(u) {
			p, onPath := pos[u]
			if onPath && p+1 < len(path) && path[p+1] == v {
				fmt.Fprintf(buf, "\t%s -> %s [color=blue];\n", id(u), id(v))
			} else {
				fmt.Fprintf(buf, "\t%s -> %s ;\n", id(u), id(v))
			}
		}
	}
}

var plainID = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dotID quotes s unless it is a plain DOT identifier.
func dotID(s string) string {
	if plainID.MatchString(s) {
		return s
	}
	return fmt.Sprintf("%q", s)
}

// WriteSolutionDOT writes the solution DOT for graphs and paths to w.
func WriteSolutionDOT(w io.Writer, graphs []*graph.Graph, paths []encode.Path, k int) error {
	dot, err := ToSolutionDOT(graphs, paths, k)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, dot)
	return err
}

// ExportSolutionDOT writes the solution to dir/result-l<k>.dot, creating dir
// if needed, and returns the file path.
func ExportSolutionDOT(dir string, graphs []*graph.Graph, paths []encode.Path, k int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, SolutionFileName(k))
	f, err := createFile(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSolutionDOT(f, graphs, paths, k); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// createFile opens solution files for writing.
var createFile = func(path string) (io.WriteCloser, error) { return os.Create(path) }

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
