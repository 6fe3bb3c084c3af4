package io

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
)

// Format names accepted by Parse.
const (
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// FormatFromPath returns the input format implied by the file extension.
// Unknown extensions are treated as DOT.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatDOT
	}
}

// Load reads the graph file at path. The graph is named after the file.
func Load(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
	}
	return Parse(filepath.Base(path), FormatFromPath(path), data)
}

// LoadAll reads every graph file in paths.
func LoadAll(paths []string) ([]*graph.Graph, error) {
	graphs := make([]*graph.Graph, 0, len(paths))
	for _, p := range paths {
		g, err := Load(p)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// Parse decodes data in the given format ("dot" or "json") into a graph
// called name.
func Parse(name, format string, data []byte) (*graph.Graph, error) {
	switch strings.ToLower(format) {
	case FormatDOT, "gv", "":
		return ReadDOT(bytes.NewReader(data), name)
	case FormatJSON:
		return ReadJSON(bytes.NewReader(data), name)
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown graph format %q (want dot or json)", format)
}

// buildError converts graph construction errors into coded errors.
func buildError(name string, err error) error {
	switch {
	case errors.Is(err, graph.ErrNoSource):
		return errs.Wrap(errs.ErrCodeNoSource, err, "graph %s", name)
	case errors.Is(err, graph.ErrNoTarget):
		return errs.Wrap(errs.ErrCodeNoTarget, err, "graph %s", name)
	default:
		return errs.Wrap(errs.ErrCodeInvalidGraph, err, "graph %s", name)
	}
}
