package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/equalpath/pkg/cache"
	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
	gio "github.com/matzehuels/equalpath/pkg/io"
	"github.com/matzehuels/equalpath/pkg/observability"
)

// Input is one graph document, either read from disk or posted to the API.
type Input struct {
	Name    string `json:"name"`
	Format  string `json:"format,omitempty"` // "dot" (default) or "json"
	Content string `json:"content"`
}

// Hash returns the content hash used in cache keys. The name is part of
// the hash because it appears in reports and solution files.
func (in Input) Hash() string {
	return cache.Hash([]byte(in.Name + "\x00" + in.Format + "\x00" + in.Content))
}

// ReadInput reads the graph file at path. The input is named after the file.
func ReadInput(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Input{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return Input{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
	}
	return Input{
		Name:    filepath.Base(path),
		Format:  gio.FormatFromPath(path),
		Content: string(data),
	}, nil
}

// ReadInputs reads every file in paths.
func ReadInputs(paths []string) ([]Input, error) {
	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		in, err := ReadInput(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Parse converts inputs into graphs, in order.
func Parse(ctx context.Context, inputs []Input) ([]*graph.Graph, error) {
	if len(inputs) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "at least one graph is required")
	}
	if len(inputs) > MaxGraphs {
		return nil, errs.New(errs.ErrCodeInvalidInput, "too many graphs (max %d)", MaxGraphs)
	}

	hooks := observability.Pipeline()
	graphs := make([]*graph.Graph, 0, len(inputs))
	for _, in := range inputs {
		if err := errs.ValidateGraphName(in.Name); err != nil {
			return nil, err
		}
		hooks.OnLoadStart(ctx, in.Name)
		start := time.Now()
		g, err := gio.Parse(in.Name, in.Format, []byte(in.Content))
		nodes := 0
		if g != nil {
			nodes = g.Order()
		}
		hooks.OnLoadComplete(ctx, in.Name, nodes, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}
