package pipeline

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/equalpath/pkg/encode"
	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/graph"
	"github.com/matzehuels/equalpath/pkg/sat"
	"github.com/matzehuels/equalpath/pkg/search"
)

// Report is the serializable outcome of a run. It is what the API returns
// and what the cache stores.
type Report struct {
	RunID    string          `json:"run_id"`
	Mode     Mode            `json:"mode"`
	Order    search.Order    `json:"order"`
	Graphs   []GraphSummary  `json:"graphs"`
	Found    bool            `json:"found"`
	Length   int             `json:"length"` // first length found, -1 if none
	Tried    int             `json:"tried"`  // lengths checked
	Attempts []AttemptReport `json:"attempts"`
	Stats    Stats           `json:"stats"`
	Cached   bool            `json:"cached"`
}

// GraphSummary describes one input graph.
type GraphSummary struct {
	Name   string `json:"name"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// AttemptReport is one checked length. In global mode there is a single
// attempt describing the whole disjunction.
type AttemptReport struct {
	Length     int         `json:"length"`
	Verdict    sat.Verdict `json:"verdict"`
	Paths      [][]string  `json:"paths,omitempty"` // node names, one path per graph
	Formula    string      `json:"formula,omitempty"`
	DurationMS float64     `json:"duration_ms"`
}

// Stats contains run statistics.
type Stats struct {
	Variables  int     `json:"variables"`
	Gates      int     `json:"gates"`
	DurationMS float64 `json:"duration_ms"`
}

// FoundAttempts returns the satisfiable attempts in report order.
func (r *Report) FoundAttempts() []AttemptReport {
	var out []AttemptReport
	for _, a := range r.Attempts {
		if a.Verdict == sat.Sat {
			out = append(out, a)
		}
	}
	return out
}

// Marshal encodes the report as JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalReport decodes a report produced by Marshal.
func UnmarshalReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func summarize(graphs []*graph.Graph) []GraphSummary {
	out := make([]GraphSummary, len(graphs))
	for i, g := range graphs {
		out[i] = GraphSummary{Name: g.Name(), Nodes: g.Order(), Edges: g.EdgeCount()}
		if s, err := g.Source(); err == nil {
			out[i].Source = g.NodeName(s)
		}
		if t, err := g.Target(); err == nil {
			out[i].Target = g.NodeName(t)
		}
	}
	return out
}

func pathNames(graphs []*graph.Graph, paths []encode.Path) [][]string {
	if len(paths) == 0 {
		return nil
	}
	out := make([][]string, len(paths))
	for i, p := range paths {
		out[i] = p.Names(graphs[i])
	}
	return out
}

// pathsFromNames maps named paths back to node ids of graphs.
func pathsFromNames(graphs []*graph.Graph, names [][]string) ([]encode.Path, error) {
	if len(names) != len(graphs) {
		return nil, errs.New(errs.ErrCodeInternal, "report has %d paths for %d graphs", len(names), len(graphs))
	}
	out := make([]encode.Path, len(names))
	for i, ns := range names {
		p := make(encode.Path, len(ns))
		for j, n := range ns {
			u, ok := graphs[i].Lookup(n)
			if !ok {
				return nil, errs.New(errs.ErrCodeInternal, "report names unknown node %q in %s", n, graphs[i].Name())
			}
			p[j] = u
		}
		out[i] = p
	}
	return out, nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
