package encode

import "fmt"

// VarKey identifies the indicator variable "Node occupies Position of a
// path of Length edges in the graph with index Graph".
type VarKey struct {
	Graph    int
	Position int
	Length   int
	Node     int
}

// String returns the printable name X<graph>,<position>,<length>,<node>.
func (k VarKey) String() string {
	return fmt.Sprintf("X%d,%d,%d,%d", k.Graph, k.Position, k.Length, k.Node)
}
