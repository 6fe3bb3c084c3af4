// Package encode translates "every graph has a simple source→target path of
// exactly k edges" into a propositional formula and decodes satisfying
// assignments back into paths.
//
// # Variables
//
// The proposition "node n occupies position p of a length-k path in graph g"
// is the variable keyed by [VarKey]{Graph: g, Position: p, Length: k, Node: n}.
// Keys are interned by the [sat.Engine], so the same key always yields the
// same variable and variables of different graphs never collide.
//
// # Pruning
//
// [Prune] computes, for each position, the nodes reachable from the source
// by a walk of exactly that many edges. Only those candidates get
// exclusivity and adjacency constraints. [AllNodes] is the unpruned
// baseline; both produce equisatisfiable formulas.
//
// # Formulas
//
// A fixed-length formula for one graph is the conjunction of
//
//   - validity: the source is at position 0, the target at position k, and
//     no other node at position k;
//   - exclusivity: exactly one candidate per position, and that node at no
//     other position;
//   - adjacency: the node at position p has a successor at position p+1.
//
// [Encoder.PathFormula] conjoins this over several graphs and
// [Encoder.ExistenceFormula] disjoins it over the lengths 0..minOrder-1,
// solving eagerly and stopping at the first satisfiable length.
//
// # Decoding
//
// [DecodePaths] reads one path per graph for a known length, and
// [RecoverLength] finds the length from the model alone. Both report
// a model that does not describe valid simple paths as an
// INCONSISTENT_MODEL error, distinct from an unsatisfiable formula.
package encode
