// Package graph holds the Patch data model (spec.md 3) and the
// Normalizer (spec.md 4.C): the pass that sorts edges, injects
// default-source blocks for unconnected inputs, and rejects unknown
// block types and dangling edges before inference ever runs. Duplicate
// edges are kept as authored; the Normalizer removes none.
//
// Grounded on the teacher's core/program.go multi-pass
// parse-then-validate structure (YAMLRoot -> ArrayConfig -> Program) and
// on verify/lint.go's "collect every issue, never short-circuit on the
// first" STRUCT-pass idiom.
package graph

// BlockID names a block within a Patch.
type BlockID string

// Block is one node of the authored graph.
type Block struct {
	ID          BlockID
	Type        string
	Params      map[string]interface{}
	DisplayName string
	Role        string
	InputPorts  []string
	OutputPorts []string
}

// Endpoint names a (block, port) pair, the from/to of an Edge.
type Endpoint struct {
	BlockID BlockID
	PortID  string
}

// Edge is a directed, typed connection from an output port to an input
// port.
type Edge struct {
	ID      string
	From    Endpoint
	To      Endpoint
	Enabled bool
	SortKey string
	Role    string
}

// Patch is the authored input to a compile: a set of blocks and the
// edges between their ports.
type Patch struct {
	Blocks map[BlockID]Block
	Edges  []Edge
}

// Clone returns a deep-enough copy of p that mutating the result (e.g.
// appending synthesized blocks/edges during normalization) does not
// alter p.
func (p Patch) Clone() Patch {
	blocks := make(map[BlockID]Block, len(p.Blocks))
	for id, b := range p.Blocks {
		blocks[id] = b
	}
	edges := make([]Edge, len(p.Edges))
	copy(edges, p.Edges)
	return Patch{Blocks: blocks, Edges: edges}
}

// IncomingEnabledEdges returns the enabled edges terminating at ep, in
// patch order (undefined relative order before Normalize sorts them).
func (p Patch) IncomingEnabledEdges(ep Endpoint) []Edge {
	var out []Edge
	for _, e := range p.Edges {
		if e.Enabled && e.To == ep {
			out = append(out, e)
		}
	}
	return out
}
