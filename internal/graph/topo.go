package graph

import (
	"fmt"
	"sort"

	"github.com/patchc/compiler/internal/registry"
)

// TopoOrder returns a deterministic topological order of p's blocks for
// IR building (spec.md 4.E), using Kahn's algorithm with a lexical
// tie-break so a fixed patch and registry always produce the same
// order (spec.md 5 determinism guarantee).
//
// An edge into a stateful block's input is not counted as a dependency
// of that block's output: a capability=state block's output comes from
// a stateRead of the *previous* tick, never from this tick's input
// (that input instead becomes a stepRequest, spec.md 4.F). Excluding
// those edges here is what lets a feedback loop through a state block
// appear acyclic to the IR builder, without running the Binder's full
// two-phase SCC protocol at this layer.
func TopoOrder(p Patch, reg *registry.Registry) ([]BlockID, error) {
	indeg := map[BlockID]int{}
	adj := map[BlockID][]BlockID{}
	for id := range p.Blocks {
		indeg[id] = 0
	}
	for _, e := range p.Edges {
		if !e.Enabled {
			continue
		}
		if def, ok := defOf(p, reg, e.To.BlockID); ok && def.Capability == registry.CapabilityState {
			continue
		}
		adj[e.From.BlockID] = append(adj[e.From.BlockID], e.To.BlockID)
		indeg[e.To.BlockID]++
	}

	var ready []BlockID
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}

	var order []BlockID
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, m := range adj[n] {
			indeg[m]--
			if indeg[m] == 0 {
				ready = append(ready, m)
			}
		}
	}

	if len(order) != len(p.Blocks) {
		return nil, fmt.Errorf("graph: topo order reached %d of %d blocks; a non-stateful cycle remains", len(order), len(p.Blocks))
	}
	return order, nil
}

func defOf(p Patch, reg *registry.Registry, id BlockID) (*registry.BlockDef, bool) {
	b, ok := p.Blocks[id]
	if !ok {
		return nil, false
	}
	return reg.Lookup(b.Type)
}
