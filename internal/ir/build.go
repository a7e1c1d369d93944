package ir

import (
	"fmt"

	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/infer"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

// BuildResult is the IR Builder's full output: the shared expression
// graph, every block's lowering result, and the state declarations
// accumulated via AllocStateSlot across the whole compile.
type BuildResult struct {
	Graph      *Graph
	ByBlock    map[graph.BlockID]registry.LowerResult
	StateDecls map[string]registry.StateDecl
}

// Build runs every block's Lower closure exactly once, in the given
// topological order (spec.md 4.E), wiring each input port to the
// ValueRef its upstream edge produced.
func Build(p graph.Patch, reg *registry.Registry, snapshot *infer.Snapshot, order []graph.BlockID) (*BuildResult, error) {
	sh := newShared()
	outputs := map[infer.PortKey]registry.ValueRef{}
	byBlock := map[graph.BlockID]registry.LowerResult{}

	incoming := map[infer.PortKey]graph.Endpoint{}
	for _, e := range p.Edges {
		if !e.Enabled {
			continue
		}
		incoming[infer.PortKey{Block: e.To.BlockID, Port: e.To.PortID}] = e.From
	}

	for _, id := range order {
		blk := p.Blocks[id]
		def, ok := reg.Lookup(blk.Type)
		if !ok {
			return nil, fmt.Errorf("ir: block %q has unregistered type %q", id, blk.Type)
		}

		inputs := map[string]registry.ValueRef{}
		for _, in := range def.Inputs {
			from, ok := incoming[infer.PortKey{Block: id, Port: in.ID}]
			if !ok {
				continue
			}
			ref, ok := outputs[infer.PortKey{Block: from.BlockID, Port: from.PortID}]
			if !ok {
				return nil, fmt.Errorf("ir: block %q input %q has no upstream value; topo order was violated", id, in.ID)
			}
			inputs[in.ID] = ref
		}

		outTypes := map[string]types.CanonicalType{}
		for _, out := range def.Outputs {
			if t, ok := snapshot.PortTypes[infer.PortKey{Block: id, Port: out.ID}]; ok {
				outTypes[out.ID] = t
			}
		}

		b := NewBuilder(sh, blk.Type, string(id), inputs, outTypes, blk.Params)
		if def.Lower == nil {
			return nil, fmt.Errorf("ir: block type %q has no lower closure", blk.Type)
		}
		res, err := def.Lower(b)
		if err != nil {
			return nil, fmt.Errorf("ir: lowering block %q: %w", id, err)
		}
		for portID, ref := range res.OutputsByID {
			outputs[infer.PortKey{Block: id, Port: portID}] = ref
		}
		byBlock[id] = res
	}

	return &BuildResult{Graph: sh.graph, ByBlock: byBlock, StateDecls: sh.stateDecl}, nil
}
