package diag

import (
	"fmt"
	"sort"

	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/registry"
)

// primaryOutputNames are the output port ids considered "the" output of
// a block for the unused-output warning (spec.md 4.I).
var primaryOutputNames = map[string]bool{"out": true, "value": true, "output": true}

// RunAuthoringValidators runs the fast, compile-independent checks
// spec.md 4.I requires on every GraphCommitted: they must stay cheap
// enough to run on every keystroke (budget: under 10ms for 50 blocks),
// so unlike the Normalizer/Inference Engine they do a single linear
// pass over blocks and edges rather than a full compile.
func RunAuthoringValidators(p graph.Patch, reg *registry.Registry, revision int) []Diagnostic {
	var out []Diagnostic
	out = append(out, checkTimeRoot(p, reg, revision)...)
	out = append(out, checkDisconnectedBlocks(p, reg, revision)...)
	out = append(out, checkUnusedOutputs(p, reg, revision)...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func checkTimeRoot(p graph.Patch, reg *registry.Registry, revision int) []Diagnostic {
	var roots []graph.BlockID
	for id, b := range p.Blocks {
		def, ok := reg.Lookup(b.Type)
		if ok && def.IsTimeRoot {
			roots = append(roots, id)
		}
	}
	if len(roots) == 1 {
		return nil
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	msg := "patch has no time-root block"
	if len(roots) > 1 {
		msg = fmt.Sprintf("patch has %d time-root blocks", len(roots))
	}
	return []Diagnostic{NewDiagnostic(CodeTimeRootMissing, msg, TargetRef{Kind: TargetGraphSpan, GraphSpan: roots}, revision, "")}
}

func checkDisconnectedBlocks(p graph.Patch, reg *registry.Registry, revision int) []Diagnostic {
	touched := map[graph.BlockID]bool{}
	for _, e := range p.Edges {
		if !e.Enabled {
			continue
		}
		touched[e.From.BlockID] = true
		touched[e.To.BlockID] = true
	}

	var ids []graph.BlockID
	for id := range p.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []Diagnostic
	for _, id := range ids {
		def, ok := reg.Lookup(p.Blocks[id].Type)
		if ok && def.IsTimeRoot {
			continue
		}
		if touched[id] {
			continue
		}
		out = append(out, NewDiagnostic(CodeGraphDisconnectedBlock, fmt.Sprintf("block %q has no connected edges", id), TargetRef{Kind: TargetBlock, BlockID: id}, revision, ""))
	}
	return out
}

func checkUnusedOutputs(p graph.Patch, reg *registry.Registry, revision int) []Diagnostic {
	fedFrom := map[graph.Endpoint]bool{}
	for _, e := range p.Edges {
		if e.Enabled {
			fedFrom[e.From] = true
		}
	}

	var ids []graph.BlockID
	for id := range p.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []Diagnostic
	for _, id := range ids {
		def, ok := reg.Lookup(p.Blocks[id].Type)
		if !ok {
			continue
		}
		for _, o := range def.Outputs {
			if !primaryOutputNames[o.ID] {
				continue
			}
			ep := graph.Endpoint{BlockID: id, PortID: o.ID}
			if fedFrom[ep] {
				continue
			}
			out = append(out, NewDiagnostic(CodeGraphUnusedOutput, fmt.Sprintf("block %q's primary output %q is unused", id, o.ID), TargetRef{Kind: TargetPort, BlockID: id, PortID: o.ID}, revision, ""))
		}
	}
	return out
}
