package infer

import (
	"fmt"
	"sort"

	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

// Infer runs the five-step algorithm of spec.md 4.D over an
// already-normalized patch: seed port declarations, unify across every
// enabled edge, apply cardinality/broadcast policy per block, and
// detect cycles without a stateful boundary.
func Infer(p graph.Patch, reg *registry.Registry) InferResult {
	inputTypes := map[PortKey]types.CanonicalType{}
	outputTypes := map[PortKey]types.CanonicalType{}
	defs := map[graph.BlockID]*registry.BlockDef{}

	for id, b := range p.Blocks {
		def, ok := reg.Lookup(b.Type)
		if !ok {
			continue // already reported as UnknownBlockType upstream
		}
		defs[id] = def
		g := types.NewVarGen()
		for _, in := range def.Inputs {
			if in.Type == nil {
				continue
			}
			inputTypes[PortKey{id, in.ID}] = in.Type(g)
		}
		for _, out := range def.Outputs {
			if out.Type == nil {
				continue
			}
			outputTypes[PortKey{id, out.ID}] = out.Type(g)
		}
	}

	sub := types.NewSubstitution()
	var errs []InferError

	for _, e := range p.Edges {
		if !e.Enabled {
			continue
		}
		fromType, ok1 := outputTypes[PortKey{e.From.BlockID, e.From.PortID}]
		toType, ok2 := inputTypes[PortKey{e.To.BlockID, e.To.PortID}]
		if !ok1 || !ok2 {
			continue // dangling edges were already rejected upstream
		}
		if err := sub.UnifyContent(fromType, toType); err != nil {
			errs = append(errs, mapUnifyError(err, e))
		}
	}

	resolve := func(t types.CanonicalType) types.CanonicalType {
		if rt, err := sub.Apply(t); err == nil {
			return rt
		}
		return t
	}
	for k, t := range inputTypes {
		inputTypes[k] = resolve(t)
	}
	for k, t := range outputTypes {
		outputTypes[k] = resolve(t)
	}

	for _, id := range sortedBlockIDs(defs) {
		def := defs[id]
		var boundExtents []types.Extent
		var boundPorts []string
		for _, in := range def.Inputs {
			t, ok := inputTypes[PortKey{id, in.ID}]
			if !ok {
				continue
			}
			boundExtents = append(boundExtents, t.Extent)
			boundPorts = append(boundPorts, in.ID)
		}

		switch def.CardinalityPolicy.Mode {
		case registry.CardinalityPreserve:
			if len(boundExtents) == 0 {
				continue // no inputs to join: the output's own template extent stands
			}
			joined, joinErrs := joinExtents(id, boundPorts, boundExtents, def.CardinalityPolicy)
			errs = append(errs, joinErrs...)
			if len(joinErrs) == 0 {
				for _, out := range def.Outputs {
					k := PortKey{id, out.ID}
					t, ok := outputTypes[k]
					if !ok {
						continue
					}
					t.Extent = joined
					outputTypes[k] = t
				}
			}
		case registry.CardinalityOverride:
			for i, ext := range boundExtents {
				if def.CardinalityPolicy.LaneCoupling == types.LaneCoupled &&
					ext.Cardinality == types.CardinalityMany && ext.Instance == "" {
					errs = append(errs, InferError{
						Kind:    ErrLaneCoupledDisallowed,
						Message: fmt.Sprintf("block %q is lane-coupled but input %q has no concrete instance", id, boundPorts[i]),
						BlockID: id,
						PortID:  boundPorts[i],
					})
				}
			}
		}
	}

	adj := map[graph.BlockID][]graph.BlockID{}
	var nodes []graph.BlockID
	for id := range p.Blocks {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	for _, e := range p.Edges {
		if !e.Enabled {
			continue
		}
		adj[e.From.BlockID] = append(adj[e.From.BlockID], e.To.BlockID)
	}
	for _, comp := range tarjanSCCs(nodes, adj) {
		if len(comp) <= 1 {
			continue
		}
		legal := false
		for _, id := range comp {
			if def, ok := defs[id]; ok && def.Capability == registry.CapabilityState {
				legal = true
				break
			}
		}
		if !legal {
			span := append([]graph.BlockID(nil), comp...)
			sort.Slice(span, func(i, j int) bool { return span[i] < span[j] })
			errs = append(errs, InferError{
				Kind:      ErrCycleDetected,
				Message:   "cycle has no stateful boundary block",
				GraphSpan: span,
			})
		}
	}

	snapshot := &Snapshot{PortTypes: map[PortKey]types.CanonicalType{}}
	for k, t := range inputTypes {
		snapshot.PortTypes[k] = t
	}
	for k, t := range outputTypes {
		snapshot.PortTypes[k] = t
	}

	return InferResult{Errors: errs, BackendReady: len(errs) == 0, Snapshot: snapshot}
}

func sortedBlockIDs(defs map[graph.BlockID]*registry.BlockDef) []graph.BlockID {
	ids := make([]graph.BlockID, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func mapUnifyError(err error, e graph.Edge) InferError {
	kind := ErrTypeMismatch
	if ue, ok := err.(*types.UnifyError); ok {
		switch ue.Kind {
		case types.UnitConflict:
			kind = ErrUnitMismatch
		case types.CardinalityConflict:
			kind = ErrInstanceMismatch
		case types.TemporalityConflict, types.PayloadConflict:
			kind = ErrTypeMismatch
		}
	}
	return InferError{
		Kind:    kind,
		Message: err.Error(),
		EdgeID:  e.ID,
		BlockID: e.To.BlockID,
		PortID:  e.To.PortID,
	}
}

// joinExtents computes the join of a preserve-mode block's bound input
// extents (spec.md 4.D rule 3), reporting InstanceMismatch when two
// field inputs disagree on instance and ImplicitBroadcastDisallowed
// when a signal and a field meet without the block's broadcast policy
// permitting it.
func joinExtents(id graph.BlockID, ports []string, exts []types.Extent, policy registry.CardinalityPolicy) (types.Extent, []InferError) {
	if len(exts) == 0 {
		return types.ExtentOne(), nil
	}
	joined := exts[0]
	var errs []InferError
	for i := 1; i < len(exts); i++ {
		ext := exts[i]
		switch {
		case joined.Cardinality == ext.Cardinality:
			if joined.Cardinality == types.CardinalityMany && joined.Instance != ext.Instance {
				errs = append(errs, InferError{
					Kind:    ErrInstanceMismatch,
					Message: fmt.Sprintf("block %q: input %q instance %q disagrees with %q", id, ports[i], ext.Instance, joined.Instance),
					BlockID: id,
					PortID:  ports[i],
				})
			}
		case policy.BroadcastPolicy == registry.BroadcastAllowZipSig:
			if ext.Cardinality == types.CardinalityMany {
				joined = ext
			}
		default:
			errs = append(errs, InferError{
				Kind:    ErrImplicitBroadcastDisallowed,
				Message: fmt.Sprintf("block %q: input %q mixes signal and field cardinality without an explicit broadcast", id, ports[i]),
				BlockID: id,
				PortID:  ports[i],
			})
		}
	}
	if policy.LaneCoupling == types.LaneCoupled && joined.Cardinality == types.CardinalityMany && joined.Instance == "" {
		errs = append(errs, InferError{
			Kind:    ErrLaneCoupledDisallowed,
			Message: fmt.Sprintf("block %q is lane-coupled but joined input has no concrete instance", id),
			BlockID: id,
		})
	}
	return joined, errs
}
