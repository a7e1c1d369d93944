package graph

import (
	"fmt"
	"sort"

	"github.com/patchc/compiler/internal/registry"
)

// NormalizeResult is the Normalizer's output: the normalized patch (with
// synthetic default-source blocks/edges merged in and edges sorted),
// the ids of the blocks it synthesized, and every structural error found.
type NormalizeResult struct {
	Patch           Patch
	SyntheticBlocks []BlockID
	Errors          []FrontendError
}

// Normalize runs the five ordered rules of spec.md 4.C against p using
// reg to resolve block types and port declarations.
func Normalize(p Patch, reg *registry.Registry) NormalizeResult {
	out := p.Clone()
	var errs []FrontendError

	// Rule 1: reject unknown block types.
	validBlockType := make(map[BlockID]*registry.BlockDef, len(out.Blocks))
	for id, b := range out.Blocks {
		def, ok := reg.Lookup(b.Type)
		if !ok {
			errs = append(errs, FrontendError{
				Kind:    ErrUnknownBlockType,
				Message: fmt.Sprintf("block %q has unregistered type %q", id, b.Type),
				BlockID: id,
			})
			continue
		}
		validBlockType[id] = def
	}

	// Rule 2: reject edges whose endpoints don't resolve.
	var validEdges []Edge
	for _, e := range out.Edges {
		if err := validateEndpoint(out, validBlockType, e.From, true); err != nil {
			errs = append(errs, FrontendError{Kind: ErrDanglingEdge, Message: err.Error(), EdgeID: e.ID, BlockID: e.From.BlockID, PortID: e.From.PortID})
			continue
		}
		if err := validateEndpoint(out, validBlockType, e.To, false); err != nil {
			errs = append(errs, FrontendError{Kind: ErrDanglingEdge, Message: err.Error(), EdgeID: e.ID, BlockID: e.To.BlockID, PortID: e.To.PortID})
			continue
		}
		validEdges = append(validEdges, e)
	}
	out.Edges = validEdges

	// Rule 3: inject default-source blocks for unconnected, exposed,
	// default-bearing input ports.
	var synthetic []BlockID
	for id, def := range validBlockType {
		for _, in := range def.Inputs {
			if !in.ExposedAsPort || in.Default == nil {
				continue
			}
			ep := Endpoint{BlockID: id, PortID: in.ID}
			if len(out.IncomingEnabledEdges(ep)) > 0 {
				continue
			}
			synthID := BlockID(fmt.Sprintf("%s.default.%s", id, in.ID))
			out.Blocks[synthID] = Block{
				ID:          synthID,
				Type:        in.Default.BlockType,
				Params:      in.Default.Params,
				OutputPorts: []string{"out"},
			}
			synthetic = append(synthetic, synthID)
			out.Edges = append(out.Edges, Edge{
				ID:      fmt.Sprintf("%s.default-edge", synthID),
				From:    Endpoint{BlockID: synthID, PortID: "out"},
				To:      ep,
				Enabled: true,
				SortKey: "",
			})
		}
	}

	// Rule 4: sort edges by (to.blockId, sortKey, from.blockId).
	sort.SliceStable(out.Edges, func(i, j int) bool {
		a, b := out.Edges[i], out.Edges[j]
		if a.To.BlockID != b.To.BlockID {
			return a.To.BlockID < b.To.BlockID
		}
		if a.SortKey != b.SortKey {
			return a.SortKey < b.SortKey
		}
		return a.From.BlockID < b.From.BlockID
	})

	// Rule 5: verify exactly one time-root block.
	var timeRoots []BlockID
	for id, def := range validBlockType {
		if def.IsTimeRoot {
			timeRoots = append(timeRoots, id)
		}
	}
	sort.Slice(timeRoots, func(i, j int) bool { return timeRoots[i] < timeRoots[j] })
	switch len(timeRoots) {
	case 0:
		errs = append(errs, FrontendError{Kind: ErrTimeRootMissing, Message: "patch has no time-root block", GraphSpan: nil})
	case 1:
		// fine
	default:
		errs = append(errs, FrontendError{Kind: ErrTimeRootMultiple, Message: fmt.Sprintf("patch has %d time-root blocks", len(timeRoots)), GraphSpan: timeRoots})
	}

	return NormalizeResult{Patch: out, SyntheticBlocks: synthetic, Errors: errs}
}

func validateEndpoint(p Patch, validTypes map[BlockID]*registry.BlockDef, ep Endpoint, isOutput bool) error {
	def, ok := validTypes[ep.BlockID]
	if !ok {
		if _, exists := p.Blocks[ep.BlockID]; !exists {
			return fmt.Errorf("edge references nonexistent block %q", ep.BlockID)
		}
		return fmt.Errorf("edge references block %q of unknown type", ep.BlockID)
	}
	if isOutput {
		if _, ok := def.OutputByID(ep.PortID); !ok {
			return fmt.Errorf("edge references undeclared output port %q on block %q", ep.PortID, ep.BlockID)
		}
		return nil
	}
	if _, ok := def.InputByID(ep.PortID); !ok {
		return fmt.Errorf("edge references undeclared input port %q on block %q", ep.PortID, ep.BlockID)
	}
	return nil
}

// BackendReady reports whether errs contains any structural error that
// would make backend lowering ill-defined (spec.md 4.D). Unit/cardinality
// warnings produced later by inference are not structural and do not
// block by themselves; that check lives in internal/infer.
func BackendReady(errs []FrontendError) bool {
	for _, e := range errs {
		switch e.Kind {
		case ErrUnknownBlockType, ErrDanglingEdge, ErrTimeRootMissing, ErrTimeRootMultiple:
			return false
		}
	}
	return true
}
