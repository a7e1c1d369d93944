package bind

import (
	"fmt"
	"sort"

	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

// Step is one mechanically-resolved schedule step: a StepRequest with
// every ValueRef replaced by the slot BindingResult assigned it. The
// scheduler (spec.md 4.G) linearizes these; nothing here decides order.
type Step struct {
	BlockID    graph.BlockID
	Kind       registry.StepKind
	StateSlot  int
	ValueSlot  int
	FieldSlot  int
	InstanceID types.InstanceRef
	TargetSlot int
}

const noSlot = -1

// ApplyBinding executes result's bindings against in's step requests,
// producing the mechanical Step list the scheduler assembles into a
// CompiledProgram. It performs no branching decisions of its own: a
// step whose StateKey or ValueRef didn't resolve simply carries noSlot,
// and the caller (scheduler) is responsible for treating that as a
// build-time invariant violation rather than bind.Bind deciding what it
// means.
func ApplyBinding(in BindInputs, result BindingResult) []Step {
	var blockIDs []graph.BlockID
	for id := range in.Build.ByBlock {
		blockIDs = append(blockIDs, id)
	}
	sort.Slice(blockIDs, func(i, j int) bool { return blockIDs[i] < blockIDs[j] })

	var steps []Step
	for _, id := range blockIDs {
		res := in.Build.ByBlock[id]
		if res.Effects == nil {
			continue
		}
		for _, req := range res.Effects.StepRequests {
			step := Step{
				BlockID:    id,
				Kind:       req.Kind,
				InstanceID: req.InstanceID,
				StateSlot:  noSlot,
				ValueSlot:  noSlot,
				FieldSlot:  noSlot,
				TargetSlot: noSlot,
			}
			if req.StateKey != "" {
				if slot, ok := result.StateMap[req.StateKey]; ok {
					step.StateSlot = slot
				}
			}
			if slot := resolveSlot(req.Value); slot != noSlot {
				step.ValueSlot = slot
			}
			if slot := resolveSlot(req.Field); slot != noSlot {
				step.FieldSlot = slot
			}
			if slot := resolveSlot(req.Target); slot != noSlot {
				step.TargetSlot = slot
			}
			steps = append(steps, step)
		}
	}
	return steps
}

func resolveSlot(ref registry.ValueRef) int {
	if ref.Slot != nil {
		return *ref.Slot
	}
	return noSlot
}

// DebugLabel formats the "blockId.portId" key BoundOutputs/SlotMap are
// keyed by, so callers never have to hand-format it themselves.
func DebugLabel(blockID graph.BlockID, portID string) string {
	return fmt.Sprintf("%s.%s", blockID, portID)
}
