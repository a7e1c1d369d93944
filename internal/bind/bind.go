package bind

import (
	"fmt"
	"sort"

	"github.com/patchc/compiler/internal/ir"
)

// Bind allocates final slots for every state declaration and slot
// request an IR build produced, following the determinism rules of
// spec.md 4.F:
//  1. stateDecls sorted by key, existing slots reused before new ones
//     are allocated.
//  2. slotRequests (and any pure block's unslotted output) sorted by
//     "blockId.portId", allocated after state.
//  3. stateMap copied into exprPatches so every StateRead node resolves.
//  4. every stepRequest's stateKey validated against the final stateMap.
func Bind(in BindInputs) BindingResult {
	next := nextFreeSlot(in.Build)
	alloc := func() int {
		id := next
		next++
		return id
	}

	stateMap := map[string]int{}
	stateKeys := make([]string, 0, len(in.Build.StateDecls))
	for k := range in.Build.StateDecls {
		stateKeys = append(stateKeys, k)
	}
	sort.Strings(stateKeys)
	for _, k := range stateKeys {
		if in.ExistingState != nil {
			if slot, ok := in.ExistingState[k]; ok {
				stateMap[k] = slot
				continue
			}
		}
		stateMap[k] = alloc()
	}

	wantSet := map[string]bool{}
	var wantLabels []string
	addWant := func(label string) {
		if !wantSet[label] {
			wantSet[label] = true
			wantLabels = append(wantLabels, label)
		}
	}
	for blockID, res := range in.Build.ByBlock {
		if res.Effects != nil {
			for _, req := range res.Effects.SlotRequests {
				addWant(fmt.Sprintf("%s.%s", blockID, req.PortID))
			}
		}
		for portID, ref := range res.OutputsByID {
			if ref.Slot == nil {
				addWant(fmt.Sprintf("%s.%s", blockID, portID))
			}
		}
	}
	sort.Strings(wantLabels)
	slotMap := map[string]int{}
	for _, label := range wantLabels {
		slotMap[label] = alloc()
	}

	boundOutputs := map[string]int{}
	for blockID, res := range in.Build.ByBlock {
		for portID, ref := range res.OutputsByID {
			label := fmt.Sprintf("%s.%s", blockID, portID)
			if ref.Slot != nil {
				boundOutputs[label] = *ref.Slot
				continue
			}
			if slot, ok := slotMap[label]; ok {
				boundOutputs[label] = slot
			}
		}
	}

	var diags []Diagnostic
	for blockID, res := range in.Build.ByBlock {
		if res.Effects == nil {
			continue
		}
		for _, step := range res.Effects.StepRequests {
			if step.StateKey == "" {
				continue
			}
			if _, ok := stateMap[step.StateKey]; !ok {
				diags = append(diags, Diagnostic{
					BlockID:  blockID,
					StateKey: step.StateKey,
					Message:  fmt.Sprintf("stepRequest references unknown stateKey %q", step.StateKey),
				})
			}
		}
	}
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].BlockID != diags[j].BlockID {
			return diags[i].BlockID < diags[j].BlockID
		}
		return diags[i].StateKey < diags[j].StateKey
	})

	exprPatches := map[ir.ExprID]int{}
	for _, node := range in.Build.Graph.Nodes {
		if node.Kind != ir.ExprStateRead {
			continue
		}
		if slot, ok := stateMap[node.StateKey]; ok {
			exprPatches[node.ID] = slot
		}
	}

	return BindingResult{
		StateMap:     stateMap,
		SlotMap:      slotMap,
		ExprPatches:  exprPatches,
		BoundOutputs: boundOutputs,
		Diagnostics:  diags,
	}
}

// nextFreeSlot finds one past the highest slot number a block already
// claimed for itself by setting ValueRef.Slot explicitly (spec.md 4.E:
// "impure/state/render blocks must either supply slotRequests or set
// the ref.slot explicitly"), so the binder's own lexical allocation
// never collides with a self-assigned slot.
func nextFreeSlot(b *ir.BuildResult) int {
	max := -1
	for _, res := range b.ByBlock {
		for _, ref := range res.OutputsByID {
			if ref.Slot != nil && *ref.Slot > max {
				max = *ref.Slot
			}
		}
		if res.Effects == nil {
			continue
		}
		for _, step := range res.Effects.StepRequests {
			if step.Value.Slot != nil && *step.Value.Slot > max {
				max = *step.Value.Slot
			}
			if step.Field.Slot != nil && *step.Field.Slot > max {
				max = *step.Field.Slot
			}
			if step.Target.Slot != nil && *step.Target.Slot > max {
				max = *step.Target.Slot
			}
		}
	}
	return max + 1
}
