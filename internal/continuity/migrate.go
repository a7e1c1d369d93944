package continuity

import (
	"github.com/patchc/compiler/internal/diag"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/schedule"
	"github.com/patchc/compiler/internal/types"
)

// Migrate implements spec.md 4.K: given the previous compiled program
// and its live state, it builds a fresh ProgramState for newProgram and
// copies forward every StableStateId the two programs share. A
// primitive state's slot is copied directly; a field (per-lane) state
// is copied lane by lane through the Store's lane mapping. Any id whose
// stride changed falls back to its declared initial value and surfaces
// a W_FLAG_DOWNGRADED diagnostic rather than crashing.
//
// old and oldState may be nil/zero for a program's first compile, in
// which case newProgram's state is simply its seeded initial values.
func Migrate(store *Store, old *schedule.CompiledProgram, oldState ProgramState, newProgram *schedule.CompiledProgram, decls map[string]registry.StateDecl, revision int) (ProgramState, []diag.Diagnostic) {
	newState := NewProgramState(newProgram, decls)
	instanceSet := activeInstances(newProgram)

	if old == nil {
		store.Prune(instanceSet)
		return newState, nil
	}

	oldByID := make(map[string]schedule.StateMapping, len(old.Schedule.StateMappings))
	for _, m := range old.Schedule.StateMappings {
		oldByID[m.StableStateID] = m
	}

	var diags []diag.Diagnostic
	for _, nm := range newProgram.Schedule.StateMappings {
		om, ok := oldByID[nm.StableStateID]
		if !ok {
			continue
		}
		if om.Stride != nm.Stride {
			diags = append(diags, downgraded(nm.StableStateID, revision))
			continue
		}
		if nm.IsField {
			migrateField(store, old, newProgram, oldState, newState, om, nm)
			continue
		}
		migratePrimitive(oldState, newState, om, nm)
	}

	store.Prune(instanceSet)
	return newState, diags
}

func migratePrimitive(oldState, newState ProgramState, om, nm schedule.StateMapping) {
	for i := 0; i < nm.Stride; i++ {
		src, dst := om.Slot+i, nm.Slot+i
		if src < 0 || src >= len(oldState.Slots) || dst < 0 || dst >= len(newState.Slots) {
			continue
		}
		newState.Slots[dst] = oldState.Slots[src]
	}
}

func migrateField(store *Store, old, newProgram *schedule.CompiledProgram, oldState, newState ProgramState, om, nm schedule.StateMapping) {
	oldDecl, oldOK := old.Instances[om.InstanceID]
	newDecl, newOK := newProgram.Instances[nm.InstanceID]
	if !oldOK || !newOK {
		return
	}
	mapping := store.LaneMapping(nm.InstanceID, oldDecl.Count, newDecl.Count)
	for oldLane, newLane := range mapping.OldToNew {
		if newLane < 0 {
			continue
		}
		for i := 0; i < nm.Stride; i++ {
			src := om.Slot + oldLane*om.Stride + i
			dst := nm.Slot + newLane*nm.Stride + i
			if src < 0 || src >= len(oldState.Slots) || dst < 0 || dst >= len(newState.Slots) {
				continue
			}
			newState.Slots[dst] = oldState.Slots[src]
		}
	}
}

func activeInstances(prog *schedule.CompiledProgram) map[types.InstanceRef]bool {
	active := make(map[types.InstanceRef]bool, len(prog.Instances))
	for id := range prog.Instances {
		active[id] = true
	}
	return active
}

func downgraded(stableStateID string, revision int) diag.Diagnostic {
	return diag.NewDiagnostic(
		diag.CodeFlagDowngraded,
		"state layout changed for "+stableStateID+"; reset to initial value",
		diag.TargetRef{Kind: diag.TargetGraphSpan},
		revision,
		stableStateID,
	)
}
