// Package continuity implements spec.md 4.K: preserving program state
// across a successful recompile by keying migration on StableStateId
// rather than slot position, and reconciling the clock's phase offset
// when the time model's period changes.
package continuity

import (
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/schedule"
)

// ProgramState is the flat, per-compile state-slot array a CompiledProgram
// addresses by slot number (schedule.StateMapping.Slot), analogous to the
// teacher's coreState.Registers flat register file (core/emu.go).
type ProgramState struct {
	Slots []float64
}

// NewProgramState allocates a ProgramState sized for prog's state slots,
// seeded from each StateDecl's InitialValue where one is given and
// numeric, zero otherwise.
func NewProgramState(prog *schedule.CompiledProgram, decls map[string]registry.StateDecl) ProgramState {
	state := ProgramState{Slots: make([]float64, prog.Schedule.StateSlotCount)}
	for _, m := range prog.Schedule.StateMappings {
		decl, ok := decls[m.StableStateID]
		if !ok {
			continue
		}
		v, ok := seedValue(decl.InitialValue)
		if !ok {
			continue
		}
		for i := 0; i < m.Stride && m.Slot+i < len(state.Slots); i++ {
			state.Slots[m.Slot+i] = v
		}
	}
	return state
}

func seedValue(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
