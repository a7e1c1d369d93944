// Package bind implements the Binder (spec.md 4.F): a pure,
// deterministic allocation pass over the state declarations, slot
// requests, and step requests an IR build produced. It makes no
// side-effecting decisions of its own; every choice is a sort-then-
// assign over stable keys, so the same build always binds the same way.
package bind

import (
	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/ir"
)

// Diagnostic is raised when a stepRequest names a stateKey the binder
// cannot resolve (spec.md 4.F step 4) — reported rather than panicked,
// since a single bad block should not abort the whole bind pass.
type Diagnostic struct {
	BlockID  graph.BlockID
	StateKey string
	Message  string
}

// BindInputs is the Binder's input (spec.md 4.F).
type BindInputs struct {
	Build *ir.BuildResult
	// ExistingState carries forward StableStateId -> slot bindings from
	// a prior compile (continuity, spec.md 4.K) or from an earlier SCC
	// phase-1 pass (spec.md 4.F) so phase-2 re-lowering resolves the
	// same stateRead references to the same slots.
	ExistingState map[string]int
}

// BindingResult is the Binder's output (spec.md 4.F).
type BindingResult struct {
	// StateMap maps a StableStateId to its bound slot.
	StateMap map[string]int
	// SlotMap maps a "blockId.portId" debug label to its bound slot,
	// for every explicit slotRequest and every output the binder
	// allocates on a block's behalf (an output with no Slot of its own).
	SlotMap map[string]int
	// ExprPatches maps a StateRead expr node id to the slot its
	// StateKey resolved to, so the IR consumer can stop threading
	// StateKey strings and just read a slot number.
	ExprPatches map[ir.ExprID]int
	// BoundOutputs maps a "blockId.portId" debug label to the final
	// slot carrying that output's value, whether the block requested
	// it explicitly or the binder auto-allocated it on a pure block's
	// behalf.
	BoundOutputs map[string]int
	Diagnostics  []Diagnostic
}
