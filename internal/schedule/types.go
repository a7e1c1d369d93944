// Package schedule implements the Scheduler / Program Assembler
// (spec.md 4.G): it linearizes the Binder's steps into a deterministic
// order, gathers instance declarations and state mappings, derives the
// time model from the patch's TimeRoot block, and assembles the
// CompiledProgram the Fast-path Patcher (internal/hotpatch) and runtime
// consume.
//
// Grounded on the teacher's core/program.go Program/EntryBlock/
// InstructionGroup nesting (adapted into ScheduleIR/Step) and
// config/config.go's DeviceBuilder.Build device-assembly pattern
// (adapted into Assemble).
package schedule

import (
	"github.com/patchc/compiler/internal/bind"
	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/ir"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

// InstanceDecl records one field instance a CardinalityOverride block
// introduced, with enough sizing info for the hotpatcher to grow or
// shrink it without a full recompile (spec.md 4.H).
type InstanceDecl struct {
	InstanceID types.InstanceRef
	Count      int
	MaxCount   int
	Stride     int
}

// StateMapping links a StableStateId to its bound slot. IsField
// distinguishes a per-lane field (continuity must migrate it lane by
// lane) from a primitive scalar.
type StateMapping struct {
	StableStateID string
	Slot          int
	Stride        int
	InstanceID    types.InstanceRef
	IsField       bool
}

// TimeModel is derived from the patch's (single) TimeRoot block
// instance: the tick period, the rails it exposes, and the epoch a
// continuity reset should zero.
type TimeModel struct {
	PeriodMs   float64
	Rails      []registry.TimeRail
	ResetEpoch int64
}

// ConstantProvenance records that a bound output's value is a pure,
// input-free expression chain of Const nodes, so the Fast-path Patcher
// may rewrite it in place (spec.md 4.H) without a full recompile.
type ConstantProvenance struct {
	PayloadKind      types.PayloadKind
	ComponentExprIDs []ir.ExprID
}

// SlotMeta names one allocated slot: its type (zero value for a plain
// state slot with no port type of its own) and the debug label a tool
// or log line should show for it.
type SlotMeta struct {
	Slot       int
	DebugLabel string
	Type       types.CanonicalType
	IsState    bool
}

// ScheduleIR is the linearized, pre-assembly form of a compile: the
// topological block order, the mechanically-resolved steps, and the
// bookkeeping tables the rest of CompiledProgram is built from.
type ScheduleIR struct {
	Order          []graph.BlockID
	Steps          []bind.Step
	Instances      map[types.InstanceRef]InstanceDecl
	StateMappings  []StateMapping
	TimeModel      TimeModel
	StateSlotCount int
	EventSlotCount int
	EventCount     int
}

// CompiledProgram is the Scheduler's output (spec.md 4.G): everything
// the runtime needs to execute a tick, plus the provenance maps the
// Fast-path Patcher consults before deciding whether a re-author can
// skip a full recompile.
type CompiledProgram struct {
	SlotMeta   []SlotMeta
	ValueExprs *ir.Graph
	Schedule   *ScheduleIR
	Instances  map[types.InstanceRef]InstanceDecl

	// ConstantProvenance is keyed by "blockId.portId" (spec.md 4.G:
	// constantProvenance: Map<"blockId:portId", {payloadKind,
	// componentExprIds[]}>).
	ConstantProvenance map[string]ConstantProvenance
	// InstanceCountProvenance is keyed by the "blockId.portId" label of
	// the value feeding a CardinalityOverride block's count input,
	// mapping to the instance it sizes (spec.md 4.G: instanceCountProvenance:
	// Map<"blockId:portId", {instanceId}>).
	InstanceCountProvenance map[string]types.InstanceRef
	// DebugIndex maps every "blockId.portId"/stateKey debug label to its
	// slot, the flattened form of SlotMeta tooling can look up by name.
	DebugIndex map[string]int
}
