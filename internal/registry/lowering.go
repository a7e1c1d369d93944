package registry

import (
	"fmt"

	"github.com/patchc/compiler/internal/types"
)

// ValueRef is the opaque handle a lowering closure receives for an input
// and must produce for each output. It names a node in the IR builder's
// value-expression DAG (by id) and, once allocated, the value slot that
// node will live in. The IR builder owns the actual DAG; this package
// only sees the handle.
type ValueRef struct {
	ExprID int
	Type   types.CanonicalType
	// Slot is set when the block itself allocated (or was assigned) a
	// slot explicitly; nil means "the orchestrator may allocate one on
	// this block's behalf" (legal only for CapabilityPure / LoweringPure
	// blocks).
	Slot *int
}

// OpCode enumerates the primitive value-expression operators the IR
// builder can emit. Kept here (rather than in the ir package) because
// block Lower closures, which live beside their registry.BlockDef, need
// to name opcodes without importing ir (which in turn depends on
// registry for BlockDef/ValueRef).
type OpCode int

const (
	OpAdd OpCode = iota
	OpSub
	OpMul
	OpDiv
	OpWrap01
	OpCast
	OpGain
	OpReduceSum
	OpEventNever
)

func (o OpCode) String() string {
	switch o {
	case OpAdd:
		return "Add"
	case OpSub:
		return "Sub"
	case OpMul:
		return "Mul"
	case OpDiv:
		return "Div"
	case OpWrap01:
		return "Wrap01"
	case OpCast:
		return "Cast"
	case OpGain:
		return "Gain"
	case OpReduceSum:
		return "ReduceSum"
	case OpEventNever:
		return "EventNever"
	default:
		return "Unknown"
	}
}

// TimeRail names one of the time model's output rails.
type TimeRail string

const (
	RailPhaseA TimeRail = "phaseA"
	RailDt     TimeRail = "dt"
)

// StateDecl declares one piece of persistent state a block instance
// needs. Key is a StableStateId (spec.md 3): deterministic across
// recompiles so continuity can migrate it by identity.
type StateDecl struct {
	Key          string
	InitialValue interface{}
	Stride       int
	InstanceID   types.InstanceRef
	LaneCount    int
}

// SlotRequest asks the binder to allocate a typed value slot for a
// given port, keyed by "blockId.portId" for its debug label.
type SlotRequest struct {
	PortID string
	Type   types.CanonicalType
}

// StepKind enumerates the step-request shapes a block's lowering can
// emit (spec.md 3 LowerEffects.stepRequests).
type StepKind int

const (
	StepStateWrite StepKind = iota
	StepFieldStateWrite
	StepMaterialize
	StepContinuityMapBuild
	StepContinuityApply
)

// StepRequest is one entry of a block's requested schedule steps. Only
// the fields relevant to Kind are meaningful; this mirrors the
// teacher's Operation/OperandList sum-by-convention shape
// (core/program.go) rather than a Go-level tagged union, since the
// fields are cheap and the set is small and closed.
type StepRequest struct {
	Kind       StepKind
	StateKey   string
	Value      ValueRef
	Field      ValueRef
	InstanceID types.InstanceRef
	Target     ValueRef
}

// InstanceDecl is declared by an Array-like (cardinality=override)
// block to introduce a new field instance (spec.md 4.G). MaxCount is a
// compile-time upper bound used to size storage ahead of any
// fast-path instance-count patch (spec.md 4.H).
type InstanceDecl struct {
	InstanceID types.InstanceRef
	Count      int
	MaxCount   int
	Stride     int
}

// LowerEffects is the side-channel output of a block's lowering: state
// it declares, slots it explicitly requests, instances it introduces,
// and steps it wants the schedule to execute.
type LowerEffects struct {
	StateDecls    []StateDecl
	SlotRequests  []SlotRequest
	InstanceDecls []InstanceDecl
	StepRequests  []StepRequest
}

// LowerResult is what a Lower closure returns: the resolved value for
// each declared output port, plus optional effects.
type LowerResult struct {
	OutputsByID map[string]ValueRef
	Effects     *LowerEffects
}

// LowerContext is handed to a block's Lower closure. It exposes the
// block's resolved inputs/outputs and a builder for emitting IR nodes
// and requesting slots/state, per spec.md 4.E.
type LowerContext interface {
	// InputByID returns the resolved ValueRef for an input port id;
	// false if the port had no incoming value (should not happen for a
	// fully normalized patch, since the Normalizer injects defaults).
	InputByID(portID string) (ValueRef, bool)
	// OutType returns the post-inference resolved type for an output
	// port id.
	OutType(portID string) types.CanonicalType
	// BlockType is this block instance's registered type name.
	BlockType() string
	// InstanceID is this block's stable identity path, used to derive
	// StableStateIds and slot debug labels.
	InstanceID() string
	// Param returns the authored value of one of this block instance's
	// configuration params (graph.Block.Params), for the blocks whose
	// literal content lowering needs isn't carried on a port at all
	// (e.g. Const's value, Phasor's initialPhase).
	Param(key string) (interface{}, bool)

	Constant(value interface{}, t types.CanonicalType) ValueRef
	Op(code OpCode, t types.CanonicalType, inputs ...ValueRef) ValueRef
	Time(rail TimeRail, t types.CanonicalType) ValueRef
	StateRead(key string, t types.CanonicalType) ValueRef
	EventNever(t types.CanonicalType) ValueRef

	// AllocTypedSlot lets an impure block allocate a slot explicitly
	// instead of letting the orchestrator do it.
	AllocTypedSlot(t types.CanonicalType, debugLabel string) int
	// AllocStateSlot/FindStateSlot support the SCC two-phase binding
	// protocol (spec.md 4.F): phase 1 allocates, phase 2 looks up what
	// phase 1 (of an earlier or the same pass) already allocated.
	AllocStateSlot(key string, decl StateDecl) int
	FindStateSlot(key string) (int, bool)

	// Sandbox returns a subordinate context scoped to a nested instance
	// path, for composite/macro expansion (spec.md 4.E LowerSandbox).
	Sandbox(instanceSuffix string) LowerContext
}

// LowerFunc is the signature every BlockDef.Lower closure implements.
type LowerFunc func(ctx LowerContext) (LowerResult, error)

// LoweringError is raised by a Lower closure (e.g. via RequireInst) to
// abort the current compile; the orchestrator converts it to a
// Diagnostic (spec.md 4.J).
type LoweringError struct {
	BlockType string
	Message   string
}

func (e *LoweringError) Error() string {
	return fmt.Sprintf("lowering error in %s: %s", e.BlockType, e.Message)
}

// RequireInst asserts that t is fully resolved (spec.md 4.A
// requireInst), returning a *LoweringError tagged with blockType if not.
func RequireInst(blockType string, t types.CanonicalType, name string) error {
	if err := types.RequireResolved(t, name); err != nil {
		return &LoweringError{BlockType: blockType, Message: err.Error()}
	}
	return nil
}
