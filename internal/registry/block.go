// Package registry is the catalog of block definitions: for each
// registered block type, the ports it declares, its default-source
// policy, its cardinality/broadcast policy, its capability, and the pure
// lower closure that turns a resolved instance of the block into IR.
//
// Registration is the only side-effecting operation on a Registry and is
// idempotent: registering the same type name twice replaces the earlier
// definition, mirroring the teacher's confignew.NameIDBinding /
// program.ISA append-once id/behavior tables. The registry itself is
// meant to be populated once, before any compile, and is read-only for
// the remainder of the process's life (spec.md 4.B / 9 "global mutable
// state" notes: callers should own one explicit *Registry rather than a
// package-level singleton).
package registry

import "github.com/patchc/compiler/internal/types"

// BlockForm distinguishes a primitive (directly lowered) block from a
// composite (expands to other blocks via a macro).
type BlockForm int

const (
	FormPrimitive BlockForm = iota
	FormComposite
)

// Capability tags what kind of side effect, if any, a block's step
// requests can have.
type Capability int

const (
	CapabilityPure Capability = iota
	CapabilityState
	CapabilityIO
	CapabilityRender
)

// LoweringPurity distinguishes a block whose lowering never needs to
// request a slot explicitly (Pure: the orchestrator allocates one on its
// behalf) from one that must supply slotRequests/stepRequests itself.
type LoweringPurity int

const (
	LoweringPure LoweringPurity = iota
	LoweringImpure
)

// CardinalityMode selects how a block's output cardinality is derived.
type CardinalityMode int

const (
	// CardinalityPreserve: output cardinality is the join of input
	// cardinalities (spec.md 4.D rule 3).
	CardinalityPreserve CardinalityMode = iota
	// CardinalityOverride: the block names its output cardinality
	// explicitly (e.g. Array introduces a new InstanceRef).
	CardinalityOverride
)

// BroadcastPolicy controls whether a signal (cardinality one) may feed a
// field (cardinality many) input implicitly.
type BroadcastPolicy int

const (
	BroadcastDisallow BroadcastPolicy = iota
	BroadcastAllowZipSig
)

// CardinalityPolicy is the per-block cardinality/broadcast contract
// consulted by the inference engine (spec.md 4.D).
type CardinalityPolicy struct {
	Mode            CardinalityMode
	LaneCoupling    types.LaneCoupling
	BroadcastPolicy BroadcastPolicy
}

// TypeTemplate produces a (possibly variable-carrying) CanonicalType for
// a port, given a variable generator shared across the whole block
// instance so that variables the block wants unified together (e.g. two
// inputs of the same payload) can share a variable id.
type TypeTemplate func(g *types.VarGen) types.CanonicalType

// DefaultSourceSpec names the synthetic block the Normalizer should
// inject for an exposed input port that has no incoming edge.
type DefaultSourceSpec struct {
	BlockType string
	Params    map[string]interface{}
}

// InputPortDef declares one input port of a block type.
type InputPortDef struct {
	ID            string
	Type          TypeTemplate
	ExposedAsPort bool
	Default       *DefaultSourceSpec
}

// OutputPortDef declares one output port of a block type.
type OutputPortDef struct {
	ID   string
	Type TypeTemplate
}

// BlockDef is a registry entry: everything needed to type-check and
// lower one instance of a block type.
type BlockDef struct {
	TypeName          string
	Form              BlockForm
	Capability        Capability
	LoweringPurity    LoweringPurity
	CardinalityPolicy CardinalityPolicy
	Inputs            []InputPortDef
	Outputs           []OutputPortDef
	// IsTimeRoot marks the (at most one per patch) block type that can
	// serve as the root of the time model (spec.md glossary: TimeRoot).
	IsTimeRoot bool
	// Lower is invoked exactly once per block instance, in topological
	// order, during IR building (spec.md 4.E).
	Lower LowerFunc
}

// InputByID returns the input port definition with the given id, or
// false if the block type declares no such port.
func (b *BlockDef) InputByID(id string) (InputPortDef, bool) {
	for _, in := range b.Inputs {
		if in.ID == id {
			return in, true
		}
	}
	return InputPortDef{}, false
}

// OutputByID returns the output port definition with the given id, or
// false if the block type declares no such port.
func (b *BlockDef) OutputByID(id string) (OutputPortDef, bool) {
	for _, out := range b.Outputs {
		if out.ID == id {
			return out, true
		}
	}
	return OutputPortDef{}, false
}
