// Package blocks is the built-in block catalog: the minimal set of
// registry.BlockDef registrations that exercises every cardinality
// policy, capability, and lowering path the rest of the compiler
// names (spec.md 4.D/4.E). A real patch author's library would sit on
// top of this; these are the primitives the Normalizer, inference
// engine, and scheduler all assume exist (a time root, a literal
// source, arithmetic, a unit-coercion path, one stateful oscillator,
// and one field-cardinality pair).
package blocks

import "github.com/patchc/compiler/internal/registry"

// Register adds every built-in block type to reg. Idempotent, like
// Registry.Register itself: calling it twice on the same registry just
// replaces each definition with an identical one.
func Register(reg *registry.Registry) {
	reg.Register(timeRootDef())
	reg.Register(constDef())
	reg.Register(defaultSourceDef())
	reg.Register(arithDef("Add", registry.OpAdd, 0))
	reg.Register(arithDef("Sub", registry.OpSub, 0))
	reg.Register(arithDef("Mul", registry.OpMul, 1))
	reg.Register(arithDef("Div", registry.OpDiv, 1))
	reg.Register(gainDef())
	reg.Register(reduceDef())
	reg.Register(castDef())
	reg.Register(wrap01Def())
	reg.Register(phasorDef())
	reg.Register(arrayDef())
}
