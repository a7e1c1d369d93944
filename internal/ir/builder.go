package ir

import (
	"fmt"

	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

// shared is the build-wide state every per-block Builder in one compile
// draws from: the single Graph arena, a monotonic placeholder-slot
// counter, and the state-slot table that makes phase-1 allocations
// visible to phase-2 re-lowering of the same compile (spec.md 4.F SCC
// two-phase binding). Final slot numbers are assigned later by the
// binder; what this package hands out are stable placeholders the
// binder's exprPatches rewrite into final ones.
type shared struct {
	graph      *Graph
	nextSlot   int
	stateSlot  map[string]int
	stateDecl  map[string]registry.StateDecl
}

func newShared() *shared {
	return &shared{
		graph:     &Graph{},
		stateSlot: map[string]int{},
		stateDecl: map[string]registry.StateDecl{},
	}
}

func (s *shared) allocSlot() int {
	id := s.nextSlot
	s.nextSlot++
	return id
}

// Builder is the per-block-instance registry.LowerContext implementation.
type Builder struct {
	sh         *shared
	blockType  string
	instanceID string
	inputs     map[string]registry.ValueRef
	outTypes   map[string]types.CanonicalType
	params     map[string]interface{}
}

// NewBuilder constructs the context a block instance's Lower closure
// runs against.
func NewBuilder(sh *shared, blockType, instanceID string, inputs map[string]registry.ValueRef, outTypes map[string]types.CanonicalType, params map[string]interface{}) *Builder {
	return &Builder{sh: sh, blockType: blockType, instanceID: instanceID, inputs: inputs, outTypes: outTypes, params: params}
}

func (b *Builder) InputByID(portID string) (registry.ValueRef, bool) {
	v, ok := b.inputs[portID]
	return v, ok
}

func (b *Builder) OutType(portID string) types.CanonicalType {
	return b.outTypes[portID]
}

func (b *Builder) BlockType() string  { return b.blockType }
func (b *Builder) InstanceID() string { return b.instanceID }

func (b *Builder) Param(key string) (interface{}, bool) {
	v, ok := b.params[key]
	return v, ok
}

func (b *Builder) Constant(value interface{}, t types.CanonicalType) registry.ValueRef {
	c := ConstValue{Kind: t.Payload.Kind}
	switch v := value.(type) {
	case float64:
		c.Float = v
	case int64:
		c.Int = v
	case int:
		c.Int = int64(v)
	case bool:
		c.Bool = v
	case [2]float64:
		c.Vec2 = v
	case [3]float64:
		c.Vec3 = v
	case [4]float64:
		c.Color = v
	}
	id := b.sh.graph.alloc(ValueExpr{Kind: ExprConst, Type: t, Const: c})
	return registry.ValueRef{ExprID: int(id), Type: t}
}

func (b *Builder) Op(code registry.OpCode, t types.CanonicalType, inputs ...registry.ValueRef) registry.ValueRef {
	ids := make([]ExprID, len(inputs))
	for i, in := range inputs {
		ids[i] = ExprID(in.ExprID)
	}
	id := b.sh.graph.alloc(ValueExpr{Kind: ExprOp, Type: t, Op: code, Inputs: ids})
	return registry.ValueRef{ExprID: int(id), Type: t}
}

func (b *Builder) Time(rail registry.TimeRail, t types.CanonicalType) registry.ValueRef {
	id := b.sh.graph.alloc(ValueExpr{Kind: ExprTime, Type: t, Rail: rail})
	return registry.ValueRef{ExprID: int(id), Type: t}
}

func (b *Builder) StateRead(key string, t types.CanonicalType) registry.ValueRef {
	id := b.sh.graph.alloc(ValueExpr{Kind: ExprStateRead, Type: t, StateKey: key})
	return registry.ValueRef{ExprID: int(id), Type: t}
}

func (b *Builder) EventNever(t types.CanonicalType) registry.ValueRef {
	id := b.sh.graph.alloc(ValueExpr{Kind: ExprConst, Type: t, Const: ConstValue{Kind: types.PayloadEvent}})
	return registry.ValueRef{ExprID: int(id), Type: t}
}

func (b *Builder) AllocTypedSlot(t types.CanonicalType, debugLabel string) int {
	return b.sh.allocSlot()
}

func (b *Builder) AllocStateSlot(key string, decl registry.StateDecl) int {
	if slot, ok := b.sh.stateSlot[key]; ok {
		return slot
	}
	slot := b.sh.allocSlot()
	b.sh.stateSlot[key] = slot
	b.sh.stateDecl[key] = decl
	return slot
}

func (b *Builder) FindStateSlot(key string) (int, bool) {
	slot, ok := b.sh.stateSlot[key]
	return slot, ok
}

func (b *Builder) Sandbox(instanceSuffix string) registry.LowerContext {
	return &sandboxContext{parent: b, prefix: instanceSuffix}
}

// sandboxContext implements registry.LowerContext for composite/macro
// expansion (spec.md 4.E LowerSandbox): it delegates almost everything
// to the enclosing Builder but prefixes state keys and the instance id
// so a macro expanded twice inside the same instance never collides
// with itself.
type sandboxContext struct {
	parent registry.LowerContext
	prefix string
}

func (s *sandboxContext) InputByID(portID string) (registry.ValueRef, bool) {
	return s.parent.InputByID(portID)
}

func (s *sandboxContext) OutType(portID string) types.CanonicalType {
	return s.parent.OutType(portID)
}

func (s *sandboxContext) BlockType() string { return s.parent.BlockType() }

// Param delegates to the enclosing block's own params: a sandboxed
// macro expansion has no params of its own, only the instance it was
// expanded within.
func (s *sandboxContext) Param(key string) (interface{}, bool) {
	return s.parent.Param(key)
}

func (s *sandboxContext) InstanceID() string {
	return fmt.Sprintf("%s.%s", s.parent.InstanceID(), s.prefix)
}

func (s *sandboxContext) Constant(value interface{}, t types.CanonicalType) registry.ValueRef {
	return s.parent.Constant(value, t)
}

func (s *sandboxContext) Op(code registry.OpCode, t types.CanonicalType, inputs ...registry.ValueRef) registry.ValueRef {
	return s.parent.Op(code, t, inputs...)
}

func (s *sandboxContext) Time(rail registry.TimeRail, t types.CanonicalType) registry.ValueRef {
	return s.parent.Time(rail, t)
}

func (s *sandboxContext) StateRead(key string, t types.CanonicalType) registry.ValueRef {
	return s.parent.StateRead(s.scopedKey(key), t)
}

func (s *sandboxContext) EventNever(t types.CanonicalType) registry.ValueRef {
	return s.parent.EventNever(t)
}

func (s *sandboxContext) AllocTypedSlot(t types.CanonicalType, debugLabel string) int {
	return s.parent.AllocTypedSlot(t, fmt.Sprintf("%s.%s", s.prefix, debugLabel))
}

func (s *sandboxContext) AllocStateSlot(key string, decl registry.StateDecl) int {
	decl.Key = s.scopedKey(key)
	return s.parent.AllocStateSlot(s.scopedKey(key), decl)
}

func (s *sandboxContext) FindStateSlot(key string) (int, bool) {
	return s.parent.FindStateSlot(s.scopedKey(key))
}

func (s *sandboxContext) Sandbox(instanceSuffix string) registry.LowerContext {
	return &sandboxContext{parent: s, prefix: instanceSuffix}
}

func (s *sandboxContext) scopedKey(key string) string {
	return fmt.Sprintf("%s.%s", s.prefix, key)
}
