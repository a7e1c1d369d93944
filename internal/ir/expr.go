// Package ir builds the value-expression DAG (spec.md 4.E): one node
// per constant, operator application, time-rail read, or state read,
// plus the per-block LowerEffects (state declarations, slot requests,
// step requests) each block's lowering closure emits alongside it.
// There is no port- or slot-reference node kind: an input port resolves
// to the id of the node its upstream output produced.
package ir

import (
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

// ExprID names a node within a Graph.
type ExprID int

// ExprKind tags what shape of node a ValueExpr is.
type ExprKind int

const (
	ExprConst ExprKind = iota
	ExprOp
	ExprTime
	ExprStateRead
)

// ConstValue is a closed discriminated union of the payload shapes a
// Const node can hold, tagged by Kind (spec.md 4.H's ConstValue
// variants: float/int/bool/vec2/vec3/color).
type ConstValue struct {
	Kind  types.PayloadKind
	Float float64
	Int   int64
	Bool  bool
	Vec2  [2]float64
	Vec3  [3]float64
	Color [4]float64
}

// ValueExpr is one node of the value-expression DAG.
type ValueExpr struct {
	ID     ExprID
	Kind   ExprKind
	Type   types.CanonicalType
	Const  ConstValue
	Op     registry.OpCode
	Inputs []ExprID
	Rail   registry.TimeRail
	// StateKey is set on ExprStateRead nodes; it is a StableStateId the
	// binder resolves to a slot via exprPatches (spec.md 4.F).
	StateKey string
}

// Graph is the arena of ValueExpr nodes built by one compile. Nodes
// reference each other by integer id rather than by pointer, matching
// the teacher's operand-list-by-index convention (instr/operand.go)
// rather than an owning-pointer tree.
type Graph struct {
	Nodes []ValueExpr
}

func (g *Graph) alloc(n ValueExpr) ExprID {
	id := ExprID(len(g.Nodes))
	n.ID = id
	g.Nodes = append(g.Nodes, n)
	return id
}

// Node returns the node at id. Panics on an out-of-range id, which can
// only happen from a builder bug (ids are allocated, never guessed).
func (g *Graph) Node(id ExprID) ValueExpr {
	return g.Nodes[id]
}
