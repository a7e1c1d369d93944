package blocks

import (
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

// castDef is the only legal unit-coercion path (spec.md §4.A): it
// accepts any unit and forces its output to a plain scalar, letting an
// author explicitly discard a unit (e.g. read an angle{turns} phase as
// a bare number) rather than the inference engine ever silently
// coercing one.
func castDef() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName:   "Cast",
		Capability: registry.CapabilityPure,
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode: registry.CardinalityPreserve,
		},
		Inputs: []registry.InputPortDef{
			{ID: "in", ExposedAsPort: true, Type: func(g *types.VarGen) types.CanonicalType {
				return types.CanonicalType{
					Payload: g.PayloadVarNamed("value"),
					Unit:    g.UnitVar(),
					Extent:  types.ExtentOne(),
				}
			}},
		},
		Outputs: []registry.OutputPortDef{{ID: "out", Type: func(g *types.VarGen) types.CanonicalType {
			return types.CanonicalType{
				Payload: g.PayloadVarNamed("value"),
				Unit:    types.ScalarUnit(),
				Extent:  types.ExtentOne(),
			}
		}}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			in, _ := ctx.InputByID("in")
			out := ctx.Op(registry.OpCast, ctx.OutType("out"), in)
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{"out": out}}, nil
		},
	}
}

// wrap01Def applies the wrap01 contract explicitly, for a signal that
// needs to be renormalized into [0,1) outside of a stateful block like
// Phasor (e.g. after summing two already-wrapped phases).
func wrap01Def() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName:   "Wrap01",
		Capability: registry.CapabilityPure,
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode: registry.CardinalityPreserve,
		},
		Inputs: []registry.InputPortDef{
			{ID: "in", ExposedAsPort: true, Type: func(g *types.VarGen) types.CanonicalType {
				return types.Float(g.UnitVarNamed("unit"), types.ExtentOne())
			}},
		},
		Outputs: []registry.OutputPortDef{{ID: "out", Type: func(g *types.VarGen) types.CanonicalType {
			return types.CanonicalType{
				Payload:  types.Payload{Kind: types.PayloadFloat},
				Unit:     g.UnitVarNamed("unit"),
				Extent:   types.ExtentOne(),
				Contract: types.Wrap01,
			}
		}}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			in, _ := ctx.InputByID("in")
			out := ctx.Op(registry.OpWrap01, ctx.OutType("out"), in)
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{"out": out}}, nil
		},
	}
}
