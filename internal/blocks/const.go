package blocks

import (
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

func literalOutType(g *types.VarGen) types.CanonicalType {
	return types.CanonicalType{Payload: g.PayloadVar(), Unit: g.UnitVar(), Extent: types.ExtentOne()}
}

// constDef is the payload-generic literal block: a single unconnected
// output whose payload and unit are free variables, resolved by
// whatever it is wired into. Its value comes from the authored
// "value" param (spec.md S1's FreqConst(value=2.0), S5's
// patchProgramConstants target).
func constDef() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName: "Const",
		Outputs:  []registry.OutputPortDef{{ID: "out", Type: literalOutType}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			t := ctx.OutType("out")
			if err := registry.RequireInst("Const", t, "out"); err != nil {
				return registry.LowerResult{}, err
			}
			raw, _ := ctx.Param("value")
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{
				"out": ctx.Constant(coerceLiteral(t.Payload.Kind, raw), t),
			}}, nil
		},
	}
}

// defaultSourceDef is the synthetic block the Normalizer injects for
// any exposed input port left unconnected by the author (spec.md 4.C
// rule 3). Its shape mirrors constDef exactly; it is a distinct type
// name only so diagnostics and debugging tools can tell an authored
// literal from one the compiler manufactured.
func defaultSourceDef() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName: "DefaultSource",
		Outputs:  []registry.OutputPortDef{{ID: "out", Type: literalOutType}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			t := ctx.OutType("out")
			if err := registry.RequireInst("DefaultSource", t, "out"); err != nil {
				return registry.LowerResult{}, err
			}
			raw, _ := ctx.Param("value")
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{
				"out": ctx.Constant(coerceLiteral(t.Payload.Kind, raw), t),
			}}, nil
		},
	}
}
