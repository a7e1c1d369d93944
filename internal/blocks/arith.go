package blocks

import (
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

// arithUnit shares one unit variable across a binary op's two inputs
// and output, so e.g. two angle{turns} signals can be added but an
// angle and a plain scalar cannot, without hardcoding any one unit.
func arithUnit(g *types.VarGen) types.CanonicalType {
	return types.Float(g.UnitVarNamed("unit"), types.ExtentOne())
}

// arithDef builds one of the four numeric binary ops (spec.md's
// built-in catalog: Add, Sub, Mul, Div). b defaults to identity
// (additive 0 or multiplicative 1) when left unconnected, so a bare
// "Add(a)" behaves as a pass-through rather than a normalization
// error.
func arithDef(name string, op registry.OpCode, identity float64) *registry.BlockDef {
	return &registry.BlockDef{
		TypeName:   name,
		Capability: registry.CapabilityPure,
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode: registry.CardinalityPreserve,
		},
		Inputs: []registry.InputPortDef{
			{ID: "a", ExposedAsPort: true, Type: arithUnit},
			{ID: "b", ExposedAsPort: true, Type: arithUnit, Default: &registry.DefaultSourceSpec{
				BlockType: "DefaultSource",
				Params:    map[string]interface{}{"value": identity},
			}},
		},
		Outputs: []registry.OutputPortDef{{ID: "out", Type: arithUnit}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			a, _ := ctx.InputByID("a")
			b, _ := ctx.InputByID("b")
			out := ctx.Op(op, ctx.OutType("out"), a, b)
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{"out": out}}, nil
		},
	}
}

// gainDef is the one pure block that actually exercises
// broadcastPolicy=allowZipSig (spec.md's catalog note): a signal
// (cardinality one) scalar multiplying a field (cardinality many)
// without the author having to Array-broadcast it explicitly first.
func gainDef() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName:   "Gain",
		Capability: registry.CapabilityPure,
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode:            registry.CardinalityPreserve,
			LaneCoupling:    types.LaneLocal,
			BroadcastPolicy: registry.BroadcastAllowZipSig,
		},
		Inputs: []registry.InputPortDef{
			{ID: "value", ExposedAsPort: true, Type: func(g *types.VarGen) types.CanonicalType {
				return types.Float(types.ScalarUnit(), types.ExtentOne())
			}},
			{ID: "signal", ExposedAsPort: true, Type: func(g *types.VarGen) types.CanonicalType {
				return types.Float(types.ScalarUnit(), types.ExtentMany("", types.LaneLocal))
			}},
		},
		Outputs: []registry.OutputPortDef{{ID: "out", Type: func(g *types.VarGen) types.CanonicalType {
			return types.Float(types.ScalarUnit(), types.ExtentMany("", types.LaneLocal))
		}}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			v, _ := ctx.InputByID("value")
			s, _ := ctx.InputByID("signal")
			out := ctx.Op(registry.OpGain, ctx.OutType("out"), v, s)
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{"out": out}}, nil
		},
	}
}

// reduceDef is the one block that always trips E_LANE_COUPLED_DISALLOWED
// (spec.md's catalog note): it declares its input lane-coupled over no
// concrete instance, which joinExtents's CardinalityOverride branch
// rejects unconditionally. It exists to give that diagnostic a real
// block to fire from, not to ever reach Lower in a passing compile.
func reduceDef() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName:   "Reduce",
		Capability: registry.CapabilityPure,
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode:         registry.CardinalityOverride,
			LaneCoupling: types.LaneCoupled,
		},
		Inputs: []registry.InputPortDef{
			{ID: "in", ExposedAsPort: true, Type: func(g *types.VarGen) types.CanonicalType {
				return types.Float(types.ScalarUnit(), types.ExtentMany("", types.LaneCoupled))
			}},
		},
		Outputs: []registry.OutputPortDef{{ID: "out", Type: func(g *types.VarGen) types.CanonicalType {
			return types.Float(types.ScalarUnit(), types.ExtentOne())
		}}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			in, _ := ctx.InputByID("in")
			out := ctx.Op(registry.OpReduceSum, ctx.OutType("out"), in)
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{"out": out}}, nil
		},
	}
}
