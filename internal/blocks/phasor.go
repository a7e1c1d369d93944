package blocks

import (
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

func phasorOutType(g *types.VarGen) types.CanonicalType {
	return types.CanonicalType{
		Payload:  types.Payload{Kind: types.PayloadFloat},
		Unit:     types.AngleUnit(types.AngleTurns),
		Extent:   types.ExtentOne(),
		Contract: types.Wrap01,
	}
}

// phasorDef is the one stateful oscillator named throughout spec.md's
// scenarios (S1, S4): one state slot holding its accumulated phase,
// advanced each tick by freq*dt (dt in ms, so /1000 to get turns per
// second), wrapped back into [0,1). initialPhase is an authored param,
// not a port, matching S1's `Phasor(freq←FreqConst, initialPhase=0)`.
func phasorDef() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName:   "Phasor",
		Capability: registry.CapabilityState,
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode: registry.CardinalityPreserve,
		},
		Inputs: []registry.InputPortDef{
			{ID: "freq", ExposedAsPort: true, Type: func(g *types.VarGen) types.CanonicalType {
				return types.Float(types.ScalarUnit(), types.ExtentOne())
			}, Default: &registry.DefaultSourceSpec{
				BlockType: "DefaultSource",
				Params:    map[string]interface{}{"value": 1.0},
			}},
		},
		Outputs: []registry.OutputPortDef{{ID: "phase", Type: phasorOutType}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			outType := ctx.OutType("phase")
			key := ctx.InstanceID() + ".phase"

			initial := 0.0
			if raw, ok := ctx.Param("initialPhase"); ok {
				initial = toFloat(raw)
			}
			ctx.AllocStateSlot(key, registry.StateDecl{Key: key, InitialValue: initial, Stride: 1})

			prev := ctx.StateRead(key, outType)
			freq, _ := ctx.InputByID("freq")
			scalar := types.Float(types.ScalarUnit(), types.ExtentOne())
			dt := ctx.Time(registry.RailDt, types.Float(types.TimeUnit(types.TimeMs), types.ExtentOne()))

			turnsPerMs := ctx.Constant(0.001, scalar)
			step := ctx.Op(registry.OpMul, scalar, freq, dt)
			step = ctx.Op(registry.OpMul, scalar, step, turnsPerMs)
			next := ctx.Op(registry.OpAdd, outType, prev, step)
			wrapped := ctx.Op(registry.OpWrap01, outType, next)

			return registry.LowerResult{
				OutputsByID: map[string]registry.ValueRef{"phase": prev},
				Effects: &registry.LowerEffects{
					StepRequests: []registry.StepRequest{
						{Kind: registry.StepStateWrite, StateKey: key, Value: wrapped},
					},
				},
			}, nil
		},
	}
}
