package blocks

import (
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

func phaseAType(g *types.VarGen) types.CanonicalType {
	return types.CanonicalType{
		Payload:  types.Payload{Kind: types.PayloadFloat},
		Unit:     types.AngleUnit(types.AngleTurns),
		Extent:   types.ExtentOne(),
		Contract: types.Wrap01,
	}
}

func dtType(g *types.VarGen) types.CanonicalType {
	return types.Float(types.TimeUnit(types.TimeMs), types.ExtentOne())
}

// timeRootDef is the unique per-patch root of the time model (spec.md
// glossary: TimeRoot). It emits both rails the scheduler's TimeModel
// names: a wrap01 phase accumulator and the tick's raw delta in
// milliseconds. Its own tick period is read out of Params by
// internal/schedule.deriveTimeModel directly, not through a port.
func timeRootDef() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName:   "TimeRoot",
		Capability: registry.CapabilityIO,
		IsTimeRoot: true,
		Outputs: []registry.OutputPortDef{
			{ID: "phaseA", Type: phaseAType},
			{ID: "dt", Type: dtType},
		},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{
				"phaseA": ctx.Time(registry.RailPhaseA, ctx.OutType("phaseA")),
				"dt":     ctx.Time(registry.RailDt, ctx.OutType("dt")),
			}}, nil
		},
	}
}
