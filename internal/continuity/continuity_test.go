package continuity_test

import (
	"testing"

	"github.com/patchc/compiler/internal/bind"
	"github.com/patchc/compiler/internal/continuity"
	"github.com/patchc/compiler/internal/diag"
	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/infer"
	"github.com/patchc/compiler/internal/ir"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/schedule"
	"github.com/patchc/compiler/internal/types"
)

func floatOne() registry.TypeTemplate {
	return func(g *types.VarGen) types.CanonicalType {
		return types.Float(types.ScalarUnit(), types.ExtentOne())
	}
}

func timeRootDef() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName:   "TimeRoot",
		IsTimeRoot: true,
		Outputs:    []registry.OutputPortDef{{ID: "phase", Type: floatOne()}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{
				"phase": ctx.Time(registry.RailPhaseA, ctx.OutType("phase")),
			}}, nil
		},
	}
}

// counterRegistry builds a registry whose Counter block declares one
// primitive (non-field) piece of persistent state with the given
// stride, for exercising primitive-state migration and stride-mismatch
// downgrade.
func counterRegistry(stride int) *registry.Registry {
	reg := registry.New()
	reg.Register(timeRootDef())
	reg.Register(&registry.BlockDef{
		TypeName:   "Counter",
		Capability: registry.CapabilityState,
		Outputs:    []registry.OutputPortDef{{ID: "out", Type: floatOne()}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			key := ctx.InstanceID() + ".count"
			ctx.AllocStateSlot(key, registry.StateDecl{Key: key, InitialValue: 0.0, Stride: stride})
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{
				"out": ctx.StateRead(key, ctx.OutType("out")),
			}}, nil
		},
	})
	return reg
}

// arrayRegistry builds a registry with an Array block whose instance
// count is fixed at build time (simulating a recompile where the
// author changed the declared count) plus a State block holding one
// field-state lane per array element.
func arrayRegistry(count int) *registry.Registry {
	reg := registry.New()
	reg.Register(timeRootDef())
	reg.Register(&registry.BlockDef{
		TypeName: "Array",
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode: registry.CardinalityOverride,
		},
		Outputs: []registry.OutputPortDef{{ID: "out", Type: func(g *types.VarGen) types.CanonicalType {
			return types.Float(types.ScalarUnit(), types.ExtentMany("arr", types.LaneLocal))
		}}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			return registry.LowerResult{
				OutputsByID: map[string]registry.ValueRef{
					"out": ctx.Constant(0.0, types.Float(types.ScalarUnit(), types.ExtentOne())),
				},
				Effects: &registry.LowerEffects{
					InstanceDecls: []registry.InstanceDecl{
						{InstanceID: "arr", Count: count, MaxCount: 16, Stride: 1},
					},
				},
			}, nil
		},
	})
	reg.Register(&registry.BlockDef{
		TypeName:   "State",
		Capability: registry.CapabilityState,
		Outputs:    []registry.OutputPortDef{{ID: "out", Type: floatOne()}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			key := ctx.InstanceID() + ".phase"
			slot := ctx.AllocStateSlot(key, registry.StateDecl{Key: key, InitialValue: 0.0, Stride: 1, InstanceID: "arr", LaneCount: count})
			return registry.LowerResult{
				OutputsByID: map[string]registry.ValueRef{
					"out": ctx.StateRead(key, ctx.OutType("out")),
				},
				Effects: &registry.LowerEffects{
					StepRequests: []registry.StepRequest{
						{Kind: registry.StepFieldStateWrite, StateKey: key, InstanceID: "arr", Target: registry.ValueRef{Slot: &slot}},
					},
				},
			}, nil
		},
	})
	return reg
}

func compile(t *testing.T, reg *registry.Registry, p graph.Patch) *schedule.CompiledProgram {
	t.Helper()
	normResult := graph.Normalize(p, reg)
	if len(normResult.Errors) != 0 {
		t.Fatalf("normalize errors: %v", normResult.Errors)
	}
	norm := normResult.Patch
	result := infer.Infer(norm, reg)
	if len(result.Errors) != 0 {
		t.Fatalf("infer errors: %v", result.Errors)
	}
	order, err := graph.TopoOrder(norm, reg)
	if err != nil {
		t.Fatalf("topo order: %v", err)
	}
	build, err := ir.Build(norm, reg, result.Snapshot, order)
	if err != nil {
		t.Fatalf("ir build: %v", err)
	}
	bindIn := bind.BindInputs{Build: build}
	binding := bind.Bind(bindIn)
	prog, err := schedule.Assemble(norm, reg, order, build, bindIn, binding)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return prog
}

func counterPatch() graph.Patch {
	return graph.Patch{Blocks: map[graph.BlockID]graph.Block{
		"time":    {ID: "time", Type: "TimeRoot"},
		"counter": {ID: "counter", Type: "Counter"},
	}}
}

func TestMigratePreservesPrimitiveStateAcrossRecompile(t *testing.T) {
	reg := counterRegistry(1)
	old := compile(t, reg, counterPatch())
	oldState := continuity.NewProgramState(old, nil)
	oldState.Slots[old.Schedule.StateMappings[0].Slot] = 42

	next := compile(t, reg, counterPatch())
	store := continuity.NewStore()
	newState, diags := continuity.Migrate(store, old, oldState, next, nil, 2)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if got := newState.Slots[next.Schedule.StateMappings[0].Slot]; got != 42 {
		t.Fatalf("expected migrated value 42, got %v", got)
	}
}

func TestMigrateDowngradesOnStrideMismatch(t *testing.T) {
	old := compile(t, counterRegistry(1), counterPatch())
	oldState := continuity.NewProgramState(old, nil)
	oldState.Slots[old.Schedule.StateMappings[0].Slot] = 42

	next := compile(t, counterRegistry(2), counterPatch())
	store := continuity.NewStore()
	newState, diags := continuity.Migrate(store, old, oldState, next, nil, 3)
	if len(diags) != 1 {
		t.Fatalf("expected exactly one downgrade diagnostic, got %v", diags)
	}
	if diags[0].Code != diag.CodeFlagDowngraded {
		t.Fatalf("expected CodeFlagDowngraded, got %s", diags[0].Code)
	}
	for _, s := range newState.Slots {
		if s != 0 {
			t.Fatalf("expected stride-mismatched state to fall back to initial value, got %v", newState.Slots)
		}
	}
}

func arrayPatch() graph.Patch {
	return graph.Patch{Blocks: map[graph.BlockID]graph.Block{
		"time":  {ID: "time", Type: "TimeRoot"},
		"arr":   {ID: "arr", Type: "Array"},
		"state": {ID: "state", Type: "State"},
	}}
}

func TestMigrateFieldStateFollowsIdentityLaneMappingOnGrow(t *testing.T) {
	old := compile(t, arrayRegistry(4), arrayPatch())
	oldState := continuity.NewProgramState(old, nil)
	var stateMapping schedule.StateMapping
	for _, m := range old.Schedule.StateMappings {
		if m.IsField {
			stateMapping = m
		}
	}
	for lane := 0; lane < 4; lane++ {
		oldState.Slots[stateMapping.Slot+lane*stateMapping.Stride] = float64(lane + 1)
	}

	next := compile(t, arrayRegistry(6), arrayPatch())
	store := continuity.NewStore()
	newState, diags := continuity.Migrate(store, old, oldState, next, nil, 2)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics growing an array, got %v", diags)
	}

	var newMapping schedule.StateMapping
	for _, m := range next.Schedule.StateMappings {
		if m.IsField {
			newMapping = m
		}
	}
	for lane := 0; lane < 4; lane++ {
		if got := newState.Slots[newMapping.Slot+lane*newMapping.Stride]; got != float64(lane+1) {
			t.Errorf("lane %d: expected %v, got %v", lane, lane+1, got)
		}
	}
	for lane := 4; lane < 6; lane++ {
		if got := newState.Slots[newMapping.Slot+lane*newMapping.Stride]; got != 0 {
			t.Errorf("new lane %d: expected zero-initialized, got %v", lane, got)
		}
	}
}

func TestMigratePrunesLaneMappingsForRemovedInstances(t *testing.T) {
	old := compile(t, arrayRegistry(4), arrayPatch())
	store := continuity.NewStore()
	store.SetLaneMapping(continuity.LaneMapping{InstanceID: "arr", OldToNew: []int{3, 2, 1, 0}})

	empty := compile(t, counterRegistry(1), counterPatch())
	_, _ = continuity.Migrate(store, old, continuity.ProgramState{}, empty, nil, 2)

	if got := store.LaneMapping("arr", 4, 4); got.OldToNew[0] != 0 {
		t.Fatal("expected a fresh identity mapping after prune, not the stale registered one")
	}
}

func TestReconcilePhaseOffsetMatchesOldPhaseAtSwap(t *testing.T) {
	oldModel := schedule.TimeModel{PeriodMs: 1000, ResetEpoch: 0}
	newModel := schedule.TimeModel{PeriodMs: 400}
	now := int64(2500) // old phase = mod(2500,1000)/1000 = 0.5

	newEpoch := continuity.ReconcilePhaseOffset(oldModel, newModel, now)
	got := modPhase(float64(now-newEpoch), newModel.PeriodMs)
	want := 0.5
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected new phase %v, got %v", want, got)
	}
}

func modPhase(elapsed, period float64) float64 {
	p := elapsed / period
	_, frac := splitInt(p)
	if frac < 0 {
		frac += 1
	}
	return frac
}

func splitInt(v float64) (int64, float64) {
	i := int64(v)
	return i, v - float64(i)
}
