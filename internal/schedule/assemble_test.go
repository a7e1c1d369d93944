package schedule_test

import (
	"testing"

	"github.com/patchc/compiler/internal/bind"
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

func buildRegistry() *registry.Registry {
	reg := registry.New()

	reg.Register(&registry.BlockDef{
		TypeName:   "TimeRoot",
		IsTimeRoot: true,
		Outputs: []registry.OutputPortDef{
			{ID: "phase", Type: floatOne()},
		},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{
				"phase": ctx.Time(registry.RailPhaseA, ctx.OutType("phase")),
			}}, nil
		},
	})

	reg.Register(&registry.BlockDef{
		TypeName: "Const",
		Outputs: []registry.OutputPortDef{
			{ID: "out", Type: floatOne()},
		},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			return registry.LowerResult{OutputsByID: map[string]registry.ValueRef{
				"out": ctx.Constant(4.0, ctx.OutType("out")),
			}}, nil
		},
	})

	reg.Register(&registry.BlockDef{
		TypeName: "Array",
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode: registry.CardinalityOverride,
		},
		Inputs: []registry.InputPortDef{
			{ID: "count", Type: floatOne(), ExposedAsPort: true},
		},
		Outputs: []registry.OutputPortDef{
			{ID: "out", Type: func(g *types.VarGen) types.CanonicalType {
				return types.Float(types.ScalarUnit(), types.ExtentMany("arr", types.LaneLocal))
			}},
		},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			count := ctx.Constant(4.0, types.Float(types.ScalarUnit(), types.ExtentOne()))
			return registry.LowerResult{
				OutputsByID: map[string]registry.ValueRef{
					"out": count,
				},
				Effects: &registry.LowerEffects{
					InstanceDecls: []registry.InstanceDecl{
						{InstanceID: "arr", Count: 4, MaxCount: 16, Stride: 1},
					},
				},
			}, nil
		},
	})

	return reg
}

func buildPatch() graph.Patch {
	return graph.Patch{
		Blocks: map[graph.BlockID]graph.Block{
			"time": {ID: "time", Type: "TimeRoot", Params: map[string]interface{}{"periodMs": 8.0}},
			"c1":   {ID: "c1", Type: "Const"},
			"arr":  {ID: "arr", Type: "Array"},
		},
		Edges: []graph.Edge{
			{ID: "e1", From: graph.Endpoint{BlockID: "c1", PortID: "out"}, To: graph.Endpoint{BlockID: "arr", PortID: "count"}, Enabled: true, SortKey: "0"},
		},
	}
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

func TestAssembleDerivesTimeModelFromTimeRoot(t *testing.T) {
	prog := compile(t, buildRegistry(), buildPatch())
	if prog.Schedule.TimeModel.PeriodMs != 8.0 {
		t.Fatalf("expected periodMs 8.0, got %v", prog.Schedule.TimeModel.PeriodMs)
	}
	if len(prog.Schedule.TimeModel.Rails) != 2 {
		t.Fatalf("expected 2 time rails, got %d", len(prog.Schedule.TimeModel.Rails))
	}
}

func TestAssembleRecordsInstanceDeclsAndCountProvenance(t *testing.T) {
	prog := compile(t, buildRegistry(), buildPatch())

	decl, ok := prog.Instances["arr"]
	if !ok {
		t.Fatal("expected instance \"arr\" to be declared")
	}
	if decl.Count != 4 || decl.MaxCount != 16 {
		t.Fatalf("unexpected instance decl: %+v", decl)
	}

	instID, ok := prog.InstanceCountProvenance["c1.out"]
	if !ok {
		t.Fatal("expected count provenance keyed by c1.out")
	}
	if instID != "arr" {
		t.Fatalf("expected count provenance instance \"arr\", got %q", instID)
	}

	if _, ok := prog.ConstantProvenance["c1.out"]; ok {
		t.Fatal("expected c1.out to be excluded from constantProvenance (it feeds an instance count)")
	}
}

func TestAssembleBuildsSlotMetaAndDebugIndex(t *testing.T) {
	prog := compile(t, buildRegistry(), buildPatch())

	slot, ok := prog.DebugIndex["c1.out"]
	if !ok {
		t.Fatal("expected debugIndex entry for c1.out")
	}

	found := false
	for _, m := range prog.SlotMeta {
		if m.DebugLabel == "c1.out" {
			found = true
			if m.Slot != slot {
				t.Fatalf("slotMeta slot %d does not match debugIndex slot %d", m.Slot, slot)
			}
		}
	}
	if !found {
		t.Fatal("expected slotMeta entry for c1.out")
	}
}

func TestAssembleRecordsPureConstantProvenanceForOrdinaryOutputs(t *testing.T) {
	reg := buildRegistry()
	p := graph.Patch{
		Blocks: map[graph.BlockID]graph.Block{
			"time": {ID: "time", Type: "TimeRoot"},
			"c1":   {ID: "c1", Type: "Const"},
		},
	}
	prog := compile(t, reg, p)

	prov, ok := prog.ConstantProvenance["c1.out"]
	if !ok {
		t.Fatal("expected c1.out to have constant provenance")
	}
	if prov.PayloadKind != types.PayloadFloat {
		t.Fatalf("unexpected payload kind: %v", prov.PayloadKind)
	}
	if len(prov.ComponentExprIDs) != 1 {
		t.Fatalf("expected exactly 1 component expr id, got %d", len(prov.ComponentExprIDs))
	}
}
