package diag_test

import (
	"testing"

	"github.com/patchc/compiler/internal/diag"
	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

func authoringRegistry() *registry.Registry {
	reg := registry.New()
	floatOut := func(id string) registry.OutputPortDef {
		return registry.OutputPortDef{ID: id, Type: func(g *types.VarGen) types.CanonicalType {
			return types.Float(types.ScalarUnit(), types.ExtentOne())
		}}
	}
	reg.Register(&registry.BlockDef{TypeName: "TimeRoot", IsTimeRoot: true, Outputs: []registry.OutputPortDef{floatOut("phase")}})
	reg.Register(&registry.BlockDef{TypeName: "Const", Outputs: []registry.OutputPortDef{floatOut("out")}})
	reg.Register(&registry.BlockDef{TypeName: "Sink", Inputs: []registry.InputPortDef{{ID: "in", Type: func(g *types.VarGen) types.CanonicalType {
		return types.Float(types.ScalarUnit(), types.ExtentOne())
	}}}})
	return reg
}

func TestTargetRefStringSortsGraphSpan(t *testing.T) {
	target := diag.TargetRef{Kind: diag.TargetGraphSpan, GraphSpan: []graph.BlockID{"b", "a", "c"}}
	if target.String() != "span:a,b,c" {
		t.Fatalf("expected sorted span, got %q", target.String())
	}
}

func TestNewDiagnosticIDIgnoresMessage(t *testing.T) {
	target := diag.TargetRef{Kind: diag.TargetBlock, BlockID: "a"}
	d1 := diag.NewDiagnostic(diag.CodeTypeMismatch, "message one", target, 1, "")
	d2 := diag.NewDiagnostic(diag.CodeTypeMismatch, "message two", target, 1, "")
	if d1.ID != d2.ID {
		t.Fatalf("expected equal ids for same code/target/revision, got %q and %q", d1.ID, d2.ID)
	}
}

func TestSeverityOfClassifiesCodes(t *testing.T) {
	cases := map[diag.Code]diag.Severity{
		diag.CodeTypeMismatch:          diag.SeverityError,
		diag.CodeGraphUnusedOutput:     diag.SeverityWarn,
		diag.CodeSilentValueUsed:       diag.SeverityInfo,
		diag.CodeGraphDisconnectedBlock: diag.SeverityWarn,
	}
	for code, want := range cases {
		if got := diag.SeverityOf(code); got != want {
			t.Errorf("SeverityOf(%s) = %s, want %s", code, got, want)
		}
	}
}

func TestRunAuthoringValidatorsFlagsMissingTimeRootDisconnectedAndUnusedOutput(t *testing.T) {
	reg := authoringRegistry()
	p := graph.Patch{
		Blocks: map[graph.BlockID]graph.Block{
			"c1": {ID: "c1", Type: "Const"},
		},
	}
	diags := diag.RunAuthoringValidators(p, reg, 1)

	var codes []diag.Code
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	hasCode := func(c diag.Code) bool {
		for _, got := range codes {
			if got == c {
				return true
			}
		}
		return false
	}
	if !hasCode(diag.CodeTimeRootMissing) {
		t.Error("expected a missing-time-root diagnostic")
	}
	if !hasCode(diag.CodeGraphDisconnectedBlock) {
		t.Error("expected a disconnected-block diagnostic for c1")
	}
	if !hasCode(diag.CodeGraphUnusedOutput) {
		t.Error("expected an unused-output diagnostic for c1.out")
	}
}

func TestRunAuthoringValidatorsClearOnAWellFormedPatch(t *testing.T) {
	reg := authoringRegistry()
	p := graph.Patch{
		Blocks: map[graph.BlockID]graph.Block{
			"time": {ID: "time", Type: "TimeRoot"},
			"c1":   {ID: "c1", Type: "Const"},
			"sink": {ID: "sink", Type: "Sink"},
		},
		Edges: []graph.Edge{
			{ID: "e1", From: graph.Endpoint{BlockID: "c1", PortID: "out"}, To: graph.Endpoint{BlockID: "sink", PortID: "in"}, Enabled: true},
		},
	}
	diags := diag.RunAuthoringValidators(p, reg, 1)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}
