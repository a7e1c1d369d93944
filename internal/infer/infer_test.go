package infer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/infer"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

func floatOne(g *types.VarGen) types.CanonicalType {
	return types.Float(types.ScalarUnit(), types.ExtentOne())
}

func floatMany(instance types.InstanceRef) registry.TypeTemplate {
	return func(g *types.VarGen) types.CanonicalType {
		return types.Float(types.ScalarUnit(), types.ExtentMany(instance, types.LaneLocal))
	}
}

func timeMs(g *types.VarGen) types.CanonicalType {
	return types.Float(types.TimeUnit(types.TimeMs), types.ExtentOne())
}

func timeSeconds(g *types.VarGen) types.CanonicalType {
	return types.Float(types.TimeUnit(types.TimeSeconds), types.ExtentOne())
}

func boolOne(g *types.VarGen) types.CanonicalType {
	return types.Bool(types.ExtentOne())
}

func buildRegistry() *registry.Registry {
	r := registry.New()
	r.Register(&registry.BlockDef{
		TypeName:   "TimeRoot",
		IsTimeRoot: true,
		Capability: registry.CapabilityIO,
		Outputs:    []registry.OutputPortDef{{ID: "phaseA", Type: floatOne}},
	})
	r.Register(&registry.BlockDef{
		TypeName: "ConstFloat",
		Outputs:  []registry.OutputPortDef{{ID: "out", Type: floatOne}},
	})
	r.Register(&registry.BlockDef{
		TypeName: "ConstBool",
		Outputs:  []registry.OutputPortDef{{ID: "out", Type: boolOne}},
	})
	r.Register(&registry.BlockDef{
		TypeName: "ConstTimeMs",
		Outputs:  []registry.OutputPortDef{{ID: "out", Type: timeMs}},
	})
	r.Register(&registry.BlockDef{
		TypeName: "ConstTimeSeconds",
		Outputs:  []registry.OutputPortDef{{ID: "out", Type: timeSeconds}},
	})
	r.Register(&registry.BlockDef{
		TypeName: "ConstFieldA",
		Outputs:  []registry.OutputPortDef{{ID: "out", Type: floatMany("fieldA")}},
	})
	r.Register(&registry.BlockDef{
		TypeName: "ConstFieldB",
		Outputs:  []registry.OutputPortDef{{ID: "out", Type: floatMany("fieldB")}},
	})
	r.Register(&registry.BlockDef{
		TypeName: "Add",
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode:            registry.CardinalityPreserve,
			BroadcastPolicy: registry.BroadcastDisallow,
		},
		Inputs: []registry.InputPortDef{
			{ID: "a", Type: floatOne},
			{ID: "b", Type: floatOne},
		},
		Outputs: []registry.OutputPortDef{{ID: "out", Type: floatOne}},
	})
	r.Register(&registry.BlockDef{
		TypeName: "Gain",
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode:            registry.CardinalityPreserve,
			BroadcastPolicy: registry.BroadcastAllowZipSig,
		},
		Inputs: []registry.InputPortDef{
			{ID: "in", Type: floatOne},
			{ID: "amount", Type: floatOne},
		},
		Outputs: []registry.OutputPortDef{{ID: "out", Type: floatOne}},
	})
	r.Register(&registry.BlockDef{
		TypeName:   "State",
		Capability: registry.CapabilityState,
		Inputs:     []registry.InputPortDef{{ID: "in", Type: floatOne}},
		Outputs:    []registry.OutputPortDef{{ID: "out", Type: floatOne}},
	})
	return r
}

var _ = Describe("Infer", func() {
	var reg *registry.Registry

	BeforeEach(func() {
		reg = buildRegistry()
	})

	Context("type unification", func() {
		It("accepts two matching float signals on Add", func() {
			p := graph.Patch{
				Blocks: map[graph.BlockID]graph.Block{
					"root": {ID: "root", Type: "TimeRoot"},
					"c1":   {ID: "c1", Type: "ConstFloat"},
					"c2":   {ID: "c2", Type: "ConstFloat"},
					"add":  {ID: "add", Type: "Add"},
				},
				Edges: []graph.Edge{
					{ID: "e1", From: graph.Endpoint{"c1", "out"}, To: graph.Endpoint{"add", "a"}, Enabled: true},
					{ID: "e2", From: graph.Endpoint{"c2", "out"}, To: graph.Endpoint{"add", "b"}, Enabled: true},
				},
			}
			res := infer.Infer(p, reg)
			Expect(res.Errors).To(BeEmpty())
			Expect(res.BackendReady).To(BeTrue())
		})

		It("rejects a bool feeding a float input", func() {
			p := graph.Patch{
				Blocks: map[graph.BlockID]graph.Block{
					"root": {ID: "root", Type: "TimeRoot"},
					"c1":   {ID: "c1", Type: "ConstBool"},
					"c2":   {ID: "c2", Type: "ConstFloat"},
					"add":  {ID: "add", Type: "Add"},
				},
				Edges: []graph.Edge{
					{ID: "e1", From: graph.Endpoint{"c1", "out"}, To: graph.Endpoint{"add", "a"}, Enabled: true},
					{ID: "e2", From: graph.Endpoint{"c2", "out"}, To: graph.Endpoint{"add", "b"}, Enabled: true},
				},
			}
			res := infer.Infer(p, reg)
			Expect(res.BackendReady).To(BeFalse())
			Expect(res.Errors).To(ContainElement(HaveField("Kind", infer.ErrTypeMismatch)))
		})

		It("rejects ms feeding a seconds input with no implicit coercion", func() {
			p := graph.Patch{
				Blocks: map[graph.BlockID]graph.Block{
					"root": {ID: "root", Type: "TimeRoot"},
					"cms":  {ID: "cms", Type: "ConstTimeMs"},
					"csec": {ID: "csec", Type: "ConstTimeSeconds"},
					"add":  {ID: "add", Type: "Add"},
				},
				Edges: []graph.Edge{
					{ID: "e1", From: graph.Endpoint{"cms", "out"}, To: graph.Endpoint{"add", "a"}, Enabled: true},
					{ID: "e2", From: graph.Endpoint{"csec", "out"}, To: graph.Endpoint{"add", "b"}, Enabled: true},
				},
			}
			res := infer.Infer(p, reg)
			Expect(res.Errors).To(ContainElement(HaveField("Kind", infer.ErrUnitMismatch)))
		})
	})

	Context("cardinality and broadcast policy", func() {
		It("flags two fields of different instances feeding a disallow-broadcast Add", func() {
			p := graph.Patch{
				Blocks: map[graph.BlockID]graph.Block{
					"root": {ID: "root", Type: "TimeRoot"},
					"fa":   {ID: "fa", Type: "ConstFieldA"},
					"fb":   {ID: "fb", Type: "ConstFieldB"},
					"add":  {ID: "add", Type: "Add"},
				},
				Edges: []graph.Edge{
					{ID: "e1", From: graph.Endpoint{"fa", "out"}, To: graph.Endpoint{"add", "a"}, Enabled: true},
					{ID: "e2", From: graph.Endpoint{"fb", "out"}, To: graph.Endpoint{"add", "b"}, Enabled: true},
				},
			}
			res := infer.Infer(p, reg)
			Expect(res.Errors).To(ContainElement(HaveField("Kind", infer.ErrInstanceMismatch)))
		})

		It("rejects a signal feeding a field input on a disallow-broadcast Add", func() {
			p := graph.Patch{
				Blocks: map[graph.BlockID]graph.Block{
					"root": {ID: "root", Type: "TimeRoot"},
					"c1":   {ID: "c1", Type: "ConstFloat"},
					"fa":   {ID: "fa", Type: "ConstFieldA"},
					"add":  {ID: "add", Type: "Add"},
				},
				Edges: []graph.Edge{
					{ID: "e1", From: graph.Endpoint{"c1", "out"}, To: graph.Endpoint{"add", "a"}, Enabled: true},
					{ID: "e2", From: graph.Endpoint{"fa", "out"}, To: graph.Endpoint{"add", "b"}, Enabled: true},
				},
			}
			res := infer.Infer(p, reg)
			Expect(res.Errors).To(ContainElement(HaveField("Kind", infer.ErrImplicitBroadcastDisallowed)))
		})

		It("allows a signal feeding a field input on a zip-sig Gain", func() {
			p := graph.Patch{
				Blocks: map[graph.BlockID]graph.Block{
					"root": {ID: "root", Type: "TimeRoot"},
					"fa":   {ID: "fa", Type: "ConstFieldA"},
					"c1":   {ID: "c1", Type: "ConstFloat"},
					"gain": {ID: "gain", Type: "Gain"},
				},
				Edges: []graph.Edge{
					{ID: "e1", From: graph.Endpoint{"fa", "out"}, To: graph.Endpoint{"gain", "in"}, Enabled: true},
					{ID: "e2", From: graph.Endpoint{"c1", "out"}, To: graph.Endpoint{"gain", "amount"}, Enabled: true},
				},
			}
			res := infer.Infer(p, reg)
			Expect(res.Errors).To(BeEmpty())
		})
	})

	Context("cycle detection", func() {
		It("allows a cycle crossing a stateful block", func() {
			p := graph.Patch{
				Blocks: map[graph.BlockID]graph.Block{
					"root":  {ID: "root", Type: "TimeRoot"},
					"add":   {ID: "add", Type: "Add"},
					"state": {ID: "state", Type: "State"},
					"c1":    {ID: "c1", Type: "ConstFloat"},
				},
				Edges: []graph.Edge{
					{ID: "e1", From: graph.Endpoint{"state", "out"}, To: graph.Endpoint{"add", "a"}, Enabled: true},
					{ID: "e2", From: graph.Endpoint{"c1", "out"}, To: graph.Endpoint{"add", "b"}, Enabled: true},
					{ID: "e3", From: graph.Endpoint{"add", "out"}, To: graph.Endpoint{"state", "in"}, Enabled: true},
				},
			}
			res := infer.Infer(p, reg)
			for _, e := range res.Errors {
				Expect(e.Kind).NotTo(Equal(infer.ErrCycleDetected))
			}
		})

		It("rejects a cycle with no stateful boundary", func() {
			p := graph.Patch{
				Blocks: map[graph.BlockID]graph.Block{
					"root": {ID: "root", Type: "TimeRoot"},
					"add1": {ID: "add1", Type: "Add"},
					"add2": {ID: "add2", Type: "Add"},
					"c1":   {ID: "c1", Type: "ConstFloat"},
				},
				Edges: []graph.Edge{
					{ID: "e1", From: graph.Endpoint{"add2", "out"}, To: graph.Endpoint{"add1", "a"}, Enabled: true},
					{ID: "e2", From: graph.Endpoint{"c1", "out"}, To: graph.Endpoint{"add1", "b"}, Enabled: true},
					{ID: "e3", From: graph.Endpoint{"add1", "out"}, To: graph.Endpoint{"add2", "a"}, Enabled: true},
					{ID: "e4", From: graph.Endpoint{"c1", "out"}, To: graph.Endpoint{"add2", "b"}, Enabled: true},
				},
			}
			res := infer.Infer(p, reg)
			Expect(res.Errors).To(ContainElement(HaveField("Kind", infer.ErrCycleDetected)))
		})
	})
})
