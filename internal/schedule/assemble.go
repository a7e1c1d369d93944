package schedule

import (
	"fmt"
	"sort"

	"github.com/patchc/compiler/internal/bind"
	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/ir"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

const defaultPeriodMs = 1000.0 / 60.0

// Assemble is the Scheduler/Program Assembler (spec.md 4.G): given the
// order the IR was built in, the build itself, and the Binder's
// output, it linearizes steps, gathers instances and state mappings,
// derives the time model, and computes the provenance maps the
// Fast-path Patcher (internal/hotpatch) consults.
func Assemble(p graph.Patch, reg *registry.Registry, order []graph.BlockID, build *ir.BuildResult, bindIn bind.BindInputs, binding bind.BindingResult) (*CompiledProgram, error) {
	steps := bind.ApplyBinding(bindIn, binding)

	instances := map[types.InstanceRef]InstanceDecl{}
	for _, res := range build.ByBlock {
		if res.Effects == nil {
			continue
		}
		for _, d := range res.Effects.InstanceDecls {
			instances[d.InstanceID] = InstanceDecl{
				InstanceID: d.InstanceID,
				Count:      d.Count,
				MaxCount:   d.MaxCount,
				Stride:     d.Stride,
			}
		}
	}

	mappings, err := stateMappings(build, binding)
	if err != nil {
		return nil, err
	}

	timeModel := deriveTimeModel(p, reg)
	constProv, instProv := deriveProvenance(p, reg, build)
	slotMeta, debugIndex, eventSlots := buildSlotMeta(build, binding)

	sched := &ScheduleIR{
		Order:          order,
		Steps:          steps,
		Instances:      instances,
		StateMappings:  mappings,
		TimeModel:      timeModel,
		StateSlotCount: len(binding.StateMap),
		EventSlotCount: eventSlots,
		EventCount:     eventSlots,
	}

	return &CompiledProgram{
		SlotMeta:                slotMeta,
		ValueExprs:              build.Graph,
		Schedule:                sched,
		Instances:               instances,
		ConstantProvenance:      constProv,
		InstanceCountProvenance: instProv,
		DebugIndex:              debugIndex,
	}, nil
}

// buildSlotMeta flattens BoundOutputs and StateMap into the SlotMeta/
// DebugIndex tables debugging tools consult by label rather than by
// slot number, and counts how many bound outputs carry an event
// payload (spec.md glossary: events get their own slot-count tally,
// distinct from continuous state).
func buildSlotMeta(build *ir.BuildResult, binding bind.BindingResult) ([]SlotMeta, map[string]int, int) {
	var meta []SlotMeta
	debugIndex := map[string]int{}
	eventSlots := 0

	var labels []string
	for label := range binding.BoundOutputs {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		slot := binding.BoundOutputs[label]
		t := outputTypeOf(build, label)
		meta = append(meta, SlotMeta{Slot: slot, DebugLabel: label, Type: t})
		debugIndex[label] = slot
		if t.Payload.Kind == types.PayloadEvent {
			eventSlots++
		}
	}

	var stateKeys []string
	for k := range binding.StateMap {
		stateKeys = append(stateKeys, k)
	}
	sort.Strings(stateKeys)
	for _, k := range stateKeys {
		slot := binding.StateMap[k]
		meta = append(meta, SlotMeta{Slot: slot, DebugLabel: k, IsState: true})
		debugIndex[k] = slot
	}

	return meta, debugIndex, eventSlots
}

func outputTypeOf(build *ir.BuildResult, label string) types.CanonicalType {
	for blockID, res := range build.ByBlock {
		for portID, ref := range res.OutputsByID {
			if bind.DebugLabel(blockID, portID) == label {
				return ref.Type
			}
		}
	}
	return types.CanonicalType{}
}

func stateMappings(build *ir.BuildResult, binding bind.BindingResult) ([]StateMapping, error) {
	keys := make([]string, 0, len(build.StateDecls))
	for k := range build.StateDecls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []StateMapping
	for _, k := range keys {
		decl := build.StateDecls[k]
		slot, ok := binding.StateMap[k]
		if !ok {
			return nil, fmt.Errorf("schedule: stateDecl %q has no bound slot", k)
		}
		out = append(out, StateMapping{
			StableStateID: k,
			Slot:          slot,
			Stride:        decl.Stride,
			InstanceID:    decl.InstanceID,
			IsField:       decl.InstanceID != "" || decl.LaneCount > 1,
		})
	}
	return out, nil
}

// deriveTimeModel finds the patch's TimeRoot block (Normalize already
// guarantees exactly one) and reads its tick period from Params,
// falling back to a 60Hz default if absent or malformed.
func deriveTimeModel(p graph.Patch, reg *registry.Registry) TimeModel {
	period := defaultPeriodMs
	for _, b := range p.Blocks {
		def, ok := reg.Lookup(b.Type)
		if !ok || !def.IsTimeRoot {
			continue
		}
		if v, ok := b.Params["periodMs"]; ok {
			switch n := v.(type) {
			case float64:
				period = n
			case int:
				period = float64(n)
			}
		}
		break
	}
	return TimeModel{
		PeriodMs:   period,
		Rails:      []registry.TimeRail{registry.RailPhaseA, registry.RailDt},
		ResetEpoch: 0,
	}
}

// deriveProvenance walks every bound output, splitting it between
// instanceCountProvenance (an edge feeding a CardinalityOverride
// block's "count" port) and constantProvenance (any output whose value
// depends only on Const expr nodes, possibly through Op nodes, with no
// Time/StateRead ancestor) — the two shapes of fast-path patch spec.md
// 4.H allows.
// A label is never in both: an instance's count source is reported only
// under instanceCountProvenance, since the hotpatcher treats resizing an
// instance and rewriting an ordinary constant as distinct operations.
func deriveProvenance(p graph.Patch, reg *registry.Registry, build *ir.BuildResult) (map[string]ConstantProvenance, map[string]types.InstanceRef) {
	constProv := map[string]ConstantProvenance{}
	instProv := map[string]types.InstanceRef{}

	for _, e := range p.Edges {
		if !e.Enabled || e.To.PortID != "count" {
			continue
		}
		destBlock, ok := p.Blocks[e.To.BlockID]
		if !ok {
			continue
		}
		destDef, ok := reg.Lookup(destBlock.Type)
		if !ok || destDef.CardinalityPolicy.Mode != registry.CardinalityOverride {
			continue
		}
		res, ok := build.ByBlock[e.To.BlockID]
		if !ok || res.Effects == nil {
			continue
		}
		label := bind.DebugLabel(e.From.BlockID, e.From.PortID)
		for _, d := range res.Effects.InstanceDecls {
			instProv[label] = d.InstanceID
		}
	}

	for blockID, res := range build.ByBlock {
		for portID, ref := range res.OutputsByID {
			label := bind.DebugLabel(blockID, portID)
			if _, ok := instProv[label]; ok {
				continue
			}
			if !isPureConstChain(build.Graph, ref.ExprID) {
				continue
			}
			constProv[label] = ConstantProvenance{
				PayloadKind:      ref.Type.Payload.Kind,
				ComponentExprIDs: collectConstChain(build.Graph, ref.ExprID),
			}
		}
	}
	return constProv, instProv
}

func isPureConstChain(g *ir.Graph, id int) bool {
	node := g.Node(ir.ExprID(id))
	switch node.Kind {
	case ir.ExprConst:
		return true
	case ir.ExprOp:
		for _, in := range node.Inputs {
			if !isPureConstChain(g, int(in)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func collectConstChain(g *ir.Graph, id int) []ir.ExprID {
	node := g.Node(ir.ExprID(id))
	var ids []ir.ExprID
	if node.Kind == ir.ExprConst {
		ids = append(ids, node.ID)
	}
	for _, in := range node.Inputs {
		ids = append(ids, collectConstChain(g, int(in))...)
	}
	return ids
}
