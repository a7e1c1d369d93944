package blocks

import (
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

const defaultArrayCount = 1
const defaultArrayMaxCount = 16

// arrayDef introduces a field instance (spec.md 4.G InstanceDecl):
// cardinality override, no join with anything upstream. Count/maxCount
// are read straight off the block's own Params rather than derived
// from the "count" port's wired value — the port exists only so an
// author can wire a Const into it and make the count fast-path
// patchable (internal/hotpatch), matching spec.md S6.
//
// TypeTemplate has no way to see which block instance it is being
// evaluated for (spec.md 4.D seeds it from a VarGen alone), so every
// Array instance's declared output Extent names the same, shared
// InstanceRef ("array") at inference time; Lower patches the instance's
// real ValueRef.Type.Instance to its own instance id before handing it
// downstream, so the IR two Array instances actually produce is
// correctly disjoint even though the inference-time port-type snapshot
// cannot distinguish them. A patch with more than one Array instance
// feeding the same joining block is therefore not caught by
// E_INSTANCE_MISMATCH the way two genuinely distinct instances should
// be; this is a limitation of the static TypeTemplate shape, not
// something this catalog can fix on its own.
func arrayDef() *registry.BlockDef {
	return &registry.BlockDef{
		TypeName:   "Array",
		Capability: registry.CapabilityPure,
		CardinalityPolicy: registry.CardinalityPolicy{
			Mode: registry.CardinalityOverride,
		},
		Inputs: []registry.InputPortDef{
			{ID: "count", ExposedAsPort: true, Type: func(g *types.VarGen) types.CanonicalType {
				return types.Int(types.CountUnit(), types.ExtentOne())
			}},
		},
		Outputs: []registry.OutputPortDef{{ID: "out", Type: func(g *types.VarGen) types.CanonicalType {
			return types.Float(types.ScalarUnit(), types.ExtentMany("array", types.LaneLocal))
		}}},
		Lower: func(ctx registry.LowerContext) (registry.LowerResult, error) {
			instanceID := types.InstanceRef(ctx.InstanceID())

			count := defaultArrayCount
			if raw, ok := ctx.Param("count"); ok {
				count = int(toFloat(raw))
			}
			maxCount := defaultArrayMaxCount
			if raw, ok := ctx.Param("maxCount"); ok {
				maxCount = int(toFloat(raw))
			}
			if maxCount < count {
				maxCount = count
			}

			outType := ctx.OutType("out")
			outType.Extent.Instance = instanceID

			return registry.LowerResult{
				OutputsByID: map[string]registry.ValueRef{
					"out": ctx.Constant(0.0, outType),
				},
				Effects: &registry.LowerEffects{
					InstanceDecls: []registry.InstanceDecl{
						{InstanceID: instanceID, Count: count, MaxCount: maxCount, Stride: 1},
					},
				},
			}, nil
		},
	}
}
