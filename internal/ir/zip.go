package ir

import (
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/types"
)

// zipAuto combines refs into a single Op node (spec.md 4.E): the
// output type is the join of the input types, with the longest-stride
// (cardinality many) operand's extent winning and shorter
// (cardinality one) operands broadcasting into it. Payload/unit
// agreement was already enforced by the inference engine; this only
// reconciles extent.
func zipAuto(ctx registry.LowerContext, code registry.OpCode, refs ...registry.ValueRef) registry.ValueRef {
	return ctx.Op(code, joinRefTypes(refs), refs...)
}

// mapAuto is zipAuto specialized to one operand, for elementwise unary
// ops such as Wrap01 or Cast.
func mapAuto(ctx registry.LowerContext, code registry.OpCode, ref registry.ValueRef) registry.ValueRef {
	return zipAuto(ctx, code, ref)
}

func joinRefTypes(refs []registry.ValueRef) types.CanonicalType {
	if len(refs) == 0 {
		return types.CanonicalType{}
	}
	joined := refs[0].Type
	for _, r := range refs[1:] {
		if r.Type.Extent.Cardinality == types.CardinalityMany {
			joined.Extent = r.Type.Extent
		}
	}
	return joined
}
