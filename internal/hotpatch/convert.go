package hotpatch

import (
	"math"

	"github.com/patchc/compiler/internal/ir"
	"github.com/patchc/compiler/internal/types"
)

// coerceConst converts an untyped raw change value (as would arrive
// from JSON decoding an editor request) into the ConstValue shape kind
// expects, failing rather than guessing on a shape mismatch.
func coerceConst(kind types.PayloadKind, raw interface{}) (ir.ConstValue, bool) {
	switch kind {
	case types.PayloadFloat:
		f, ok := asFloat(raw)
		if !ok {
			return ir.ConstValue{}, false
		}
		return ir.ConstValue{Kind: types.PayloadFloat, Float: f}, true
	case types.PayloadInt:
		f, ok := asFloat(raw)
		if !ok {
			return ir.ConstValue{}, false
		}
		return ir.ConstValue{Kind: types.PayloadInt, Int: int64(f)}, true
	case types.PayloadBool:
		b, ok := raw.(bool)
		if !ok {
			return ir.ConstValue{}, false
		}
		return ir.ConstValue{Kind: types.PayloadBool, Bool: b}, true
	case types.PayloadVec2:
		v, ok := asFloatSlice(raw, 2)
		if !ok {
			return ir.ConstValue{}, false
		}
		return ir.ConstValue{Kind: types.PayloadVec2, Vec2: [2]float64{v[0], v[1]}}, true
	case types.PayloadVec3:
		v, ok := asFloatSlice(raw, 3)
		if !ok {
			return ir.ConstValue{}, false
		}
		return ir.ConstValue{Kind: types.PayloadVec3, Vec3: [3]float64{v[0], v[1], v[2]}}, true
	case types.PayloadColor:
		v, ok := asFloatSlice(raw, 4)
		if !ok {
			return ir.ConstValue{}, false
		}
		return ir.ConstValue{Kind: types.PayloadColor, Color: [4]float64{v[0], v[1], v[2], v[3]}}, true
	default:
		return ir.ConstValue{}, false
	}
}

func coerceCount(raw interface{}) (int, bool) {
	f, ok := asFloat(raw)
	if !ok {
		return 0, false
	}
	return int(math.Floor(f)), true
}

func asFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func asFloatSlice(raw interface{}, n int) ([]float64, bool) {
	switch v := raw.(type) {
	case []float64:
		if len(v) != n {
			return nil, false
		}
		return v, true
	case [2]float64:
		if n != 2 {
			return nil, false
		}
		return v[:], true
	case [3]float64:
		if n != 3 {
			return nil, false
		}
		return v[:], true
	case [4]float64:
		if n != 4 {
			return nil, false
		}
		return v[:], true
	default:
		return nil, false
	}
}
