package blocks

import "github.com/patchc/compiler/internal/types"

// toFloat coerces a raw Params/Param value (as authored in a patch
// file, so int/int64/float64/bool all show up depending on the
// author's JSON/YAML literal) to a float64, defaulting to 0 for
// anything else.
func toFloat(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// coerceLiteral converts a raw Param value into the Go value
// Builder.Constant expects for the given resolved payload kind, for
// the payload-generic literal blocks (Const, DefaultSource) whose
// output type is only known after inference resolves their payload
// variable.
func coerceLiteral(kind types.PayloadKind, raw interface{}) interface{} {
	switch kind {
	case types.PayloadBool:
		b, _ := raw.(bool)
		return b
	case types.PayloadInt:
		return int64(toFloat(raw))
	default:
		return toFloat(raw)
	}
}
