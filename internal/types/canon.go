package types

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser mirrors the teacher's core/emu.go toTitleCase helper (built
// on the same golang.org/x/text/cases API, replacing the deprecated
// strings.Title), reused here to canonicalize payload/unit spellings
// authored in YAML patch/registry files before they are matched against
// the fixed vocabularies below.
var titleCaser = cases.Title(language.English)

// CanonicalizeSpelling normalizes a user-authored token (e.g. "FLOAT",
// "float", "Float") to a single spelling ("Float" style capitalized
// first letter, lower remainder), the form ParsePayloadKind, ParseUnit
// and the registry's manifest parsers match against, so YAML-authored
// patches don't need to match case exactly. PayloadKind.String() and
// UnitKind.String() use a different, lower-case spelling.
func CanonicalizeSpelling(s string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(s)))
}

// ParsePayloadKind resolves a canonicalized spelling to a PayloadKind.
func ParsePayloadKind(s string) (PayloadKind, bool) {
	switch CanonicalizeSpelling(s) {
	case "Float":
		return PayloadFloat, true
	case "Int":
		return PayloadInt, true
	case "Bool":
		return PayloadBool, true
	case "Vec2":
		return PayloadVec2, true
	case "Vec3":
		return PayloadVec3, true
	case "Color":
		return PayloadColor, true
	case "Cameraprojection":
		return PayloadCameraProjection, true
	case "Shape2d":
		return PayloadShape2D, true
	case "Event":
		return PayloadEvent, true
	default:
		return 0, false
	}
}

// ParseUnit resolves a canonicalized unit spelling (plus angle/time
// sub-mode where applicable) to a Unit.
func ParseUnit(kind, mode string) (Unit, bool) {
	switch CanonicalizeSpelling(kind) {
	case "Scalar":
		return ScalarUnit(), true
	case "Count":
		return CountUnit(), true
	case "None":
		return NoneUnit(), true
	case "Color":
		return Unit{Kind: UnitColor}, true
	case "Angle":
		switch CanonicalizeSpelling(mode) {
		case "Radians":
			return AngleUnit(AngleRadians), true
		case "Degrees":
			return AngleUnit(AngleDegrees), true
		default:
			return AngleUnit(AngleTurns), true
		}
	case "Time":
		if CanonicalizeSpelling(mode) == "Seconds" {
			return TimeUnit(TimeSeconds), true
		}
		return TimeUnit(TimeMs), true
	default:
		return Unit{}, false
	}
}
