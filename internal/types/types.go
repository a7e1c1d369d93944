// Package types defines the canonical value type carried on every patch
// port, edge, and internal signal: payload x unit x extent, plus an
// optional contract. Constructors are pure, equality is structural, and
// unification follows classical Robinson resolution over payload and
// unit variables independently.
package types

import "fmt"

// PayloadKind enumerates the closed set of payload shapes a signal can
// carry, or PayloadVar for an as-yet-unresolved payload variable.
type PayloadKind int

const (
	PayloadFloat PayloadKind = iota
	PayloadInt
	PayloadBool
	PayloadVec2
	PayloadVec3
	PayloadColor
	PayloadCameraProjection
	PayloadShape2D
	PayloadEvent
	PayloadVar
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadFloat:
		return "float"
	case PayloadInt:
		return "int"
	case PayloadBool:
		return "bool"
	case PayloadVec2:
		return "vec2"
	case PayloadVec3:
		return "vec3"
	case PayloadColor:
		return "color"
	case PayloadCameraProjection:
		return "cameraProjection"
	case PayloadShape2D:
		return "shape2d"
	case PayloadEvent:
		return "event"
	case PayloadVar:
		return "var"
	default:
		return "unknown"
	}
}

// Payload is a concrete payload kind or an unresolved payload variable
// (Kind == PayloadVar, VarID identifies it).
type Payload struct {
	Kind  PayloadKind
	VarID int
}

// IsPayloadVar reports whether p is an unresolved payload variable.
func IsPayloadVar(p Payload) bool {
	return p.Kind == PayloadVar
}

func (p Payload) String() string {
	if IsPayloadVar(p) {
		return fmt.Sprintf("?p%d", p.VarID)
	}
	return p.Kind.String()
}

// UnitKind enumerates the closed set of unit families.
type UnitKind int

const (
	UnitScalar UnitKind = iota
	UnitCount
	UnitAngle
	UnitTime
	UnitSpace
	UnitColor
	UnitNone
	UnitVar
)

func (k UnitKind) String() string {
	switch k {
	case UnitScalar:
		return "scalar"
	case UnitCount:
		return "count"
	case UnitAngle:
		return "angle"
	case UnitTime:
		return "time"
	case UnitSpace:
		return "space"
	case UnitColor:
		return "color"
	case UnitNone:
		return "none"
	case UnitVar:
		return "var"
	default:
		return "unknown"
	}
}

// AngleMode distinguishes angle sub-units.
type AngleMode int

const (
	AngleTurns AngleMode = iota
	AngleRadians
	AngleDegrees
)

// TimeMode distinguishes time sub-units.
type TimeMode int

const (
	TimeMs TimeMode = iota
	TimeSeconds
)

// Unit is a concrete unit or an unresolved unit variable (Kind ==
// UnitVar). Angle/Time/SpaceUnits/SpaceDims are only meaningful for the
// matching Kind.
type Unit struct {
	Kind       UnitKind
	VarID      int
	Angle      AngleMode
	Time       TimeMode
	SpaceUnits string
	SpaceDims  int
}

// IsUnitVar reports whether u is an unresolved unit variable.
func IsUnitVar(u Unit) bool {
	return u.Kind == UnitVar
}

func (u Unit) String() string {
	switch u.Kind {
	case UnitVar:
		return fmt.Sprintf("?u%d", u.VarID)
	case UnitAngle:
		switch u.Angle {
		case AngleTurns:
			return "angle{turns}"
		case AngleRadians:
			return "angle{radians}"
		default:
			return "angle{degrees}"
		}
	case UnitTime:
		if u.Time == TimeMs {
			return "time{ms}"
		}
		return "time{seconds}"
	case UnitSpace:
		return fmt.Sprintf("space{%s,%d}", u.SpaceUnits, u.SpaceDims)
	default:
		return u.Kind.String()
	}
}

// Temporality distinguishes continuous (per-frame) signals from discrete
// (event) signals.
type Temporality int

const (
	Continuous Temporality = iota
	Discrete
)

// Cardinality distinguishes a single signal from a per-lane field.
type Cardinality int

const (
	CardinalityOne Cardinality = iota
	CardinalityMany
)

// InstanceRef names the array/field instance a many-cardinality value
// belongs to. Two many-cardinality values must share an InstanceRef to
// be combined pointwise.
type InstanceRef string

// LaneCoupling distinguishes lane-local operations (safe in any
// cardinality context) from lane-coupled ones (reductions, which cross
// lanes and are disallowed in a generic-cardinality context).
type LaneCoupling int

const (
	LaneLocal LaneCoupling = iota
	LaneCoupled
)

// Extent is the temporal/cardinality facet of a CanonicalType.
type Extent struct {
	Temporality  Temporality
	Cardinality  Cardinality
	Instance     InstanceRef
	LaneCoupling LaneCoupling
}

// Contract names an optional value-level invariant attached to a type,
// e.g. "wrap01" for a phase signal normalized to [0,1).
type Contract string

const (
	NoContract Contract = ""
	Wrap01     Contract = "wrap01"
)

// CanonicalType is the fully general type carried on a port, edge, or
// internal signal. Equality is structural (the struct has no slice/map
// fields, so == works directly).
type CanonicalType struct {
	Payload  Payload
	Unit     Unit
	Extent   Extent
	Contract Contract
}

// Equal reports structural equality.
func (t CanonicalType) Equal(o CanonicalType) bool {
	return t == o
}

func (t CanonicalType) String() string {
	card := "one"
	if t.Extent.Cardinality == CardinalityMany {
		card = fmt.Sprintf("many(%s)", t.Extent.Instance)
	}
	c := ""
	if t.Contract != NoContract {
		c = " #" + string(t.Contract)
	}
	return fmt.Sprintf("%s/%s/%s%s", t.Payload, t.Unit, card, c)
}

// IsFullyResolved reports whether t carries no payload or unit
// variables.
func IsFullyResolved(t CanonicalType) bool {
	return !IsPayloadVar(t.Payload) && !IsUnitVar(t.Unit)
}

// --- constructors -----------------------------------------------------

func Float(u Unit, e Extent) CanonicalType {
	return CanonicalType{Payload: Payload{Kind: PayloadFloat}, Unit: u, Extent: e}
}

func Int(u Unit, e Extent) CanonicalType {
	return CanonicalType{Payload: Payload{Kind: PayloadInt}, Unit: u, Extent: e}
}

func Bool(e Extent) CanonicalType {
	return CanonicalType{Payload: Payload{Kind: PayloadBool}, Unit: Unit{Kind: UnitNone}, Extent: e}
}

func Vec2(u Unit, e Extent) CanonicalType {
	return CanonicalType{Payload: Payload{Kind: PayloadVec2}, Unit: u, Extent: e}
}

func Vec3(u Unit, e Extent) CanonicalType {
	return CanonicalType{Payload: Payload{Kind: PayloadVec3}, Unit: u, Extent: e}
}

func Color(e Extent) CanonicalType {
	return CanonicalType{Payload: Payload{Kind: PayloadColor}, Unit: Unit{Kind: UnitColor}, Extent: e}
}

func Event(e Extent) CanonicalType {
	return CanonicalType{Payload: Payload{Kind: PayloadEvent}, Unit: Unit{Kind: UnitNone}, Extent: e}
}

// ExtentOne is the common "single continuous signal" extent.
func ExtentOne() Extent {
	return Extent{Temporality: Continuous, Cardinality: CardinalityOne, LaneCoupling: LaneLocal}
}

// ExtentMany builds a per-lane field extent over the given instance.
func ExtentMany(instance InstanceRef, laneCoupling LaneCoupling) Extent {
	return Extent{Temporality: Continuous, Cardinality: CardinalityMany, Instance: instance, LaneCoupling: laneCoupling}
}

func ScalarUnit() Unit        { return Unit{Kind: UnitScalar} }
func CountUnit() Unit         { return Unit{Kind: UnitCount} }
func NoneUnit() Unit          { return Unit{Kind: UnitNone} }
func AngleUnit(m AngleMode) Unit { return Unit{Kind: UnitAngle, Angle: m} }
func TimeUnit(m TimeMode) Unit   { return Unit{Kind: UnitTime, Time: m} }
func SpaceUnit(units string, dims int) Unit {
	return Unit{Kind: UnitSpace, SpaceUnits: units, SpaceDims: dims}
}
