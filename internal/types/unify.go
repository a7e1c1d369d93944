package types

import "fmt"

// UnifyErrorKind tags why unification failed.
type UnifyErrorKind string

const (
	PayloadConflict     UnifyErrorKind = "PayloadConflict"
	UnitConflict        UnifyErrorKind = "UnitConflict"
	CardinalityConflict UnifyErrorKind = "CardinalityConflict"
	TemporalityConflict UnifyErrorKind = "TemporalityConflict"
)

// UnifyError is returned by Unify when two types cannot be made equal.
type UnifyError struct {
	Kind    UnifyErrorKind
	Message string
}

func (e *UnifyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newUnifyError(kind UnifyErrorKind, format string, args ...interface{}) *UnifyError {
	return &UnifyError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Substitution maps payload/unit variable ids to their resolved (and
// possibly still-variable) form. The zero value is usable.
type Substitution struct {
	payload map[int]Payload
	unit    map[int]Unit
}

// NewSubstitution returns an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{payload: map[int]Payload{}, unit: map[int]Unit{}}
}

func (s *Substitution) ensure() {
	if s.payload == nil {
		s.payload = map[int]Payload{}
	}
	if s.unit == nil {
		s.unit = map[int]Unit{}
	}
}

// ResolvePayload follows variable bindings until it reaches a concrete
// payload or an unbound variable. A binding cycle is reported as an
// occurs-check violation.
func (s *Substitution) ResolvePayload(p Payload) (Payload, error) {
	seen := map[int]bool{}
	for IsPayloadVar(p) {
		if seen[p.VarID] {
			return p, fmt.Errorf("occurs-check: payload variable cycle at ?p%d", p.VarID)
		}
		seen[p.VarID] = true
		next, ok := s.payload[p.VarID]
		if !ok {
			return p, nil
		}
		p = next
	}
	return p, nil
}

// ResolveUnit follows variable bindings until it reaches a concrete unit
// or an unbound variable.
func (s *Substitution) ResolveUnit(u Unit) (Unit, error) {
	seen := map[int]bool{}
	for IsUnitVar(u) {
		if seen[u.VarID] {
			return u, fmt.Errorf("occurs-check: unit variable cycle at ?u%d", u.VarID)
		}
		seen[u.VarID] = true
		next, ok := s.unit[u.VarID]
		if !ok {
			return u, nil
		}
		u = next
	}
	return u, nil
}

// Apply resolves every variable in t to its current binding. It fails if
// an occurs-check (binding cycle) is detected.
func (s *Substitution) Apply(t CanonicalType) (CanonicalType, error) {
	p, err := s.ResolvePayload(t.Payload)
	if err != nil {
		return t, err
	}
	u, err := s.ResolveUnit(t.Unit)
	if err != nil {
		return t, err
	}
	t.Payload = p
	t.Unit = u
	return t, nil
}

func (s *Substitution) bindPayload(varID int, p Payload) {
	s.ensure()
	s.payload[varID] = p
}

func (s *Substitution) bindUnit(varID int, u Unit) {
	s.ensure()
	s.unit[varID] = u
}

func (s *Substitution) unifyPayload(a, b Payload) error {
	ra, err := s.ResolvePayload(a)
	if err != nil {
		return err
	}
	rb, err := s.ResolvePayload(b)
	if err != nil {
		return err
	}
	switch {
	case IsPayloadVar(ra) && IsPayloadVar(rb):
		if ra.VarID != rb.VarID {
			s.bindPayload(ra.VarID, rb)
		}
	case IsPayloadVar(ra):
		s.bindPayload(ra.VarID, rb)
	case IsPayloadVar(rb):
		s.bindPayload(rb.VarID, ra)
	case ra.Kind != rb.Kind:
		return newUnifyError(PayloadConflict, "payload %s incompatible with %s", ra, rb)
	}
	return nil
}

func (s *Substitution) unifyUnit(a, b Unit) error {
	ra, err := s.ResolveUnit(a)
	if err != nil {
		return err
	}
	rb, err := s.ResolveUnit(b)
	if err != nil {
		return err
	}
	switch {
	case IsUnitVar(ra) && IsUnitVar(rb):
		if ra.VarID != rb.VarID {
			s.bindUnit(ra.VarID, rb)
		}
	case IsUnitVar(ra):
		s.bindUnit(ra.VarID, rb)
	case IsUnitVar(rb):
		s.bindUnit(rb.VarID, ra)
	case ra.Kind != rb.Kind:
		return newUnifyError(UnitConflict, "unit %s incompatible with %s", ra, rb)
	case ra.Kind == UnitAngle && ra.Angle != rb.Angle:
		return newUnifyError(UnitConflict, "angle mode %s incompatible with %s", ra, rb)
	case ra.Kind == UnitTime && ra.Time != rb.Time:
		// No implicit coercion between ms and seconds: cast blocks are the
		// only path between concrete units, per spec.md 4.A.
		return newUnifyError(UnitConflict, "time unit %s incompatible with %s (no implicit coercion)", ra, rb)
	case ra.Kind == UnitSpace && (ra.SpaceUnits != rb.SpaceUnits || ra.SpaceDims != rb.SpaceDims):
		return newUnifyError(UnitConflict, "space unit %s incompatible with %s", ra, rb)
	}
	return nil
}

func (s *Substitution) unifyExtent(a, b Extent) error {
	if a.Temporality != b.Temporality {
		return newUnifyError(TemporalityConflict, "temporality %v incompatible with %v", a.Temporality, b.Temporality)
	}
	if a.Cardinality != b.Cardinality {
		return newUnifyError(CardinalityConflict, "cardinality %v incompatible with %v", a.Cardinality, b.Cardinality)
	}
	if a.Cardinality == CardinalityMany && a.Instance != b.Instance {
		return newUnifyError(CardinalityConflict, "instance %s incompatible with %s", a.Instance, b.Instance)
	}
	return nil
}

// Unify performs classical Robinson-style unification of t1 and t2,
// independently for payload and unit variables, and structurally for
// extent. It returns the substitution that makes t1 and t2 equal, or a
// *UnifyError tagged with the conflicting facet.
func Unify(t1, t2 CanonicalType) (*Substitution, error) {
	s := NewSubstitution()
	if err := s.unifyPayload(t1.Payload, t2.Payload); err != nil {
		return nil, err
	}
	if err := s.unifyUnit(t1.Unit, t2.Unit); err != nil {
		return nil, err
	}
	if err := s.unifyExtent(t1.Extent, t2.Extent); err != nil {
		return nil, err
	}
	return s, nil
}

// UnifyContent unifies only the payload and unit facets of t1 and t2
// against s's existing bindings, ignoring extent. Blocks whose
// cardinality policy is "preserve" (spec.md 4.D rule 3) accept any
// extent on their inputs and derive their own from a separate join
// step, so edge-level unification for those ports must not reject a
// cardinality difference that the join step is about to reconcile.
func (s *Substitution) UnifyContent(t1, t2 CanonicalType) error {
	if err := s.unifyPayload(t1.Payload, t2.Payload); err != nil {
		return err
	}
	return s.unifyUnit(t1.Unit, t2.Unit)
}

// UnifyInto unifies t1 and t2 directly against s's existing bindings,
// extending s in place rather than allocating a fresh substitution.
// Callers that need to accumulate constraints from many pairs of types
// one at a time (e.g. the inference engine walking every edge of a
// patch) should use this instead of Unify+Merge, since Unify alone has
// no visibility into bindings already recorded in s.
func (s *Substitution) UnifyInto(t1, t2 CanonicalType) error {
	if err := s.unifyPayload(t1.Payload, t2.Payload); err != nil {
		return err
	}
	if err := s.unifyUnit(t1.Unit, t2.Unit); err != nil {
		return err
	}
	return s.unifyExtent(t1.Extent, t2.Extent)
}

// Merge folds other's bindings into s, unifying any variable id bound in
// both. Used to accumulate constraints across many edges during
// inference.
func (s *Substitution) Merge(other *Substitution) error {
	s.ensure()
	for id, p := range other.payload {
		if existing, ok := s.payload[id]; ok {
			if err := s.unifyPayload(existing, p); err != nil {
				return err
			}
			continue
		}
		s.payload[id] = p
	}
	for id, u := range other.unit {
		if existing, ok := s.unit[id]; ok {
			if err := s.unifyUnit(existing, u); err != nil {
				return err
			}
			continue
		}
		s.unit[id] = u
	}
	return nil
}

// RequireResolved asserts that t carries no unresolved payload/unit
// variables, returning a descriptive error (for the caller, typically
// registry.RequireInst building a registry.LoweringError, to wrap)
// otherwise. Mirrors the source's
// requireInst assertion helper.
func RequireResolved(t CanonicalType, name string) error {
	if !IsFullyResolved(t) {
		return fmt.Errorf("%s: type %s is not fully resolved", name, t)
	}
	return nil
}
