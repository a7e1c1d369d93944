package registry

import "fmt"

// Registry is a mapping from block-type name to BlockDef. Grounded on
// the teacher's confignew.NameIDBinding and program.ISA: an append-once
// table that is nonetheless idempotent under re-registration (so a
// block package can be (re)loaded, e.g. in a test, without panicking on
// the second call).
type Registry struct {
	defs map[string]*BlockDef
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{defs: map[string]*BlockDef{}}
}

// Register adds or replaces the definition for def.TypeName. Idempotent:
// registering the same name twice simply replaces the earlier
// definition, matching spec.md 4.B.
func (r *Registry) Register(def *BlockDef) {
	if r.defs == nil {
		r.defs = map[string]*BlockDef{}
	}
	r.defs[def.TypeName] = def
}

// Lookup returns the definition for typeName and whether it was found.
// The returned pointer's lifetime is bounded by the Registry.
func (r *Registry) Lookup(typeName string) (*BlockDef, bool) {
	d, ok := r.defs[typeName]
	return d, ok
}

// MustLookup panics if typeName is not registered; intended for
// built-in block wiring at process startup, not for patch compilation
// (which must use Lookup and report E_UNKNOWN_BLOCK_TYPE instead).
func (r *Registry) MustLookup(typeName string) *BlockDef {
	d, ok := r.Lookup(typeName)
	if !ok {
		panic(fmt.Sprintf("registry: block type %q not registered", typeName))
	}
	return d
}

// Names returns every registered type name. Order is unspecified; callers
// needing determinism should sort.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}
