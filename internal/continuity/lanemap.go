package continuity

import "github.com/patchc/compiler/internal/types"

// LaneMapping is the permutation/resize descriptor spec.md 4.K step 2
// refers to: OldToNew[i] gives the new lane index old lane i migrates
// to, or -1 if lane i has no home in the new instance (dropped on
// shrink).
type LaneMapping struct {
	InstanceID types.InstanceRef
	OldToNew   []int
}

// identityLaneMapping is the default resize behavior absent an explicit
// mapping registered in the Store: lane i keeps index i as long as it
// still exists in the new count, and lanes beyond the smaller count are
// dropped (on shrink) or left zero-initialized (on grow).
func identityLaneMapping(instanceID types.InstanceRef, oldCount, newCount int) LaneMapping {
	m := make([]int, oldCount)
	for i := range m {
		if i < newCount {
			m[i] = i
		} else {
			m[i] = -1
		}
	}
	return LaneMapping{InstanceID: instanceID, OldToNew: m}
}

// Store holds continuity state that outlives a single compile: lane
// mappings an Array-like block's lowering has registered for a
// non-identity resize (e.g. a ring buffer that drops from the front
// instead of the back), mirroring confignew/idbinding.go's long-lived,
// identity-keyed binding tables.
type Store struct {
	laneMappings map[types.InstanceRef]LaneMapping
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{laneMappings: map[types.InstanceRef]LaneMapping{}}
}

// SetLaneMapping registers an explicit resize/permutation for an
// instance, overriding the identity default the next time it resizes.
func (s *Store) SetLaneMapping(m LaneMapping) {
	s.laneMappings[m.InstanceID] = m
}

// LaneMapping returns the mapping to use for instanceID's resize from
// oldCount to newCount lanes: the explicitly registered one if present,
// identity otherwise.
func (s *Store) LaneMapping(instanceID types.InstanceRef, oldCount, newCount int) LaneMapping {
	if m, ok := s.laneMappings[instanceID]; ok {
		return m
	}
	return identityLaneMapping(instanceID, oldCount, newCount)
}

// Prune removes continuity entries for instances absent from the new
// program (spec.md 4.K step 4).
func (s *Store) Prune(active map[types.InstanceRef]bool) {
	for id := range s.laneMappings {
		if !active[id] {
			delete(s.laneMappings, id)
		}
	}
}
