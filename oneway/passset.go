package oneway

import "sort"

// PassSet holds the entities currently allowed to penetrate one platform.
type PassSet struct {
	entities map[Entity]struct{}
}

// Contains reports whether e is currently passing through.
func (s *PassSet) Contains(e Entity) bool {
	if s == nil || s.entities == nil {
		return false
	}
	_, ok := s.entities[e]
	return ok
}

// Add allows e to pass through until Remove is called.
func (s *PassSet) Add(e Entity) {
	if s == nil {
		return
	}
	if s.entities == nil {
		s.entities = make(map[Entity]struct{})
	}
	s.entities[e] = struct{}{}
}

// Remove drops e and reports whether it was present.
func (s *PassSet) Remove(e Entity) bool {
	if !s.Contains(e) {
		return false
	}
	delete(s.entities, e)
	return true
}

func (s *PassSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entities)
}

// Clear empties the set, e.g. when the platform is respawned.
func (s *PassSet) Clear() {
	if s == nil {
		return
	}
	s.entities = nil
}

// Entities returns the passing entities in ascending order.
func (s *PassSet) Entities() []Entity {
	if s.Len() == 0 {
		return nil
	}
	out := make([]Entity, 0, len(s.entities))
	for e := range s.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
