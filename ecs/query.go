package ecs

import "github.com/milk9111/physics-sandbox/ecs/component"

// ForEach calls fn for every live entity carrying kind. Entities destroyed
// by fn during the walk are skipped.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	if w == nil || !kind.Valid() {
		return
	}
	for _, e := range w.store(kind.ID(), false).Entities() {
		a, ok := Get(w, e, kind)
		if !ok || !IsAlive(w, e) {
			continue
		}
		fn(e, a)
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	if w == nil || !ka.Valid() || !kb.Valid() {
		return
	}
	for _, e := range smallest(w, ka.ID(), kb.ID()) {
		a, okA := Get(w, e, ka)
		b, okB := Get(w, e, kb)
		if !okA || !okB || !IsAlive(w, e) {
			continue
		}
		fn(e, a, b)
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	if w == nil || !ka.Valid() || !kb.Valid() || !kc.Valid() {
		return
	}
	for _, e := range smallest(w, ka.ID(), kb.ID(), kc.ID()) {
		a, okA := Get(w, e, ka)
		b, okB := Get(w, e, kb)
		c, okC := Get(w, e, kc)
		if !okA || !okB || !okC || !IsAlive(w, e) {
			continue
		}
		fn(e, a, b, c)
	}
}

func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	if w == nil || !ka.Valid() || !kb.Valid() || !kc.Valid() || !kd.Valid() {
		return
	}
	for _, e := range smallest(w, ka.ID(), kb.ID(), kc.ID(), kd.ID()) {
		a, okA := Get(w, e, ka)
		b, okB := Get(w, e, kb)
		c, okC := Get(w, e, kc)
		d, okD := Get(w, e, kd)
		if !okA || !okB || !okC || !okD || !IsAlive(w, e) {
			continue
		}
		fn(e, a, b, c, d)
	}
}

// smallest returns a snapshot of the smallest store's entities; iterating
// the smallest set keeps intersections cheap.
func smallest(w *World, ids ...component.ComponentID) []Entity {
	var best *SparseSet
	for _, id := range ids {
		s := w.store(id, false)
		if s == nil {
			return nil
		}
		if best == nil || s.Len() < best.Len() {
			best = s
		}
	}
	return best.Entities()
}

// Query returns the live entities that carry every one of kinds, in the
// order of the smallest store.
func Query(w *World, kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	ids := make([]component.ComponentID, 0, len(kinds))
	for _, k := range kinds {
		if k == nil || !k.Valid() {
			return nil
		}
		ids = append(ids, k.ID())
	}
	var out []Entity
	for _, e := range smallest(w, ids...) {
		if !IsAlive(w, e) {
			continue
		}
		matches := true
		for _, id := range ids {
			if !w.store(id, false).Has(e) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, e)
		}
	}
	return out
}
