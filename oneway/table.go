package oneway

import "github.com/jakecoffman/cp"

// Table is a map-backed Lookup for callers without an entity store.
type Table struct {
	platforms map[Entity]*tablePlatform
	policies  map[Entity]Policy
}

type tablePlatform struct {
	up  cp.Vector
	set PassSet
}

func NewTable() *Table {
	return &Table{
		platforms: make(map[Entity]*tablePlatform),
		policies:  make(map[Entity]Policy),
	}
}

// SetPlatform marks e as a one-way platform. An existing pass set is kept.
func (t *Table) SetPlatform(e Entity, up cp.Vector) {
	if p, ok := t.platforms[e]; ok {
		p.up = up
		return
	}
	t.platforms[e] = &tablePlatform{up: up}
}

func (t *Table) SetPolicy(e Entity, p Policy) {
	t.policies[e] = p
}

// Remove forgets e as a platform, as a passer, and as a member of any pass set.
func (t *Table) Remove(e Entity) {
	delete(t.platforms, e)
	delete(t.policies, e)
	for _, p := range t.platforms {
		p.set.Remove(e)
	}
}

func (t *Table) Platform(e Entity) (cp.Vector, *PassSet, bool) {
	p, ok := t.platforms[e]
	if !ok {
		return cp.Vector{}, nil, false
	}
	return p.up, &p.set, true
}

func (t *Table) Policy(e Entity) (Policy, bool) {
	p, ok := t.policies[e]
	return p, ok
}
