// Package oneway decides, per physics step, which contacts against one-way
// platforms reach the solver.
//
// A platform collides with bodies landing on its up side and lets bodies
// coming from any other side through. Once a body is allowed through it
// stays in the platform's pass set for as long as it keeps penetrating, so
// it can finish crossing without being pushed back out.
package oneway

import (
	"github.com/jakecoffman/cp"
)

// Entity identifies a body taking part in a contact.
type Entity uint64

// Policy overrides how a body is treated by one-way platforms.
type Policy uint8

const (
	// ByNormal collides only when the contact comes from the platform's up side.
	ByNormal Policy = iota
	// Always passes through platforms.
	Always
	// Never passes through platforms.
	Never
)

func (p Policy) String() string {
	switch p {
	case Always:
		return "always"
	case Never:
		return "never"
	default:
		return "by_normal"
	}
}

// ParsePolicy maps a scene-file name to a Policy. Unknown names are ByNormal.
func ParsePolicy(s string) Policy {
	switch s {
	case "always":
		return Always
	case "never":
		return Never
	default:
		return ByNormal
	}
}

// Manifold is one touching region between the two bodies of a pair.
// Normal1 points away from Entity1 toward Entity2, Normal2 the reverse.
// Depths holds the penetration of each contact point; positive is overlap.
type Manifold struct {
	Normal1 cp.Vector
	Normal2 cp.Vector
	Depths  []float64
}

// ContactPair is every manifold generated between two entities in one step.
type ContactPair struct {
	Entity1   Entity
	Entity2   Entity
	Manifolds []Manifold
}

// Penetrating reports whether any contact point of the pair overlaps.
func (p ContactPair) Penetrating() bool {
	for _, m := range p.Manifolds {
		for _, d := range m.Depths {
			if d > 0 {
				return true
			}
		}
	}
	return false
}

// Lookup answers the scene questions the filter needs. Entities that no
// longer exist must simply report false.
type Lookup interface {
	// Platform returns the world-space up axis and the pass set of a
	// one-way platform.
	Platform(e Entity) (up cp.Vector, set *PassSet, ok bool)
	// Policy returns the passer policy attached to e.
	Policy(e Entity) (Policy, bool)
}

// Decision is the outcome for a single pair.
type Decision uint8

const (
	Keep Decision = iota
	Discard
)

func (d Decision) String() string {
	if d == Discard {
		return "discard"
	}
	return "keep"
}

// Config holds the tunable constants of the normal test.
type Config struct {
	// MinAlignment is the minimum dot product between the platform-side
	// normal and the platform's up axis for a contact to count as landing
	// on top. 0.5 is about 60 degrees off vertical.
	MinAlignment float64
	// NormalEpsilon is the length at or below which a normal is unusable.
	NormalEpsilon float64
}

func DefaultConfig() Config {
	return Config{
		MinAlignment:  0.5,
		NormalEpsilon: 1e-6,
	}
}

// Stats counts the filter's decisions since the last BeginStep.
type Stats struct {
	Pairs     int
	Kept      int
	Discarded int
	Expired   int
	Swept     int
}

type passKey struct {
	platform Entity
	other    Entity
}

// Filter applies the one-way rules. Pass sets live with the platforms and
// are reached through Lookup; the filter only remembers which platforms it
// has met and what touched them this step. A Filter must not be used from
// several goroutines.
type Filter struct {
	cfg    Config
	lookup Lookup

	seen  map[passKey]struct{}
	known map[Entity]*PassSet
	stats Stats
}

func NewFilter(lookup Lookup, cfg Config) *Filter {
	if cfg.MinAlignment == 0 && cfg.NormalEpsilon == 0 {
		cfg = DefaultConfig()
	}
	return &Filter{
		cfg:    cfg,
		lookup: lookup,
		seen:   make(map[passKey]struct{}),
		known:  make(map[Entity]*PassSet),
	}
}

func (f *Filter) Config() Config {
	return f.cfg
}

func (f *Filter) SetConfig(cfg Config) {
	f.cfg = cfg
}

func (f *Filter) Stats() Stats {
	return f.stats
}

// BeginStep starts a new physics step. Pairs decided until EndStep count as
// this step's contacts.
func (f *Filter) BeginStep() {
	clear(f.seen)
	f.stats = Stats{}
}

// EndStep drops pass-set entries for bodies that did not touch their
// platform this step, including platforms that had no contacts at all. A
// body that crossed a platform entirely within one step would otherwise never
// be seen again to expire.
func (f *Filter) EndStep() {
	for platform, set := range f.known {
		for _, other := range set.Entities() {
			if _, ok := f.seen[passKey{platform: platform, other: other}]; ok {
				continue
			}
			set.Remove(other)
			f.stats.Swept++
		}
	}
}

// Forget drops e from every pass set the filter knows of and, if e was a
// platform, stops tracking it. Call it when e is despawned.
func (f *Filter) Forget(e Entity) {
	delete(f.known, e)
	for key := range f.seen {
		if key.platform == e || key.other == e {
			delete(f.seen, key)
		}
	}
	for _, set := range f.known {
		set.Remove(e)
	}
}

// PassSet returns the pass set of platform, or nil if it is not a platform.
func (f *Filter) PassSet(platform Entity) *PassSet {
	if f.lookup == nil {
		return nil
	}
	_, set, ok := f.lookup.Platform(platform)
	if !ok {
		return nil
	}
	return set
}

// Apply filters one step's contact list in place and returns the pairs the
// solver should resolve, in their original order.
func (f *Filter) Apply(pairs []ContactPair) []ContactPair {
	f.BeginStep()
	kept := pairs[:0]
	for _, pair := range pairs {
		if f.Decide(pair) == Keep {
			kept = append(kept, pair)
		}
	}
	f.EndStep()
	return kept
}

// Decide runs the one-way rules for a single pair and updates the
// platform's pass set accordingly.
func (f *Filter) Decide(pair ContactPair) Decision {
	f.stats.Pairs++
	d := f.decide(pair)
	if d == Discard {
		f.stats.Discarded++
	} else {
		f.stats.Kept++
	}
	return d
}

func (f *Filter) decide(pair ContactPair) Decision {
	if f.lookup == nil {
		return Keep
	}

	platform, other := pair.Entity1, pair.Entity2
	up, set, ok := f.lookup.Platform(platform)
	platformIsFirst := true
	if !ok {
		platform, other = pair.Entity2, pair.Entity1
		up, set, ok = f.lookup.Platform(platform)
		platformIsFirst = false
	}
	if !ok || set == nil {
		return Keep
	}

	f.seen[passKey{platform: platform, other: other}] = struct{}{}
	f.known[platform] = set

	penetrating := pair.Penetrating()

	if set.Contains(other) {
		if penetrating {
			return Discard
		}
		set.Remove(other)
		f.stats.Expired++
	}

	policy, ok := f.lookup.Policy(other)
	if !ok {
		policy = ByNormal
	}

	switch policy {
	case Never:
		return Keep
	case Always:
		set.Add(other)
		return Discard
	}

	if f.landedOnTop(pair, up, platformIsFirst) {
		return Keep
	}
	if penetrating {
		set.Add(other)
		return Discard
	}
	// First touch from below: collide until actual overlap is observed so a
	// fast body can't tunnel on the strength of one bad normal.
	return Keep
}

func (f *Filter) landedOnTop(pair ContactPair, up cp.Vector, platformIsFirst bool) bool {
	if up.Length() <= f.cfg.NormalEpsilon {
		up = cp.Vector{X: 0, Y: 1}
	}
	up = up.Normalize()
	for _, m := range pair.Manifolds {
		n := m.Normal2
		if platformIsFirst {
			n = m.Normal1
		}
		if n.Length() <= f.cfg.NormalEpsilon {
			return false
		}
		if n.Normalize().Dot(up) < f.cfg.MinAlignment {
			return false
		}
	}
	return true
}
