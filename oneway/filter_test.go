package oneway

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

const (
	platformID Entity = 1
	bodyID     Entity = 2
)

var worldUp = cp.Vector{X: 0, Y: 1}

// pair builds a contact between the platform (as entity 1) and the body with
// the platform-side normal n.
func pair(n cp.Vector, depths ...float64) ContactPair {
	return ContactPair{
		Entity1: platformID,
		Entity2: bodyID,
		Manifolds: []Manifold{{
			Normal1: n,
			Normal2: n.Neg(),
			Depths:  depths,
		}},
	}
}

func newTestFilter(policy *Policy) (*Filter, *Table) {
	table := NewTable()
	table.SetPlatform(platformID, worldUp)
	if policy != nil {
		table.SetPolicy(bodyID, *policy)
	}
	return NewFilter(table, DefaultConfig()), table
}

func policyPtr(p Policy) *Policy {
	return &p
}

func passSet(t *testing.T, table *Table) *PassSet {
	t.Helper()
	_, set, ok := table.Platform(platformID)
	if !ok {
		t.Fatalf("platform missing from table")
	}
	return set
}

func TestDecideFirstContact(t *testing.T) {
	down := cp.Vector{X: 0, Y: -1}
	side := cp.Vector{X: 1, Y: 0}

	tests := []struct {
		name        string
		policy      *Policy
		pair        ContactPair
		want        Decision
		wantPassing bool
	}{
		{"never_from_below_penetrating", policyPtr(Never), pair(down, 0.4), Keep, false},
		{"never_from_above", policyPtr(Never), pair(worldUp, 0.1), Keep, false},
		{"never_zero_normal", policyPtr(Never), pair(cp.Vector{}, 1), Keep, false},
		{"always_from_above", policyPtr(Always), pair(worldUp, 0), Discard, true},
		{"always_not_penetrating", policyPtr(Always), pair(down, 0), Discard, true},
		{"default_from_above_touching", nil, pair(worldUp, 0), Keep, false},
		{"default_from_above_penetrating", nil, pair(worldUp, 0.25), Keep, false},
		{"by_normal_explicit_from_above", policyPtr(ByNormal), pair(worldUp, 0.25), Keep, false},
		{"default_from_below_approaching", nil, pair(down, 0, -0.1), Keep, false},
		{"default_from_below_penetrating", nil, pair(down, 0.3), Discard, true},
		{"default_from_side_penetrating", nil, pair(side, 0.3), Discard, true},
		{"default_zero_normal_penetrating", nil, pair(cp.Vector{}, 0.3), Discard, true},
		{"default_zero_normal_touching", nil, pair(cp.Vector{}, 0), Keep, false},
		{"default_no_points", nil, pair(down), Keep, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, table := newTestFilter(tc.policy)
			if got := f.Decide(tc.pair); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if got := passSet(t, table).Contains(bodyID); got != tc.wantPassing {
				t.Fatalf("expected passing=%v, got %v", tc.wantPassing, got)
			}
		})
	}
}

func TestDecideAlignmentThreshold(t *testing.T) {
	tests := []struct {
		name  string
		angle float64 // radians away from up
		want  Decision
	}{
		{"straight_up", 0, Keep},
		{"fifty_degrees", 50 * math.Pi / 180, Keep},
		{"sixty_degrees", 59.9 * math.Pi / 180, Keep},
		{"seventy_degrees", 70 * math.Pi / 180, Discard},
		{"upside_down", math.Pi, Discard},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, _ := newTestFilter(nil)
			n := cp.Vector{X: math.Sin(tc.angle), Y: math.Cos(tc.angle)}
			if got := f.Decide(pair(n, 0.2)); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDecideUsesPlatformSideNormal(t *testing.T) {
	f, _ := newTestFilter(nil)

	// Platform is entity 2, so Normal2 is the one that points toward the body.
	p := ContactPair{
		Entity1: bodyID,
		Entity2: platformID,
		Manifolds: []Manifold{{
			Normal1: cp.Vector{X: 0, Y: -1},
			Normal2: cp.Vector{X: 0, Y: 1},
			Depths:  []float64{0.2},
		}},
	}
	if got := f.Decide(p); got != Keep {
		t.Fatalf("body on top with platform as entity 2 should be kept, got %v", got)
	}

	p.Manifolds[0].Normal1, p.Manifolds[0].Normal2 = p.Manifolds[0].Normal2, p.Manifolds[0].Normal1
	if got := f.Decide(p); got != Discard {
		t.Fatalf("body below with platform as entity 2 should be discarded, got %v", got)
	}
}

func TestDecideEveryManifoldMustBeAligned(t *testing.T) {
	f, table := newTestFilter(nil)
	p := ContactPair{
		Entity1: platformID,
		Entity2: bodyID,
		Manifolds: []Manifold{
			{Normal1: worldUp, Normal2: worldUp.Neg(), Depths: []float64{0}},
			{Normal1: cp.Vector{X: 1, Y: 0}, Normal2: cp.Vector{X: -1, Y: 0}, Depths: []float64{0.1}},
		},
	}
	if got := f.Decide(p); got != Discard {
		t.Fatalf("expected discard when one manifold is side-on, got %v", got)
	}
	if !passSet(t, table).Contains(bodyID) {
		t.Fatalf("expected body to enter the pass set")
	}
}

func TestDecideRotatedPlatform(t *testing.T) {
	table := NewTable()
	// Platform rotated 90 degrees counter-clockwise: its up is world -X.
	table.SetPlatform(platformID, cp.Vector{X: -1, Y: 0})
	f := NewFilter(table, DefaultConfig())

	if got := f.Decide(pair(cp.Vector{X: 0, Y: 1}, 0.2)); got != Discard {
		t.Fatalf("world-up contact on a rotated platform should pass, got %v", got)
	}
	table.Remove(bodyID)
	if got := f.Decide(pair(cp.Vector{X: -1, Y: 0}, 0.2)); got != Keep {
		t.Fatalf("contact along the rotated up axis should be kept, got %v", got)
	}
}

func TestAlwaysLifecycle(t *testing.T) {
	f, table := newTestFilter(policyPtr(Always))
	set := passSet(t, table)

	if got := f.Decide(pair(worldUp, 0.3)); got != Discard {
		t.Fatalf("first contact: expected discard, got %v", got)
	}
	if !set.Contains(bodyID) {
		t.Fatalf("first contact: expected body in pass set")
	}

	// Switching the policy back does not matter while still penetrating.
	table.SetPolicy(bodyID, ByNormal)
	for i := 0; i < 3; i++ {
		if got := f.Decide(pair(worldUp, 0.2)); got != Discard {
			t.Fatalf("step %d: expected discard while penetrating, got %v", i, got)
		}
	}

	if got := f.Decide(pair(worldUp, 0)); got != Keep {
		t.Fatalf("expected the expired body to be evaluated fresh and kept, got %v", got)
	}
	if set.Contains(bodyID) {
		t.Fatalf("expected body removed once penetration ended")
	}
	if f.Stats().Expired != 1 {
		t.Fatalf("expected one expiry, got %d", f.Stats().Expired)
	}
}

func TestNeverIgnoresStaleEntryAfterExpiry(t *testing.T) {
	f, table := newTestFilter(policyPtr(Always))
	set := passSet(t, table)

	f.Decide(pair(worldUp, 0.3))
	table.SetPolicy(bodyID, Never)

	if got := f.Decide(pair(worldUp.Neg(), 0.3)); got != Discard {
		t.Fatalf("a passing body keeps passing while penetrating, got %v", got)
	}
	if got := f.Decide(pair(worldUp.Neg(), 0)); got != Keep {
		t.Fatalf("Never must keep once the stale entry expired, got %v", got)
	}
	if set.Len() != 0 {
		t.Fatalf("expected empty pass set, got %v", set.Entities())
	}
}

func TestScenario(t *testing.T) {
	f, table := newTestFilter(nil)
	set := passSet(t, table)

	// Approaches from directly above.
	if got := f.Apply([]ContactPair{pair(worldUp, 0)}); len(got) != 1 {
		t.Fatalf("landing from above should be kept, got %d pairs", len(got))
	}

	// Falls through from below with drop-through held.
	table.SetPolicy(bodyID, Always)
	if got := f.Apply([]ContactPair{pair(worldUp.Neg(), 0.3)}); len(got) != 0 {
		t.Fatalf("drop-through should be discarded, got %d pairs", len(got))
	}
	if !set.Contains(bodyID) {
		t.Fatalf("expected body in pass set after drop-through")
	}

	table.SetPolicy(bodyID, ByNormal)
	f.Apply([]ContactPair{pair(worldUp.Neg(), 0.0)})
	if set.Contains(bodyID) {
		t.Fatalf("expected pass set cleared once penetration reached zero")
	}
}

func TestApplyFiltersInPlace(t *testing.T) {
	table := NewTable()
	table.SetPlatform(platformID, worldUp)
	table.SetPolicy(3, Always)
	f := NewFilter(table, DefaultConfig())

	pairs := []ContactPair{
		{Entity1: 7, Entity2: 8, Manifolds: []Manifold{{Normal1: worldUp.Neg(), Depths: []float64{1}}}},
		{Entity1: platformID, Entity2: 3, Manifolds: []Manifold{{Normal1: worldUp, Depths: []float64{0.1}}}},
		{Entity1: 4, Entity2: platformID, Manifolds: []Manifold{{Normal2: worldUp, Depths: []float64{0.1}}}},
		{Entity1: platformID, Entity2: 5, Manifolds: []Manifold{{Normal1: worldUp.Neg(), Depths: []float64{0.1}}}},
	}

	kept := f.Apply(pairs)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept pairs, got %d", len(kept))
	}
	if kept[0].Entity1 != 7 || kept[1].Entity1 != 4 {
		t.Fatalf("unexpected kept pairs %+v", kept)
	}
	if &kept[0] != &pairs[0] {
		t.Fatalf("expected the kept pairs to share the input backing array")
	}

	stats := f.Stats()
	if stats.Pairs != 4 || stats.Kept != 2 || stats.Discarded != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestApplyIdempotent(t *testing.T) {
	cases := []struct {
		name   string
		policy *Policy
		pair   ContactPair
	}{
		{"always_penetrating", policyPtr(Always), pair(worldUp, 0.2)},
		{"always_touching", policyPtr(Always), pair(worldUp, 0)},
		{"by_normal_below", nil, pair(worldUp.Neg(), 0.2)},
		{"by_normal_above", nil, pair(worldUp, 0.2)},
		{"never", policyPtr(Never), pair(worldUp.Neg(), 0.2)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f, table := newTestFilter(c.policy)
			set := passSet(t, table)

			first := len(f.Apply([]ContactPair{c.pair}))
			firstSet := set.Entities()
			second := len(f.Apply([]ContactPair{c.pair}))
			secondSet := set.Entities()

			if first != second {
				t.Fatalf("kept %d pairs then %d", first, second)
			}
			if len(firstSet) != len(secondSet) {
				t.Fatalf("pass set changed from %v to %v", firstSet, secondSet)
			}
		})
	}
}

func TestEndStepSweepsAbsentPassers(t *testing.T) {
	f, table := newTestFilter(policyPtr(Always))
	set := passSet(t, table)
	table.SetPolicy(9, Always)

	f.Apply([]ContactPair{
		pair(worldUp, 0.2),
		{Entity1: platformID, Entity2: 9, Manifolds: []Manifold{{Normal1: worldUp, Depths: []float64{0.2}}}},
	})
	if set.Len() != 2 {
		t.Fatalf("expected two passers, got %v", set.Entities())
	}

	// Entity 9 crossed the platform completely and is no longer reported.
	f.Apply([]ContactPair{pair(worldUp, 0.2)})
	if set.Contains(9) {
		t.Fatalf("expected absent passer to be swept")
	}
	if !set.Contains(bodyID) {
		t.Fatalf("expected the still-penetrating passer to stay")
	}
	if f.Stats().Swept != 1 {
		t.Fatalf("expected one swept entry, got %d", f.Stats().Swept)
	}
}

func TestMissingLookups(t *testing.T) {
	t.Run("no_platform", func(t *testing.T) {
		f := NewFilter(NewTable(), DefaultConfig())
		if got := f.Decide(pair(worldUp.Neg(), 1)); got != Keep {
			t.Fatalf("pairs without a platform must be kept, got %v", got)
		}
	})
	t.Run("nil_lookup", func(t *testing.T) {
		f := NewFilter(nil, Config{})
		if got := f.Decide(pair(worldUp.Neg(), 1)); got != Keep {
			t.Fatalf("expected keep, got %v", got)
		}
	})
	t.Run("despawned_passer_defaults_to_by_normal", func(t *testing.T) {
		f, table := newTestFilter(policyPtr(Never))
		table.Remove(bodyID)
		if got := f.Decide(pair(worldUp.Neg(), 0.5)); got != Discard {
			t.Fatalf("expected by-normal fallback to discard, got %v", got)
		}
	})
	t.Run("zero_up_axis_uses_world_up", func(t *testing.T) {
		table := NewTable()
		table.SetPlatform(platformID, cp.Vector{})
		f := NewFilter(table, DefaultConfig())
		if got := f.Decide(pair(worldUp, 0.5)); got != Keep {
			t.Fatalf("expected keep, got %v", got)
		}
	})
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{ByNormal, Always, Never} {
		if got := ParsePolicy(p.String()); got != p {
			t.Fatalf("expected %v, got %v", p, got)
		}
	}
	if got := ParsePolicy("sometimes"); got != ByNormal {
		t.Fatalf("unknown names should fall back to by_normal, got %v", got)
	}
}

func TestForgetDropsDespawnedPasser(t *testing.T) {
	f, table := newTestFilter(policyPtr(Always))
	f.Apply([]ContactPair{pair(worldUp, 0.3)})

	set := f.PassSet(platformID)
	if set != passSet(t, table) {
		t.Fatalf("PassSet should return the platform's own set")
	}
	if !set.Contains(bodyID) {
		t.Fatalf("expected body in pass set")
	}

	f.Forget(bodyID)
	if set.Len() != 0 {
		t.Fatalf("expected empty pass set after Forget, got %v", set.Entities())
	}
	if f.PassSet(bodyID) != nil {
		t.Fatalf("non-platforms have no pass set")
	}
}

func TestEndStepSweepsPlatformsWithoutContacts(t *testing.T) {
	f, table := newTestFilter(policyPtr(Always))
	set := passSet(t, table)

	f.Apply([]ContactPair{pair(worldUp, 0.2)})
	if !set.Contains(bodyID) {
		t.Fatalf("expected body in pass set")
	}

	f.Apply(nil)
	if set.Len() != 0 {
		t.Fatalf("expected pass set emptied once the platform had no contacts, got %v", set.Entities())
	}
}
