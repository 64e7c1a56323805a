package ecs

import (
	"testing"

	"github.com/milk9111/physics-sandbox/ecs/component"
)

type (
	testPos  struct{ X, Y float64 }
	testVel  struct{ X, Y float64 }
	testMass struct{ Value float64 }
	testTag  struct{}
)

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestEntityLifecycle(t *testing.T) {
	tests := []struct {
		name    string
		create  int
		destroy []int
		alive   int
	}{
		{"single", 1, []int{0}, 0},
		{"destroy_middle", 3, []int{1}, 2},
		{"destroy_none", 2, nil, 2},
		{"destroy_all", 4, []int{3, 0, 2, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, tt.create)
			for i := range ents {
				ents[i] = CreateEntity(w)
				if !ents[i].Valid() {
					t.Fatalf("entity %d is not valid", i)
				}
			}
			for _, i := range tt.destroy {
				if !DestroyEntity(w, ents[i]) {
					t.Fatalf("destroy %d reported false", i)
				}
				if IsAlive(w, ents[i]) {
					t.Fatalf("entity %d alive after destroy", i)
				}
			}
			if got := len(Entities(w)); got != tt.alive {
				t.Fatalf("alive = %d, want %d", got, tt.alive)
			}
		})
	}
}

func TestAddGetRemove(t *testing.T) {
	w := NewWorld()
	pos := component.NewComponentKind[testPos]()
	vel := component.NewComponentKind[testVel]()
	e := CreateEntity(w)

	if err := Add(w, e, pos, &testPos{X: 1, Y: 2}); err != nil {
		t.Fatalf("add pos: %v", err)
	}
	if err := Add(w, e, pos, &testPos{X: 3, Y: 4}); err != nil {
		t.Fatalf("replace pos: %v", err)
	}
	got, ok := Get(w, e, pos)
	if !ok || *got != (testPos{X: 3, Y: 4}) {
		t.Fatalf("pos = %+v ok=%v, want replaced value", got, ok)
	}
	if Has(w, e, vel) {
		t.Fatal("unexpected velocity")
	}
	if Remove(w, e, vel) {
		t.Fatal("removing a missing component reported true")
	}
	if !Remove(w, e, pos) || Has(w, e, pos) {
		t.Fatal("pos survived remove")
	}
	if Count(w, pos) != 0 {
		t.Fatalf("count = %d after remove", Count(w, pos))
	}
}

// bodyWorld builds four entities: a full body, a body without mass, a bare
// position and a tagged body that is then destroyed.
func bodyWorld(t *testing.T) (*World, []Entity) {
	t.Helper()
	w := NewWorld()
	ents := []Entity{CreateEntity(w), CreateEntity(w), CreateEntity(w), CreateEntity(w)}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	for i, e := range ents {
		must(Add(w, e, testPosKind, &testPos{X: float64(i)}))
	}
	must(Add(w, ents[0], testVelKind, &testVel{X: 1}))
	must(Add(w, ents[0], testMassKind, &testMass{Value: 2}))
	must(Add(w, ents[0], testTagKind, &testTag{}))
	must(Add(w, ents[1], testVelKind, &testVel{X: 1}))
	must(Add(w, ents[3], testVelKind, &testVel{}))
	must(Add(w, ents[3], testMassKind, &testMass{}))
	must(Add(w, ents[3], testTagKind, &testTag{}))
	DestroyEntity(w, ents[3])
	return w, ents
}

var (
	testPosKind  = component.NewComponentKind[testPos]()
	testVelKind  = component.NewComponentKind[testVel]()
	testMassKind = component.NewComponentKind[testMass]()
	testTagKind  = component.NewComponentKind[testTag]()
	testUnused   = component.NewComponentKind[int]()
)

func TestForEachArities(t *testing.T) {
	w, ents := bodyWorld(t)

	tests := []struct {
		name string
		run  func() []Entity
		want []Entity
	}{
		{"one", func() (res []Entity) {
			ForEach(w, testPosKind, func(e Entity, _ *testPos) { res = append(res, e) })
			return
		}, ents[:3]},
		{"two", func() (res []Entity) {
			ForEach2(w, testPosKind, testVelKind, func(e Entity, _ *testPos, _ *testVel) { res = append(res, e) })
			return
		}, ents[:2]},
		{"three", func() (res []Entity) {
			ForEach3(w, testPosKind, testVelKind, testMassKind, func(e Entity, _ *testPos, _ *testVel, _ *testMass) { res = append(res, e) })
			return
		}, ents[:1]},
		{"four", func() (res []Entity) {
			ForEach4(w, testPosKind, testVelKind, testMassKind, testTagKind, func(e Entity, _ *testPos, _ *testVel, _ *testMass, _ *testTag) { res = append(res, e) })
			return
		}, ents[:1]},
		{"missing_store", func() (res []Entity) {
			ForEach2(w, testPosKind, testUnused, func(e Entity, _ *testPos, _ *int) { res = append(res, e) })
			return
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.run()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			seen := make(map[Entity]bool, len(got))
			for _, e := range got {
				seen[e] = true
			}
			for _, e := range tt.want {
				if !seen[e] {
					t.Fatalf("missing %v in %v", e, got)
				}
			}
		})
	}
}
func TestStaleHandles(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h.Kind(), intPtr(1)); err != nil {
		t.Fatal(err)
	}
	if !DestroyEntity(w, old) {
		t.Fatal("failed to destroy entity")
	}
	if DestroyEntity(w, old) {
		t.Fatal("destroying twice should report false")
	}

	reused := CreateEntity(w)
	if reused.id() != old.id() {
		t.Fatalf("expected slot %d to be reused, got %d", old.id(), reused.id())
	}
	if reused == old {
		t.Fatal("reused slot must carry a new generation")
	}
	if IsAlive(w, old) {
		t.Fatal("stale handle reported alive")
	}
	if Has(w, reused, h.Kind()) {
		t.Fatal("components must not survive their entity")
	}
	if err := Add(w, old, h.Kind(), intPtr(2)); err != component.ErrEntityNotAlive {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func TestAddErrors(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil_value", Add[int](w, e, component.NewComponentKind[int](), nil), component.ErrNilComponent},
		{"zero_kind", Add(w, e, component.ComponentKind[int]{}, intPtr(1)), component.ErrInvalidComponentKind},
		{"zero_entity", Add(w, Entity(0), component.NewComponentKind[int](), intPtr(1)), component.ErrEntityNotAlive},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, tc.err)
			}
		})
	}
}

func TestFirstAndForEachDestroy(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	if _, ok := First(w, h.Kind()); ok {
		t.Fatal("expected no entity in empty world")
	}

	var ents []Entity
	for i := 0; i < 4; i++ {
		e := CreateEntity(w)
		ents = append(ents, e)
		if err := Add(w, e, h.Kind(), intPtr(i)); err != nil {
			t.Fatal(err)
		}
	}

	visited := 0
	ForEach(w, h.Kind(), func(e Entity, v *int) {
		visited++
		// destroying the last entity mid-walk must not skip or repeat others
		if *v == 0 {
			DestroyEntity(w, ents[3])
		}
	})
	if visited != 3 {
		t.Fatalf("expected 3 visits, got %d", visited)
	}
	if Count(w, h.Kind()) != 3 {
		t.Fatalf("expected 3 components left, got %d", Count(w, h.Kind()))
	}
	if e, ok := First(w, h.Kind()); !ok || !IsAlive(w, e) {
		t.Fatalf("expected a live first entity, got %v ok=%v", e, ok)
	}
}

func TestForEachMutatesInPlace(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e := CreateEntity(w)
	if err := Add(w, e, h.Kind(), intPtr(1)); err != nil {
		t.Fatal(err)
	}

	ForEach(w, h.Kind(), func(_ Entity, v *int) { *v = 42 })

	v, ok := Get(w, e, h.Kind())
	if !ok || *v != 42 {
		t.Fatalf("expected 42, got %v ok=%v", v, ok)
	}
}

type countingSystem struct {
	seen []string
}

func (s *countingSystem) Update(w *World) {
	for _, evt := range w.Events().Take(EventNextDemo) {
		s.seen = append(s.seen, evt.Type)
	}
	w.Events().Push(Event{Type: EventGrab})
}

func TestSchedulerEvents(t *testing.T) {
	w := NewWorld()
	sys := &countingSystem{}
	s := NewScheduler(nil, sys)

	w.Events().Push(Event{Type: EventNextDemo})
	w.Events().Push(Event{Type: EventSelectDemo, Data: "home"})
	s.Update(w)

	if len(sys.seen) != 1 {
		t.Fatalf("expected one next-demo event, got %v", sys.seen)
	}
	if evts := w.Events().Drain(); len(evts) != 0 {
		t.Fatalf("expected the queue flushed after the frame, got %v", evts)
	}
	if w.Frame() != 1 {
		t.Fatalf("expected frame 1, got %d", w.Frame())
	}
	if len(s.Systems()) != 1 {
		t.Fatalf("nil systems should be dropped, got %d", len(s.Systems()))
	}
}

func TestQuery(t *testing.T) {
	w := NewWorld()
	hi := component.NewComponent[int]()
	hs := component.NewComponent[string]()

	both := CreateEntity(w)
	onlyInt := CreateEntity(w)
	dead := CreateEntity(w)

	_ = Add(w, both, hi.Kind(), intPtr(1))
	_ = Add(w, both, hs.Kind(), stringPtr("a"))
	_ = Add(w, onlyInt, hi.Kind(), intPtr(2))
	_ = Add(w, dead, hi.Kind(), intPtr(3))
	_ = Add(w, dead, hs.Kind(), stringPtr("c"))
	DestroyEntity(w, dead)

	got := Query(w, hi.Kind(), hs.Kind())
	if len(got) != 1 || got[0] != both {
		t.Fatalf("expected only %v, got %v", both, got)
	}
	if got := Query(w, hi.Kind()); len(got) != 2 {
		t.Fatalf("expected two int holders, got %v", got)
	}
	if got := Query(w); got != nil {
		t.Fatalf("expected nil for no kinds, got %v", got)
	}
}
