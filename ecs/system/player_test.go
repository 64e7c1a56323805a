package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/oneway"
)

type scriptedInput struct {
	frames []component.Input
	next   int
}

func (s *scriptedInput) Poll() component.Input {
	if s.next >= len(s.frames) {
		return component.Input{}
	}
	in := s.frames[s.next]
	s.next++
	return in
}

func newTestPlayer(t *testing.T, w *ecs.World) ecs.Entity {
	t.Helper()
	p := addBody(t, w, 0, 0, ball(5))
	mustAdd(t, w, p, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	mustAdd(t, w, p, component.InputComponent.Kind(), &component.Input{})
	mustAdd(t, w, p, component.HolderComponent.Kind(), &component.Holder{})
	mustAdd(t, w, p, component.PlayerControlComponent.Kind(), &component.PlayerControl{ImpulseScale: 1000})
	mustAdd(t, w, p, component.PasserComponent.Kind(), &component.Passer{Policy: oneway.ByNormal, Default: oneway.ByNormal})
	return p
}

func TestInputSystemCopiesPolledState(t *testing.T) {
	w := ecs.NewWorld()
	p := newTestPlayer(t, w)
	src := &scriptedInput{frames: []component.Input{{MoveX: 1, MovePressed: true, Drop: true}}}

	NewInputSystem(src).Update(w)

	in, _ := ecs.Get(w, p, component.InputComponent.Kind())
	if in.MoveX != 1 || !in.MovePressed || !in.Drop {
		t.Fatalf("input = %+v, want the polled state", *in)
	}
}

func TestPlayerControllerImpulseOnPress(t *testing.T) {
	tests := []struct {
		name  string
		input component.Input
		want  cp.Vector
	}{
		{"right", component.Input{MoveX: 1, MovePressed: true}, cp.Vector{X: 1000}},
		{"up", component.Input{MoveY: 1, MovePressed: true}, cp.Vector{Y: 1000}},
		{"held without press", component.Input{MoveX: 1}, cp.Vector{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ecs.NewWorld()
			p := newTestPlayer(t, w)
			in, _ := ecs.Get(w, p, component.InputComponent.Kind())
			*in = tt.input

			NewPlayerControllerSystem(false).Update(w)

			body, _ := ecs.Get(w, p, component.PhysicsBodyComponent.Kind())
			if body.Impulse != tt.want {
				t.Fatalf("impulse = %v, want %v", body.Impulse, tt.want)
			}
		})
	}
}

func TestPlayerControllerGrabAndNextDemo(t *testing.T) {
	w := ecs.NewWorld()
	p := newTestPlayer(t, w)
	in, _ := ecs.Get(w, p, component.InputComponent.Kind())
	*in = component.Input{Grab: true, NextDemo: true}

	NewPlayerControllerSystem(false).Update(w)

	holder, _ := ecs.Get(w, p, component.HolderComponent.Kind())
	if !holder.IsHolding {
		t.Fatalf("grab should toggle holding on")
	}
	if n := len(w.Events().Take(ecs.EventNextDemo)); n != 1 {
		t.Fatalf("next demo events = %d, want 1", n)
	}
	if n := len(w.Events().Take(ecs.EventGrab)); n != 1 {
		t.Fatalf("grab events = %d, want 1", n)
	}
}

func TestPassThroughFollowsDropInput(t *testing.T) {
	w := ecs.NewWorld()
	p := newTestPlayer(t, w)
	src := &scriptedInput{frames: []component.Input{{Drop: true}, {}}}
	input := NewInputSystem(src)
	pass := NewPassThroughSystem()

	input.Update(w)
	pass.Update(w)
	passer, _ := ecs.Get(w, p, component.PasserComponent.Kind())
	if passer.Policy != oneway.Always {
		t.Fatalf("policy while dropping = %s, want always", passer.Policy)
	}

	input.Update(w)
	pass.Update(w)
	if passer.Policy != oneway.ByNormal {
		t.Fatalf("policy after release = %s, want by_normal", passer.Policy)
	}
}
