package system

import (
	"fmt"
	"log"

	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

// Demo names one demo scene.
type Demo string

const (
	DemoHome         Demo = "home"
	DemoColliders    Demo = "colliders"
	DemoConveyorBelt Demo = "conveyor_belt"
	DemoMagnet       Demo = "magnet"
	DemoDestructible Demo = "destructible"
	DemoJoints       Demo = "joints"
	DemoOneWay       Demo = "one_way"
)

// Demos is the cycle order of the next-demo request.
var Demos = []Demo{
	DemoHome,
	DemoColliders,
	DemoConveyorBelt,
	DemoMagnet,
	DemoDestructible,
	DemoJoints,
	DemoOneWay,
}

// Next returns the demo after d, wrapping to the first. Unknown demos go
// home.
func (d Demo) Next() Demo {
	for i, demo := range Demos {
		if demo == d {
			return Demos[(i+1)%len(Demos)]
		}
	}
	return DemoHome
}

func ParseDemo(s string) (Demo, error) {
	for _, demo := range Demos {
		if string(demo) == s {
			return demo, nil
		}
	}
	return "", fmt.Errorf("unknown demo %q", s)
}

// DemoBuilder creates the entities of a demo and reports whether the demo
// runs with world gravity.
type DemoBuilder interface {
	BuildDemo(w *ecs.World, demo string) (gravity bool, err error)
}

// GravityController switches world gravity on and off.
type GravityController interface {
	SetGravityEnabled(enabled bool)
}

// DemoStateSystem owns the current demo. It tears the current demo down and
// builds the requested one when it sees a next, select or reload event.
type DemoStateSystem struct {
	builder DemoBuilder
	gravity GravityController

	current Demo
	pending Demo
	loaded  bool
	// Err is the error of the last failed build, cleared on success.
	Err error
}

func NewDemoStateSystem(builder DemoBuilder, gravity GravityController, start Demo) *DemoStateSystem {
	if start == "" {
		start = DemoHome
	}
	return &DemoStateSystem{
		builder: builder,
		gravity: gravity,
		pending: start,
	}
}

func (s *DemoStateSystem) Current() Demo {
	return s.current
}

func (s *DemoStateSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	events := w.Events()
	for range events.Take(ecs.EventNextDemo) {
		s.pending = s.upcoming().Next()
	}
	for _, evt := range events.Take(ecs.EventSelectDemo) {
		name, _ := evt.Data.(string)
		demo, err := ParseDemo(name)
		if err != nil {
			log.Printf("DemoState: %v", err)
			continue
		}
		s.pending = demo
	}
	if len(events.Take(ecs.EventReloadDemo)) > 0 && s.pending == "" {
		s.pending = s.current
		s.loaded = false
	}

	if s.pending == "" || (s.loaded && s.pending == s.current) {
		s.pending = ""
		return
	}
	s.enter(w, s.pending)
	s.pending = ""
}

// upcoming is the demo the next request advances from.
func (s *DemoStateSystem) upcoming() Demo {
	if s.pending != "" {
		return s.pending
	}
	return s.current
}

func (s *DemoStateSystem) enter(w *ecs.World, demo Demo) {
	removed := teardownDemos(w)
	log.Printf("DemoState: %s -> %s (removed %d entities)", s.current, demo, removed)

	s.current = demo
	s.loaded = true

	gravity := true
	if s.builder != nil {
		g, err := s.builder.BuildDemo(w, string(demo))
		gravity = g
		s.Err = err
		if err != nil {
			log.Printf("DemoState: build %s: %v", demo, err)
		}
	}
	if s.gravity != nil {
		s.gravity.SetGravityEnabled(gravity)
	}
}

// teardownDemos destroys every entity owned by a demo.
func teardownDemos(w *ecs.World) int {
	removed := 0
	ecs.ForEach(w, component.DemoMemberComponent.Kind(), func(e ecs.Entity, _ *component.DemoMember) {
		if ecs.DestroyEntity(w, e) {
			removed++
		}
	})
	return removed
}
