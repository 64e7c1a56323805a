package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/oneway"
)

// worldLookup answers the filter's platform and passer questions from the
// ECS world the physics system is currently stepping.
type worldLookup struct {
	world *ecs.World
}

func (l *worldLookup) Platform(e oneway.Entity) (cp.Vector, *oneway.PassSet, bool) {
	if l == nil || l.world == nil {
		return cp.Vector{}, nil, false
	}
	ent := ecs.Entity(e)
	if !ecs.IsAlive(l.world, ent) {
		return cp.Vector{}, nil, false
	}
	platform, ok := ecs.Get(l.world, ent, component.OneWayPlatformComponent.Kind())
	if !ok {
		return cp.Vector{}, nil, false
	}
	up := platform.LocalUp
	if up.Length() == 0 {
		up = cp.Vector{X: 0, Y: 1}
	}
	if bodyComp, ok := ecs.Get(l.world, ent, component.PhysicsBodyComponent.Kind()); ok && bodyComp.Body != nil {
		up = up.Rotate(bodyComp.Body.Rotation())
	}
	return up, &platform.Passing, true
}

func (l *worldLookup) Policy(e oneway.Entity) (oneway.Policy, bool) {
	if l == nil || l.world == nil {
		return oneway.ByNormal, false
	}
	passer, ok := ecs.Get(l.world, ecs.Entity(e), component.PasserComponent.Kind())
	if !ok {
		return oneway.ByNormal, false
	}
	return passer.Policy, true
}

// PassThroughSystem turns the held drop input into the Always policy and
// restores the passer's default when it is released.
type PassThroughSystem struct{}

func NewPassThroughSystem() *PassThroughSystem {
	return &PassThroughSystem{}
}

func (s *PassThroughSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.InputComponent.Kind(), component.PasserComponent.Kind(), func(e ecs.Entity, input *component.Input, passer *component.Passer) {
		if input.Drop {
			passer.Policy = oneway.Always
			return
		}
		passer.Policy = passer.Default
	})
}
