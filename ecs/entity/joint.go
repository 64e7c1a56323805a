package entity

import (
	"fmt"

	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/scenes"
)

// BuildJoint resolves the body names of spec against named and creates the
// joint entity. An empty name attaches that end to the world.
func BuildJoint(w *ecs.World, spec scenes.JointSpec, named map[string]ecs.Entity, demo string) (ecs.Entity, error) {
	kind := component.JointKind(spec.Kind)
	switch kind {
	case component.JointPrismatic, component.JointRevolute, component.JointDistance:
	default:
		return 0, fmt.Errorf("unknown joint kind %q", spec.Kind)
	}

	a, err := resolveBody(spec.A, named)
	if err != nil {
		return 0, err
	}
	b, err := resolveBody(spec.B, named)
	if err != nil {
		return 0, err
	}
	if a == b {
		return 0, fmt.Errorf("joint connects %q to itself", spec.A)
	}
	if kind == component.JointDistance && spec.Max < spec.Min {
		return 0, fmt.Errorf("distance joint max %.2f is below min %.2f", spec.Max, spec.Min)
	}

	return newJoint(w, &component.Joint{
		Kind:         kind,
		BodyA:        a,
		BodyB:        b,
		AnchorA:      vectorFromSpec(spec.AnchorA),
		AnchorB:      vectorFromSpec(spec.AnchorB),
		FreeAxis:     vectorFromSpec(spec.FreeAxis),
		MinLimit:     spec.Min,
		MaxLimit:     spec.Max,
		AngleLimited: spec.AngleLimited,
		MinAngle:     spec.MinAngle,
		MaxAngle:     spec.MaxAngle,
		MaxForce:     spec.MaxForce,
		BreakImpulse: spec.BreakImpulse,
	}, demo)
}

func resolveBody(name string, named map[string]ecs.Entity) (uint64, error) {
	if name == "" {
		return 0, nil
	}
	e, ok := named[name]
	if !ok {
		return 0, fmt.Errorf("unknown body %q", name)
	}
	return uint64(e), nil
}

func newJoint(w *ecs.World, joint *component.Joint, demo string) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.JointComponent.Kind(), joint); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("add joint: %w", err)
	}
	if demo != "" {
		if err := ecs.Add(w, e, component.DemoMemberComponent.Kind(), &component.DemoMember{Demo: demo}); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("add demo member: %w", err)
		}
	}
	return e, nil
}
