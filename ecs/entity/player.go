package entity

import (
	"errors"
	"fmt"

	"github.com/milk9111/physics-sandbox/common"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/oneway"
	"github.com/milk9111/physics-sandbox/scenes"
)

// NewPlayer builds the player from player.yaml. The player belongs to no
// demo and survives demo switches.
func NewPlayer(w *ecs.World) (ecs.Entity, error) {
	spec, err := scenes.LoadPlayerSpec()
	if err != nil {
		return 0, fmt.Errorf("player: load spec: %w", err)
	}
	return NewPlayerFromSpec(w, spec)
}

func NewPlayerFromSpec(w *ecs.World, spec scenes.PlayerSpec) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("player: world is nil")
	}
	name := spec.Name
	if name == "" {
		name = scenes.PlayerName
	}
	impulseScale := spec.ImpulseScale
	if impulseScale <= 0 {
		impulseScale = common.ImpulseScale
	}
	policy := oneway.ParsePolicy(spec.Policy)

	e := ecs.CreateEntity(w)
	err := errors.Join(
		ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}),
		ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: name}),
		ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
			X:        spec.Transform.X,
			Y:        spec.Transform.Y,
			Rotation: spec.Transform.Rotation,
		}),
		ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Collider: colliderFromSpec(spec.Collider),
			Mass:     spec.Mass,
			Friction: spec.Friction,
		}),
		ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: spec.GravityScale}),
		ecs.Add(w, e, component.ContactsComponent.Kind(), &component.Contacts{}),
		ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{}),
		ecs.Add(w, e, component.HolderComponent.Kind(), &component.Holder{}),
		ecs.Add(w, e, component.PlayerControlComponent.Kind(), &component.PlayerControl{ImpulseScale: impulseScale}),
		ecs.Add(w, e, component.PasserComponent.Kind(), &component.Passer{Policy: policy, Default: policy}),
	)
	if err == nil && spec.Color != nil && spec.Color.Color != nil {
		err = ecs.Add(w, e, component.TintComponent.Kind(), &component.Tint{Color: spec.Color.Color})
	}
	if err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("player: %w", err)
	}
	return e, nil
}
