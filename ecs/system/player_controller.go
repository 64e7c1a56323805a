package system

import (
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics-sandbox/common"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

// PlayerControllerSystem turns the player's input into impulses and demo
// requests.
type PlayerControllerSystem struct {
	debug bool
}

func NewPlayerControllerSystem(debug bool) *PlayerControllerSystem {
	return &PlayerControllerSystem{debug: debug}
}

func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	entities := ecs.Query(w,
		component.PlayerTagComponent.Kind(),
		component.InputComponent.Kind(),
		component.PhysicsBodyComponent.Kind(),
	)
	for _, e := range entities {
		input, ok := ecs.Get(w, e, component.InputComponent.Kind())
		if !ok {
			continue
		}
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok {
			continue
		}

		if input.MovePressed {
			scale := common.ImpulseScale
			if ctrl, ok := ecs.Get(w, e, component.PlayerControlComponent.Kind()); ok && ctrl.ImpulseScale > 0 {
				scale = ctrl.ImpulseScale
			}
			impulse := cp.Vector{X: input.MoveX, Y: input.MoveY}.Mult(scale)
			bodyComp.Impulse = bodyComp.Impulse.Add(impulse)
			if p.debug {
				log.Printf("Player: impulse %.0f,%.0f", impulse.X, impulse.Y)
			}
		}

		if input.Grab {
			if holder, ok := ecs.Get(w, e, component.HolderComponent.Kind()); ok {
				holder.IsHolding = !holder.IsHolding
				log.Printf("Player: grab (holding=%v)", holder.IsHolding)
			}
			w.Events().Push(ecs.Event{Type: ecs.EventGrab, Data: e})
		}

		if input.NextDemo {
			w.Events().Push(ecs.Event{Type: ecs.EventNextDemo})
		}
	}
}
