package system

import (
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

// ConveyorSystem pushes every dynamic body touching a belt by the belt
// vector, scaled by the belt script's "speed" parameter when it has one.
type ConveyorSystem struct{}

func NewConveyorSystem() *ConveyorSystem {
	return &ConveyorSystem{}
}

func (s *ConveyorSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.ConveyorBeltComponent.Kind(), component.ContactsComponent.Kind(), func(e ecs.Entity, belt *component.ConveyorBelt, contacts *component.Contacts) {
		vec := belt.Vector
		if script, ok := ecs.Get(w, e, component.ScriptComponent.Kind()); ok {
			vec = vec.Mult(script.Param("speed", 1))
		}
		for _, id := range contacts.Entities {
			other := ecs.Entity(id)
			bodyComp, ok := ecs.Get(w, other, component.PhysicsBodyComponent.Kind())
			if !ok || bodyComp.Static {
				continue
			}
			bodyComp.Impulse = bodyComp.Impulse.Add(vec)
		}
	})
}
