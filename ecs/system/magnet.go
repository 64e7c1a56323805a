package system

import (
	"math"

	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

// MagnetSystem pulls dynamic bodies inside a magnet's radius toward it with
// a force of strength / max(d, 1). A magnet script may override the
// strength through its "strength" parameter.
type MagnetSystem struct{}

func NewMagnetSystem() *MagnetSystem {
	return &MagnetSystem{}
}

func (s *MagnetSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.MagnetComponent.Kind(), component.TransformComponent.Kind(), func(me ecs.Entity, magnet *component.Magnet, mt *component.Transform) {
		strength := magnet.Strength
		if script, ok := ecs.Get(w, me, component.ScriptComponent.Kind()); ok {
			strength = script.Param("strength", strength)
		}
		if strength == 0 || magnet.Radius <= 0 {
			return
		}

		ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, t *component.Transform) {
			if e == me || bodyComp.Static {
				return
			}
			dx, dy := mt.X-t.X, mt.Y-t.Y
			d := math.Hypot(dx, dy)
			if d > magnet.Radius || d == 0 {
				return
			}
			f := strength / math.Max(d, 1)
			bodyComp.Force.X += dx / d * f
			bodyComp.Force.Y += dy / d * f
		})
	})
}
