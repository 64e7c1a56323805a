package system

import (
	"log"

	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

// DestructibleSystem breaks joints that are overloaded. A joint breaks when
// its own constraints carried more than BreakImpulse last step, or when a
// Destructible body it holds was hit harder than the body's threshold. The
// physics system removes broken joints on its next update.
type DestructibleSystem struct {
	debug  bool
	broken int
}

func NewDestructibleSystem(debug bool) *DestructibleSystem {
	return &DestructibleSystem{debug: debug}
}

// Broken is the number of joints broken since the system was created.
func (s *DestructibleSystem) Broken() int {
	return s.broken
}

func (s *DestructibleSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	hit := make(map[uint64]bool)
	ecs.ForEach2(w, component.DestructibleComponent.Kind(), component.ContactsComponent.Kind(), func(e ecs.Entity, d *component.Destructible, contacts *component.Contacts) {
		if d.ImpulseThreshold <= 0 {
			return
		}
		for _, impulse := range contacts.Impulses {
			if impulse > d.ImpulseThreshold {
				hit[uint64(e)] = true
				return
			}
		}
	})

	ecs.ForEach(w, component.JointComponent.Kind(), func(e ecs.Entity, joint *component.Joint) {
		if joint.Broken || len(joint.Constraints) == 0 {
			return
		}
		overloaded := false
		if joint.BreakImpulse > 0 {
			for _, c := range joint.Constraints {
				if c.Class.GetImpulse() > joint.BreakImpulse {
					overloaded = true
					break
				}
			}
		}
		if !overloaded && !hit[joint.BodyA] && !hit[joint.BodyB] {
			return
		}
		joint.Broken = true
		s.broken++
		if s.debug {
			log.Printf("Destructible: joint %v broke", e)
		}
	})
}
