package system

import (
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

// TTLSystem counts down frame-based TTL components and destroys entities
// whose time ran out. Their cp bodies are removed by the physics system on
// its next update.
type TTLSystem struct {
	expired int
}

func NewTTLSystem() *TTLSystem {
	return &TTLSystem{}
}

// Expired is the number of entities destroyed since the system was created.
func (s *TTLSystem) Expired() int {
	return s.expired
}

func (s *TTLSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.TTLComponent.Kind(), func(e ecs.Entity, ttl *component.TTL) {
		if ttl.Frames > 0 {
			ttl.Frames--
			if ttl.Frames > 0 {
				return
			}
		}
		if ecs.DestroyEntity(w, e) {
			s.expired++
		}
	})
}
