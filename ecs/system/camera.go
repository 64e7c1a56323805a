package system

import (
	"github.com/milk9111/physics-sandbox/common"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

// CameraSystem moves the camera's transform, the world point at the center
// of the view, toward its target.
type CameraSystem struct {
	camEntity    ecs.Entity
	targetEntity ecs.Entity
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	if !ecs.IsAlive(w, cs.camEntity) {
		camEntity, ok := ecs.First(w, component.CameraComponent.Kind())
		if !ok {
			return
		}
		cs.camEntity = camEntity
	}
	camComp, ok := ecs.Get(w, cs.camEntity, component.CameraComponent.Kind())
	if !ok {
		return
	}

	if !ecs.IsAlive(w, cs.targetEntity) {
		cs.targetEntity = findEntityByNameOrTag(w, camComp.TargetName)
	}
	targetTransform, ok := ecs.Get(w, cs.targetEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}

	camTransform, ok := ecs.Get(w, cs.camEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}
	t := 1 - common.Clamp(camComp.Smoothness, 0, 0.99)
	camTransform.X = common.Lerp(camTransform.X, targetTransform.X, t)
	camTransform.Y = common.Lerp(camTransform.Y, targetTransform.Y, t)
}

func findEntityByNameOrTag(w *ecs.World, name string) ecs.Entity {
	if name == "" {
		return 0
	}
	if name == "player" {
		if e, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
			return e
		}
	}
	var found ecs.Entity
	ecs.ForEach(w, component.NameComponent.Kind(), func(e ecs.Entity, n *component.Name) {
		if found == 0 && n.Value == name {
			found = e
		}
	})
	return found
}
