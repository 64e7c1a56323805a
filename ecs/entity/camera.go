package entity

import (
	"fmt"

	"github.com/milk9111/physics-sandbox/common"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/scenes"
)

func NewCamera(w *ecs.World) (ecs.Entity, error) {
	cameraSpec, err := scenes.LoadCameraSpec()
	if err != nil {
		return 0, fmt.Errorf("camera: load spec: %w", err)
	}
	return NewCameraFromSpec(w, cameraSpec)
}

func NewCameraFromSpec(w *ecs.World, cameraSpec scenes.CameraSpec) (ecs.Entity, error) {
	camera := ecs.CreateEntity(w)
	if err := ecs.Add(w, camera, component.CameraTagComponent.Kind(), &component.CameraTag{}); err != nil {
		return 0, fmt.Errorf("camera: add camera tag: %w", err)
	}

	name := cameraSpec.Name
	if name == "" {
		name = scenes.CameraName
	}
	if err := ecs.Add(w, camera, component.NameComponent.Kind(), &component.Name{Value: name}); err != nil {
		return 0, fmt.Errorf("camera: add name: %w", err)
	}

	if err := ecs.Add(w, camera, component.TransformComponent.Kind(), &component.Transform{}); err != nil {
		return 0, fmt.Errorf("camera: add transform: %w", err)
	}

	smooth := cameraSpec.Smoothness
	if smooth < 0 || smooth >= 1 {
		smooth = 0.1
	}
	viewW, viewH := cameraSpec.ViewWidth, cameraSpec.ViewHeight
	if viewW <= 0 || viewH <= 0 {
		viewW, viewH = common.ViewWidth, common.ViewHeight
	}
	if err := ecs.Add(w, camera, component.CameraComponent.Kind(), &component.Camera{
		TargetName: cameraSpec.Target,
		Smoothness: smooth,
		ViewWidth:  viewW,
		ViewHeight: viewH,
	}); err != nil {
		return 0, fmt.Errorf("camera: add camera component: %w", err)
	}

	return camera, nil
}
