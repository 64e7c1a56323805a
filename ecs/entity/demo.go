package entity

import (
	"fmt"

	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/scenes"
)

// SceneLoader builds demos from their scene files.
type SceneLoader struct {
	load func(name string) (scenes.SceneSpec, error)
}

func NewSceneLoader() *SceneLoader {
	return &SceneLoader{load: scenes.LoadScene}
}

// NewSceneLoaderFunc uses load instead of the scene files, e.g. for tests.
func NewSceneLoaderFunc(load func(name string) (scenes.SceneSpec, error)) *SceneLoader {
	return &SceneLoader{load: load}
}

// BuildDemo loads the scene named demo and builds it. It reports whether the
// demo wants world gravity.
func (l *SceneLoader) BuildDemo(w *ecs.World, demo string) (bool, error) {
	spec, err := l.load(demo)
	if err != nil {
		return true, err
	}
	if _, err := BuildScene(w, spec, demo); err != nil {
		return spec.GravityEnabled(), fmt.Errorf("demo %s: %w", demo, err)
	}
	return spec.GravityEnabled(), nil
}
