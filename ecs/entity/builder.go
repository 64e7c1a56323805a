package entity

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/oneway"
	"github.com/milk9111/physics-sandbox/scenes"
)

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any) error

var componentRegistry = map[string]componentBuildFn{
	"transform":        addTransform,
	"physics_body":     addPhysicsBody,
	"one_way_platform": addOneWayPlatform,
	"passer":           addPasser,
	"conveyor_belt":    addConveyorBelt,
	"block_spawner":    addBlockSpawner,
	"magnet":           addMagnet,
	"destructible":     addDestructible,
	"script":           addScript,
	"ttl":              addTTL,
	"color":            addColor,
}

// Transform goes first so bodies are created where the scene puts them.
var componentBuildOrder = []string{
	"transform",
	"physics_body",
	"one_way_platform",
	"passer",
	"conveyor_belt",
	"block_spawner",
	"magnet",
	"destructible",
	"script",
	"ttl",
	"color",
}

// BuildScene creates every entity, hex grid and joint of spec, tagged as
// members of demo. It returns the named entities it created. On error the
// entities created so far are left for the caller's teardown.
func BuildScene(w *ecs.World, spec scenes.SceneSpec, demo string) (map[string]ecs.Entity, error) {
	if w == nil {
		return nil, fmt.Errorf("build scene: world is nil")
	}

	named := make(map[string]ecs.Entity, len(spec.Entities))
	for _, es := range spec.Entities {
		e, err := BuildEntity(w, es, demo)
		if err != nil {
			return named, err
		}
		if es.Name != "" {
			named[es.Name] = e
		}
	}

	for _, grid := range spec.HexGrids {
		if err := BuildHexGrid(w, grid, demo); err != nil {
			return named, err
		}
	}

	for i, js := range spec.Joints {
		if _, err := BuildJoint(w, js, named, demo); err != nil {
			return named, fmt.Errorf("build scene: joint %d: %w", i, err)
		}
	}
	return named, nil
}

// BuildEntity creates one entity from its component map. Unknown component
// names fail with scenes.ErrUnknownComponent.
func BuildEntity(w *ecs.World, spec scenes.EntitySpec, demo string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: %q does not define components", spec.Name)
	}

	names := make([]string, 0, len(spec.Components))
	for name := range spec.Components {
		if _, ok := componentRegistry[name]; !ok {
			return 0, fmt.Errorf("build entity: %q: %w %q", spec.Name, scenes.ErrUnknownComponent, name)
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return buildRank(names[i]) < buildRank(names[j]) })

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name}); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: add name: %w", spec.Name, err)
	}
	if demo != "" {
		if err := ecs.Add(w, e, component.DemoMemberComponent.Kind(), &component.DemoMember{Demo: demo}); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add demo member: %w", spec.Name, err)
		}
	}

	for _, name := range names {
		if err := componentRegistry[name](w, e, spec.Components[name]); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", spec.Name, name, err)
		}
	}
	return e, nil
}

func buildRank(name string) int {
	for i, n := range componentBuildOrder {
		if n == name {
			return i
		}
	}
	return len(componentBuildOrder)
}

// SetEntityTransform moves e, adding a Transform when it has none. Bodies
// already in the space keep their position.
func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addTransform(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		Rotation: spec.Rotation,
	})
}

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.PhysicsBodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	body := &component.PhysicsBody{
		Collider:      colliderFromSpec(spec.Collider),
		Mass:          spec.Mass,
		Friction:      spec.Friction,
		Elasticity:    spec.Elasticity,
		Static:        spec.Static,
		FixedRotation: spec.FixedRotation,
		Sensor:        spec.Sensor,
		Impulse:       vectorFromSpec(spec.Impulse),
	}
	for _, c := range spec.Children {
		body.Children = append(body.Children, colliderFromSpec(c))
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), body); err != nil {
		return err
	}
	if spec.GravityScale != nil {
		if err := ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: *spec.GravityScale}); err != nil {
			return err
		}
	}
	if !ecs.Has(w, e, component.TransformComponent.Kind()) {
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{}); err != nil {
			return err
		}
	}
	return ecs.Add(w, e, component.ContactsComponent.Kind(), &component.Contacts{})
}

func addOneWayPlatform(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.OneWayComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode one way platform spec: %w", err)
	}
	return ecs.Add(w, e, component.OneWayPlatformComponent.Kind(), &component.OneWayPlatform{LocalUp: vectorFromSpec(spec.Up)})
}

func addPasser(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.PasserComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode passer spec: %w", err)
	}
	policy := oneway.ParsePolicy(spec.Policy)
	return ecs.Add(w, e, component.PasserComponent.Kind(), &component.Passer{Policy: policy, Default: policy})
}

func addConveyorBelt(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.ConveyorComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode conveyor belt spec: %w", err)
	}
	return ecs.Add(w, e, component.ConveyorBeltComponent.Kind(), &component.ConveyorBelt{Vector: vectorFromSpec(spec.Vector)})
}

func addBlockSpawner(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.SpawnerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode block spawner spec: %w", err)
	}
	if spec.IntervalFrames <= 0 {
		return fmt.Errorf("block spawner interval must be positive, got %d", spec.IntervalFrames)
	}
	return ecs.Add(w, e, component.BlockSpawnerComponent.Kind(), &component.BlockSpawner{
		IntervalFrames: spec.IntervalFrames,
		Remaining:      spec.IntervalFrames,
		BlockTTL:       spec.BlockTTL,
		X:              spec.X,
		Y:              spec.Y,
		Block:          colliderFromSpec(spec.Block),
		Elasticity:     spec.Elasticity,
	})
}

func addMagnet(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.MagnetComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode magnet spec: %w", err)
	}
	return ecs.Add(w, e, component.MagnetComponent.Kind(), &component.Magnet{Strength: spec.Strength, Radius: spec.Radius})
}

func addDestructible(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.DestructibleComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode destructible spec: %w", err)
	}
	return ecs.Add(w, e, component.DestructibleComponent.Kind(), &component.Destructible{ImpulseThreshold: spec.ImpulseThreshold})
}

func addScript(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.ScriptComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode script spec: %w", err)
	}
	if spec.Path == "" {
		return fmt.Errorf("script path is empty")
	}
	params := make(map[string]float64, len(spec.Params))
	for k, v := range spec.Params {
		params[k] = v
	}
	return ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Path: spec.Path, Params: params})
}

func addTTL(w *ecs.World, e ecs.Entity, raw any) error {
	spec, err := scenes.DecodeComponentSpec[scenes.TTLComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode ttl spec: %w", err)
	}
	return ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Frames: spec.Frames})
}

func addColor(w *ecs.World, e ecs.Entity, raw any) error {
	c, err := scenes.DecodeComponentSpec[scenes.YAMLColor](raw)
	if err != nil {
		return fmt.Errorf("decode color: %w", err)
	}
	if c.Color == nil {
		return nil
	}
	return ecs.Add(w, e, component.TintComponent.Kind(), &component.Tint{Color: c.Color})
}

func colliderFromSpec(spec scenes.ColliderSpec) component.Collider {
	c := component.Collider{
		Kind:    component.ShapeKind(spec.Kind),
		Width:   spec.Width,
		Height:  spec.Height,
		Radius:  spec.Radius,
		Sides:   spec.Sides,
		OffsetX: spec.OffsetX,
		OffsetY: spec.OffsetY,
	}
	if c.Kind == "" {
		c.Kind = component.ShapeBox
	}
	for _, v := range spec.Vertices {
		c.Vertices = append(c.Vertices, vectorFromSpec(v))
	}
	return c
}

func vectorFromSpec(v scenes.VectorSpec) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}
