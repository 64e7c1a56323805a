package system

import (
	"errors"
	"image/color"
	"log"

	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

var blockColor = color.NRGBA{R: 0xe5, G: 0x73, B: 0x73, A: 0xff}

// BlockSpawnerSystem spawns a block every IntervalFrames for each spawner.
// Blocks carry a TTL and belong to the spawner's demo.
type BlockSpawnerSystem struct {
	spawned int
}

func NewBlockSpawnerSystem() *BlockSpawnerSystem {
	return &BlockSpawnerSystem{}
}

// Spawned is the number of blocks created since the system was created.
func (s *BlockSpawnerSystem) Spawned() int {
	return s.spawned
}

func (s *BlockSpawnerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.BlockSpawnerComponent.Kind(), func(e ecs.Entity, spawner *component.BlockSpawner) {
		if spawner.IntervalFrames <= 0 {
			return
		}
		spawner.Remaining--
		if spawner.Remaining > 0 {
			return
		}
		spawner.Remaining = spawner.IntervalFrames

		demo := ""
		if member, ok := ecs.Get(w, e, component.DemoMemberComponent.Kind()); ok {
			demo = member.Demo
		}
		if _, err := spawnBlock(w, spawner, demo); err != nil {
			log.Printf("BlockSpawner: %v", err)
			return
		}
		s.spawned++
	})
}

func spawnBlock(w *ecs.World, spawner *component.BlockSpawner, demo string) (ecs.Entity, error) {
	block := ecs.CreateEntity(w)
	err := errors.Join(
		ecs.Add(w, block, component.NameComponent.Kind(), &component.Name{Value: "spawned_block"}),
		ecs.Add(w, block, component.TransformComponent.Kind(), &component.Transform{X: spawner.X, Y: spawner.Y}),
		ecs.Add(w, block, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Collider:   spawner.Block,
			Elasticity: spawner.Elasticity,
		}),
		ecs.Add(w, block, component.ContactsComponent.Kind(), &component.Contacts{}),
		ecs.Add(w, block, component.TintComponent.Kind(), &component.Tint{Color: blockColor}),
	)
	if err == nil && spawner.BlockTTL > 0 {
		err = ecs.Add(w, block, component.TTLComponent.Kind(), &component.TTL{Frames: spawner.BlockTTL})
	}
	if err == nil && demo != "" {
		err = ecs.Add(w, block, component.DemoMemberComponent.Kind(), &component.DemoMember{Demo: demo})
	}
	if err != nil {
		ecs.DestroyEntity(w, block)
		return 0, err
	}
	return block, nil
}
