package component

import "github.com/jakecoffman/cp"

// ConveyorBelt pushes every body touching it.
type ConveyorBelt struct {
	Vector cp.Vector
}

var ConveyorBeltComponent = NewComponent[ConveyorBelt]()

// BlockSpawner periodically spawns a block that expires after BlockTTL frames.
type BlockSpawner struct {
	IntervalFrames int
	Remaining      int
	BlockTTL       int
	X              float64
	Y              float64
	Block          Collider
	Elasticity     float64
}

var BlockSpawnerComponent = NewComponent[BlockSpawner]()

// Magnet pulls dynamic bodies within Radius toward itself.
type Magnet struct {
	Strength float64
	Radius   float64
}

var MagnetComponent = NewComponent[Magnet]()

// Destructible bodies lose their joints when hit harder than the threshold.
type Destructible struct {
	ImpulseThreshold float64
}

var DestructibleComponent = NewComponent[Destructible]()
