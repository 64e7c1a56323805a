package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics-sandbox/oneway"
)

// OneWayPlatform marks a body that only collides with bodies landing on
// its up side.
type OneWayPlatform struct {
	// LocalUp is the up axis in body space; zero means +Y.
	LocalUp cp.Vector
	Passing oneway.PassSet
}

var OneWayPlatformComponent = NewComponent[OneWayPlatform]()

// Passer overrides how a body is treated by one-way platforms.
type Passer struct {
	Policy oneway.Policy
	// Default is restored when a temporary override such as drop-through
	// is released.
	Default oneway.Policy
}

var PasserComponent = NewComponent[Passer]()
