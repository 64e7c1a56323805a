package component

// Transform is the world position of a body's center, Y up, and its angle
// in radians counter-clockwise.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
