package component

type Camera struct {
	TargetName string
	// Smoothness in [0,1): 0 snaps to the target each frame.
	Smoothness float64
	// ViewWidth and ViewHeight are the world units visible on screen.
	ViewWidth  float64
	ViewHeight float64
}

var CameraComponent = NewComponent[Camera]()
