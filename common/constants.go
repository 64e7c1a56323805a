package common

const (
	// GravityFactor is the magnitude of world gravity, pointing down (-Y).
	GravityFactor = 100.0
	// TimeStep is the fixed physics step in seconds.
	TimeStep = 1.0 / 60.0
	// Iterations is the cp solver iteration count.
	Iterations = 10

	// ImpulseScale turns a unit move axis into the player's impulse.
	ImpulseScale = 1000.0

	// ViewWidth and ViewHeight are the world units shown by the camera.
	ViewWidth  = 256.0
	ViewHeight = 144.0

	// ScreenWidth and ScreenHeight are the window size in pixels.
	ScreenWidth  = 1280
	ScreenHeight = 720
)
