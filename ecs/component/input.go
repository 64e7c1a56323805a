package component

// Input stores per-frame input state for an entity.
type Input struct {
	MoveX float64
	MoveY float64
	// MovePressed is true on the frame a move direction was first pressed.
	MovePressed bool
	Grab        bool
	NextDemo    bool
	// Drop is held to fall through one-way platforms.
	Drop bool
}

var InputComponent = NewComponent[Input]()
