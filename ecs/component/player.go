package component

// Holder tracks whether the player is currently grabbing something.
type Holder struct {
	IsHolding bool
}

var HolderComponent = NewComponent[Holder]()

// PlayerControl holds the tunables for turning input into impulses.
type PlayerControl struct {
	ImpulseScale float64
}

var PlayerControlComponent = NewComponent[PlayerControl]()
