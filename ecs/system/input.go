package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

// InputSource reports the raw input for a frame. The game polls ebiten; tests
// and the terminal viewer supply their own.
type InputSource interface {
	Poll() component.Input
}

type InputSystem struct {
	source InputSource
}

func NewInputSystem(source InputSource) *InputSystem {
	if source == nil {
		source = EbitenInput{}
	}
	return &InputSystem{source: source}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	state := i.source.Poll()
	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, input *component.Input) {
		*input = state
	})
}

// EbitenInput polls the keyboard and the first gamepad.
type EbitenInput struct{}

func (EbitenInput) Poll() component.Input {
	const stickDeadzone = 0.5

	var in component.Input

	type direction struct {
		keys []ebiten.Key
		x, y float64
	}
	directions := []direction{
		{keys: []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}, x: -1},
		{keys: []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}, x: 1},
		{keys: []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}, y: 1},
		{keys: []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}, y: -1},
	}
	for _, d := range directions {
		for _, k := range d.keys {
			if inpututil.IsKeyJustPressed(k) {
				in.MoveX += d.x
				in.MoveY += d.y
				in.MovePressed = true
				break
			}
		}
	}

	in.Grab = inpututil.IsKeyJustPressed(ebiten.KeyE)
	in.NextDemo = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	in.Drop = ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown)

	if gamepads := ebiten.AppendGamepadIDs(nil); len(gamepads) > 0 {
		id := gamepads[0]
		ly := -ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		pad := []struct {
			button ebiten.StandardGamepadButton
			x, y   float64
		}{
			{ebiten.StandardGamepadButtonLeftLeft, -1, 0},
			{ebiten.StandardGamepadButtonLeftRight, 1, 0},
			{ebiten.StandardGamepadButtonLeftTop, 0, 1},
			{ebiten.StandardGamepadButtonLeftBottom, 0, -1},
		}
		for _, p := range pad {
			if inpututil.IsStandardGamepadButtonJustPressed(id, p.button) {
				in.MoveX += p.x
				in.MoveY += p.y
				in.MovePressed = true
			}
		}
		in.Grab = in.Grab || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightLeft)
		in.NextDemo = in.NextDemo || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight)
		in.Drop = in.Drop || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftBottom) || ly < -stickDeadzone
	}

	// Diagonal presses keep a unit axis.
	if l := math.Hypot(in.MoveX, in.MoveY); l > 1 {
		in.MoveX /= l
		in.MoveY /= l
	}
	return in
}
