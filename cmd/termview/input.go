package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/physics-sandbox/ecs/component"
)

// dropFrames is how long one press of the drop key keeps the player falling
// through platforms. Terminals report presses, not releases.
const dropFrames = 20

// termInput collects key presses between frames and hands them to the input
// system as one frame of input.
type termInput struct {
	pending component.Input
	drop    int
}

func (t *termInput) handleKey(ev *tcell.EventKey) {
	move := func(x, y float64) {
		t.pending.MoveX, t.pending.MoveY = x, y
		t.pending.MovePressed = true
	}

	switch ev.Key() {
	case tcell.KeyLeft:
		move(-1, 0)
	case tcell.KeyRight:
		move(1, 0)
	case tcell.KeyUp:
		move(0, 1)
	case tcell.KeyDown:
		move(0, -1)
		t.drop = dropFrames
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a':
			move(-1, 0)
		case 'd':
			move(1, 0)
		case 'w':
			move(0, 1)
		case 's':
			move(0, -1)
			t.drop = dropFrames
		case 'e':
			t.pending.Grab = true
		case ' ':
			t.pending.NextDemo = true
		}
	}
}

func (t *termInput) Poll() component.Input {
	in := t.pending
	t.pending = component.Input{}
	if t.drop > 0 {
		in.Drop = true
		t.drop--
	}
	return in
}
