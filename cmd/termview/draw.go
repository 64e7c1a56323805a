package main

import (
	"fmt"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/ecs/system"
)

// cellAspect is how many times taller a terminal cell is than it is wide.
const cellAspect = 2

type cell struct {
	player  bool
	passing bool
	oneWay  bool
	static  bool
}

func glyphFor(c cell) rune {
	switch {
	case c.player:
		return '@'
	case c.passing:
		return '!'
	case c.oneWay:
		return '='
	case c.static:
		return '#'
	default:
		return 'o'
	}
}

// cellCenter is the world point at the middle of terminal cell (x, y).
func cellCenter(v system.View, x, y int) cp.Vector {
	sx := float64(x) + 0.5
	sy := float64(y*cellAspect) + cellAspect/2.0
	return cp.Vector{
		X: (sx-v.HalfW)/v.Scale + v.CamX,
		Y: v.CamY - (sy-v.HalfH)/v.Scale,
	}
}

func styleFor(w *ecs.World, e ecs.Entity, c cell) tcell.Style {
	style := tcell.StyleDefault
	if c.passing {
		return style.Foreground(tcell.ColorRed)
	}
	if tint, ok := ecs.Get(w, e, component.TintComponent.Kind()); ok && tint.Color != nil {
		n := color.NRGBAModel.Convert(tint.Color).(color.NRGBA)
		return style.Foreground(tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B)))
	}
	if c.oneWay {
		return style.Foreground(tcell.ColorDeepSkyBlue)
	}
	return style.Foreground(tcell.ColorLightGreen)
}

// draw rasterizes the physics space by querying the shape under every cell.
func draw(screen tcell.Screen, sb *sandbox) {
	screen.Clear()
	cols, rows := screen.Size()
	view := system.CameraView(sb.world, cols, rows*cellAspect)
	passing := system.PassingEntities(sb.world)
	space := sb.physics.Space()

	for y := 1; y < rows; y++ {
		for x := 0; x < cols; x++ {
			hit := space.PointQueryNearest(cellCenter(view, x, y), 0, cp.SHAPE_FILTER_ALL)
			if hit == nil || hit.Shape == nil {
				continue
			}
			e, ok := sb.physics.EntityOf(hit.Shape)
			if !ok {
				continue
			}
			c := cell{
				player:  ecs.Has(sb.world, e, component.PlayerTagComponent.Kind()),
				passing: passing[e],
				oneWay:  ecs.Has(sb.world, e, component.OneWayPlatformComponent.Kind()),
				static:  hit.Shape.Body().GetType() == cp.BODY_STATIC,
			}
			screen.SetContent(x, y, glyphFor(c), nil, styleFor(sb.world, e, c))
		}
	}

	header := fmt.Sprintf("Demo: %s  arrows/wasd: move  s: drop  space: next  r: reload  q: quit", sb.demos.Current())
	for i, r := range header {
		if i >= cols {
			break
		}
		screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Bold(true))
	}
	screen.Show()
}
