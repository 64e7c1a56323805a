package entity

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/scenes"
)

var (
	hexColor       = color.NRGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}
	hexStaticColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// HexLayout is the position of one hexagon in a generated grid.
type HexLayout struct {
	Row, Col int
	X, Y     float64
	Static   bool
}

// hexWidth is the flat-to-flat width of a pointy-top hexagon of radius r.
func hexWidth(r float64) float64 { return math.Sqrt(3) * r }

// LayoutHexGrid places spec's hexagons column by column, bottom row first.
// Odd rows are shifted right by half a hexagon.
func LayoutHexGrid(spec scenes.HexGridSpec) []HexLayout {
	width := hexWidth(spec.Radius)
	yShift := 1.5 * spec.Radius
	every := spec.StaticEvery

	out := make([]HexLayout, 0, spec.Rows*spec.Cols)
	for k := 0; k < spec.Cols; k++ {
		for i := 0; i < spec.Rows; i++ {
			offset := 0.0
			if i%2 == 1 {
				offset = width / 2
			}
			static := false
			if every > 0 {
				static = (i%every == 0 || i == spec.Rows-1) && (k%every == 0 || k == spec.Cols-1)
			}
			out = append(out, HexLayout{
				Row:    i,
				Col:    k,
				X:      spec.X + offset + float64(k)*width,
				Y:      spec.Y + float64(i)*yShift,
				Static: static,
			})
		}
	}
	return out
}

// BuildHexGrid creates the hexagons of spec and joins each to the one below
// it and, on matching row and column parity, to its left neighbour, with
// short prismatic joints.
func BuildHexGrid(w *ecs.World, spec scenes.HexGridSpec, demo string) error {
	if spec.Rows <= 0 || spec.Cols <= 0 {
		return fmt.Errorf("hex grid %q: rows and cols must be positive", spec.Name)
	}
	if spec.Radius <= spec.Gap {
		return fmt.Errorf("hex grid %q: radius %.2f must exceed gap %.2f", spec.Name, spec.Radius, spec.Gap)
	}

	dynamicColor, staticColor := color.Color(hexColor), color.Color(hexStaticColor)
	if spec.Color != nil && spec.Color.Color != nil {
		dynamicColor = spec.Color.Color
	}
	if spec.StaticColor != nil && spec.StaticColor.Color != nil {
		staticColor = spec.StaticColor.Color
	}

	layout := LayoutHexGrid(spec)
	bodies := make([]ecs.Entity, 0, len(layout))
	statics := make([]bool, 0, len(layout))
	width := hexWidth(spec.Radius)
	yShift := 1.5 * spec.Radius

	for _, hex := range layout {
		tint := dynamicColor
		if hex.Static {
			tint = staticColor
		}
		e, err := newHex(w, spec, hex, tint, demo)
		if err != nil {
			return err
		}

		if hex.Row > 0 {
			xShift := width / 2
			if hex.Row%2 == 0 {
				xShift = -xShift
			}
			parent := len(bodies) - 1
			if err := hexJoint(w, spec, bodies[parent], e, statics[parent], hex.Static, cp.Vector{X: xShift, Y: yShift}, demo); err != nil {
				return err
			}
		}
		if hex.Col > 0 && hex.Row%2 == hex.Col%2 {
			parent := len(bodies) - spec.Rows
			if err := hexJoint(w, spec, bodies[parent], e, statics[parent], hex.Static, cp.Vector{X: width}, demo); err != nil {
				return err
			}
		}

		bodies = append(bodies, e)
		statics = append(statics, hex.Static)
	}
	return nil
}

func newHex(w *ecs.World, spec scenes.HexGridSpec, hex HexLayout, tint color.Color, demo string) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	err := errors.Join(
		ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: fmt.Sprintf("%s_%d_%d", spec.Name, hex.Row, hex.Col)}),
		ecs.Add(w, e, component.DemoMemberComponent.Kind(), &component.DemoMember{Demo: demo}),
		ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: hex.X, Y: hex.Y}),
		ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Collider: component.Collider{Kind: component.ShapeRegularPolygon, Radius: spec.Radius - spec.Gap, Sides: 6},
			Static:   hex.Static,
			Friction: 0.5,
		}),
		ecs.Add(w, e, component.ContactsComponent.Kind(), &component.Contacts{}),
		ecs.Add(w, e, component.DestructibleComponent.Kind(), &component.Destructible{ImpulseThreshold: spec.ImpulseThreshold}),
		ecs.Add(w, e, component.TintComponent.Kind(), &component.Tint{Color: tint}),
	)
	if err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("hex grid %q: %w", spec.Name, err)
	}
	return e, nil
}

// hexJoint links parent and child. Two static hexes need no joint; cp
// cannot solve a constraint between two infinite masses.
func hexJoint(w *ecs.World, spec scenes.HexGridSpec, parent, child ecs.Entity, parentStatic, childStatic bool, anchor cp.Vector, demo string) error {
	if parentStatic && childStatic {
		return nil
	}
	limit := spec.Limit
	if limit <= 0 {
		limit = 1
	}
	_, err := newJoint(w, &component.Joint{
		Kind:         component.JointPrismatic,
		BodyA:        uint64(parent),
		BodyB:        uint64(child),
		AnchorA:      anchor,
		FreeAxis:     cp.Vector{X: 1},
		MinLimit:     -limit,
		MaxLimit:     limit,
		BreakImpulse: spec.BreakImpulse,
	}, demo)
	return err
}
