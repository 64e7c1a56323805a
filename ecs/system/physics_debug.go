package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics-sandbox/common"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/oneway"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

var (
	defaultShapeColor = colornames.Lightgreen
	oneWayShapeColor  = colornames.Deepskyblue
	passingShapeColor = colornames.Red
)

// View maps world coordinates, Y up, onto the screen, Y down, centered on
// the camera.
type View struct {
	CamX, CamY float64
	Scale      float64
	HalfW      float64
	HalfH      float64
}

// CameraView builds the view of the world's camera for a screen of the
// given size. Without a camera the origin is centered.
func CameraView(w *ecs.World, screenW, screenH int) View {
	v := View{
		Scale: float64(screenW) / common.ViewWidth,
		HalfW: float64(screenW) / 2,
		HalfH: float64(screenH) / 2,
	}
	camEntity, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return v
	}
	if camTransform, ok := ecs.Get(w, camEntity, component.TransformComponent.Kind()); ok {
		v.CamX = camTransform.X
		v.CamY = camTransform.Y
	}
	if camComp, ok := ecs.Get(w, camEntity, component.CameraComponent.Kind()); ok && camComp.ViewWidth > 0 {
		v.Scale = float64(screenW) / camComp.ViewWidth
	}
	return v
}

func (v View) ToScreen(p cp.Vector) (float64, float64) {
	return (p.X-v.CamX)*v.Scale + v.HalfW, v.HalfH - (p.Y-v.CamY)*v.Scale
}

// DrawPhysicsDebug draws every shape and joint of the physics space as a
// wireframe. Shapes use their entity's Tint; one-way platforms and bodies
// currently passing through one are highlighted.
func DrawPhysicsDebug(ps *PhysicsSystem, w *ecs.World, screen *ebiten.Image) {
	if ps == nil || ps.Space() == nil || w == nil || screen == nil {
		return
	}

	b := screen.Bounds()
	drawer := &physicsDebugDrawer{
		screen:  screen,
		view:    CameraView(w, b.Dx(), b.Dy()),
		world:   w,
		ps:      ps,
		passing: PassingEntities(w),
	}
	cp.DrawSpace(ps.Space(), drawer)
}

// PassingEntities is every entity in some platform's pass set.
func PassingEntities(w *ecs.World) map[ecs.Entity]bool {
	out := map[ecs.Entity]bool{}
	ecs.ForEach(w, component.OneWayPlatformComponent.Kind(), func(_ ecs.Entity, p *component.OneWayPlatform) {
		for _, e := range p.Passing.Entities() {
			out[ecs.Entity(e)] = true
		}
	})
	return out
}

type physicsDebugDrawer struct {
	screen  *ebiten.Image
	view    View
	world   *ecs.World
	ps      *PhysicsSystem
	passing map[ecs.Entity]bool
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, fill)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, fill)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		d.drawLine(a, b, fill)
		return
	}
	n := b.Sub(a).Perp().Normalize().Mult(radius)
	d.drawLine(a.Add(n), b.Add(n), fill)
	d.drawLine(a.Sub(n), b.Sub(n), fill)
	d.drawCircle(a, radius, fill)
	d.drawCircle(b, radius, fill)
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], fill)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2 / d.view.Scale
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return toFColor(defaultShapeColor)
}

// ShapeColor picks the wireframe color cp passes back as fill.
func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	e, ok := d.ps.EntityOf(shape)
	if !ok {
		return toFColor(defaultShapeColor)
	}
	if d.passing[e] {
		return toFColor(passingShapeColor)
	}
	if tint, ok := ecs.Get(d.world, e, component.TintComponent.Kind()); ok && tint.Color != nil {
		return toFColor(tint.Color)
	}
	if ecs.Has(d.world, e, component.OneWayPlatformComponent.Kind()) {
		return toFColor(oneWayShapeColor)
	}
	return toFColor(defaultShapeColor)
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.view.ToScreen(a)
	x2, y2 := d.view.ToScreen(b)
	vector.StrokeLine(d.screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, toNRGBA(c), true)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, c cp.FColor) {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, c)
}

func toFColor(c color.Color) cp.FColor {
	r, g, b, a := c.RGBA()
	return cp.FColor{R: float32(r) / 0xffff, G: float32(g) / 0xffff, B: float32(b) / 0xffff, A: float32(a) / 0xffff}
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// passSetEntities lists a filter pass set as ECS entities.
func passSetEntities(set *oneway.PassSet) []ecs.Entity {
	if set == nil {
		return nil
	}
	ids := set.Entities()
	out := make([]ecs.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, ecs.Entity(id))
	}
	return out
}
