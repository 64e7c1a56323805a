package component

import "github.com/jakecoffman/cp"

type ShapeKind string

const (
	ShapeBox            ShapeKind = "box"
	ShapeRoundBox       ShapeKind = "round_box"
	ShapeCircle         ShapeKind = "circle"
	ShapeEllipse        ShapeKind = "ellipse"
	ShapeCapsule        ShapeKind = "capsule"
	ShapePolygon        ShapeKind = "polygon"
	ShapeRegularPolygon ShapeKind = "regular_polygon"
	ShapeSegment        ShapeKind = "segment"
)

// Collider describes one cp shape relative to its body's center.
//
// Box and RoundBox use Width/Height (RoundBox also Radius as the corner
// radius), Circle uses Radius, Ellipse uses Width/Height as the two
// diameters, Capsule uses Height as the straight section and Radius for the
// caps, RegularPolygon uses Radius and Sides, Polygon uses Vertices and
// Segment uses the first two Vertices with Radius as thickness.
type Collider struct {
	Kind     ShapeKind
	Width    float64
	Height   float64
	Radius   float64
	Sides    int
	Vertices []cp.Vector
	OffsetX  float64
	OffsetY  float64
}

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Body and Shapes are filled in by the physics system.
type PhysicsBody struct {
	Body   *cp.Body
	Shapes []*cp.Shape

	Collider Collider
	// Children are extra colliders fixed to the same body, e.g. the side
	// walls of a container.
	Children []Collider

	Mass          float64
	Friction      float64
	Elasticity    float64
	Static        bool
	FixedRotation bool
	Sensor        bool

	// Impulse is applied once on the next physics step, then cleared.
	Impulse cp.Vector
	// Force is applied for the next physics step, then cleared.
	Force cp.Vector
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()

// GravityScale scales world gravity for a dynamic physics body.
// 1.0 = normal gravity, 0.0 = no gravity. Bodies without it use 1.0.
type GravityScale struct {
	Scale float64
}

var GravityScaleComponent = NewComponent[GravityScale]()

// Contacts lists the entities (ecs.Entity is uint64) touching this body
// during the last physics step, after one-way filtering.
type Contacts struct {
	Entities []uint64
	// Impulses holds the solver impulse magnitude per entry of Entities.
	Impulses []float64
}

func (c *Contacts) Touching(e uint64) bool {
	for _, other := range c.Entities {
		if other == e {
			return true
		}
	}
	return false
}

var ContactsComponent = NewComponent[Contacts]()
