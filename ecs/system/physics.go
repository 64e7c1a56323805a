package system

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics-sandbox/common"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/oneway"
	"github.com/milk9111/physics-sandbox/scenes"
)

const (
	collisionTypeDynamic cp.CollisionType = iota + 1
	collisionTypeStatic
	collisionTypeOneWay
)

const ellipseSegments = 16

type PhysicsConfig struct {
	GravityFactor float64
	Iterations    int
	TimeStep      float64
	Filter        oneway.Config
}

func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		GravityFactor: common.GravityFactor,
		Iterations:    common.Iterations,
		TimeStep:      common.TimeStep,
		Filter:        oneway.DefaultConfig(),
	}
}

// PhysicsConfigFromSettings overlays the tunables of settings.yaml on the
// defaults. Zero values keep the default.
func PhysicsConfigFromSettings(s scenes.Settings) PhysicsConfig {
	cfg := DefaultPhysicsConfig()
	if s.GravityFactor > 0 {
		cfg.GravityFactor = s.GravityFactor
	}
	if s.Iterations > 0 {
		cfg.Iterations = s.Iterations
	}
	if s.Filter.MinAlignment > 0 {
		cfg.Filter.MinAlignment = s.Filter.MinAlignment
	}
	if s.Filter.NormalEpsilon > 0 {
		cfg.Filter.NormalEpsilon = s.Filter.NormalEpsilon
	}
	return cfg
}

// PhysicsSystem mirrors PhysicsBody and Joint components into a cp.Space,
// steps it and copies the result back into Transform. Contacts against
// one-way platforms go through the oneway filter in a PreSolve handler.
type PhysicsSystem struct {
	space          *cp.Space
	cfg            PhysicsConfig
	gravityEnabled bool
	handlersReady  bool

	lookup *worldLookup
	filter *oneway.Filter

	entities map[ecs.Entity]*bodyInfo
	shapes   map[*cp.Shape]ecs.Entity
	joints   map[ecs.Entity][]*cp.Constraint
	contacts map[ecs.Entity]*component.Contacts
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool
}

func NewPhysicsSystem(cfg PhysicsConfig) *PhysicsSystem {
	if cfg.TimeStep <= 0 {
		cfg.TimeStep = common.TimeStep
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = common.Iterations
	}
	lookup := &worldLookup{}
	ps := &PhysicsSystem{
		cfg:            cfg,
		gravityEnabled: true,
		lookup:         lookup,
		filter:         oneway.NewFilter(lookup, cfg.Filter),
		entities:       make(map[ecs.Entity]*bodyInfo),
		shapes:         make(map[*cp.Shape]ecs.Entity),
		joints:         make(map[ecs.Entity][]*cp.Constraint),
		contacts:       make(map[ecs.Entity]*component.Contacts),
	}
	ps.space = ps.newSpace()
	return ps
}

func (ps *PhysicsSystem) newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = uint(ps.cfg.Iterations)
	space.SetGravity(ps.gravity())
	ps.handlersReady = false
	return space
}

func (ps *PhysicsSystem) gravity() cp.Vector {
	if !ps.gravityEnabled {
		return cp.Vector{}
	}
	return cp.Vector{X: 0, Y: -ps.cfg.GravityFactor}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Filter() *oneway.Filter {
	if ps == nil {
		return nil
	}
	return ps.filter
}

// EntityOf returns the entity owning shape.
func (ps *PhysicsSystem) EntityOf(shape *cp.Shape) (ecs.Entity, bool) {
	if ps == nil {
		return 0, false
	}
	e, ok := ps.shapes[shape]
	return e, ok
}

func (ps *PhysicsSystem) Config() PhysicsConfig {
	return ps.cfg
}

// SetConfig applies new settings to the running space.
func (ps *PhysicsSystem) SetConfig(cfg PhysicsConfig) {
	if cfg.TimeStep <= 0 {
		cfg.TimeStep = ps.cfg.TimeStep
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = ps.cfg.Iterations
	}
	ps.cfg = cfg
	ps.filter.SetConfig(cfg.Filter)
	ps.space.Iterations = uint(cfg.Iterations)
	ps.space.SetGravity(ps.gravity())
}

// SetGravityEnabled switches world gravity between off and -Y * GravityFactor.
func (ps *PhysicsSystem) SetGravityEnabled(enabled bool) {
	if ps == nil {
		return
	}
	ps.gravityEnabled = enabled
	if ps.space != nil {
		ps.space.SetGravity(ps.gravity())
	}
}

func (ps *PhysicsSystem) GravityEnabled() bool {
	return ps.gravityEnabled
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	if ps.space == nil {
		ps.space = ps.newSpace()
	}
	ps.lookup.world = w

	ps.ensureHandlers()
	ps.cleanupJoints(w)
	ps.cleanupEntities(w)
	ps.syncEntities(w)
	ps.syncJoints(w)
	ps.applyImpulses(w)
	ps.resetContacts(w)

	ps.filter.BeginStep()
	ps.space.Step(ps.cfg.TimeStep)
	ps.filter.EndStep()

	ps.syncTransforms(w)
	ps.flushContacts(w)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	oneWay := ps.space.NewWildcardCollisionHandler(collisionTypeOneWay)
	oneWay.UserData = ps
	oneWay.PreSolveFunc = oneWayPreSolve
	oneWay.PostSolveFunc = recordContact

	for _, t := range []cp.CollisionType{collisionTypeDynamic, collisionTypeStatic} {
		handler := ps.space.NewWildcardCollisionHandler(t)
		handler.UserData = ps
		handler.PostSolveFunc = recordContact
	}

	ps.handlersReady = true
}

// oneWayPreSolve runs for every arbiter touching a one-way shape. Shape a is
// always the one-way shape, so the arbiter normal points from the platform
// toward the other body.
func oneWayPreSolve(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
	sys, ok := userData.(*PhysicsSystem)
	if !ok || sys == nil {
		return true
	}
	shapeA, shapeB := arb.Shapes()
	platform, okA := sys.shapes[shapeA]
	other, okB := sys.shapes[shapeB]
	if !okA || !okB {
		return true
	}
	pair := contactPairFromArbiter(arb, platform, other)
	return sys.filter.Decide(pair) == oneway.Keep
}

// contactPairFromArbiter converts a cp arbiter into a single-manifold pair.
// cp reports overlap as a negative distance.
func contactPairFromArbiter(arb *cp.Arbiter, e1, e2 ecs.Entity) oneway.ContactPair {
	set := arb.ContactPointSet()
	depths := make([]float64, 0, set.Count)
	for i := 0; i < set.Count; i++ {
		depths = append(depths, -set.Points[i].Distance)
	}
	return oneway.ContactPair{
		Entity1: oneway.Entity(e1),
		Entity2: oneway.Entity(e2),
		Manifolds: []oneway.Manifold{{
			Normal1: set.Normal,
			Normal2: set.Normal.Neg(),
			Depths:  depths,
		}},
	}
}

// recordContact runs once per side of every arbiter that reached the solver.
func recordContact(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
	sys, ok := userData.(*PhysicsSystem)
	if !ok || sys == nil {
		return
	}
	shapeA, shapeB := arb.Shapes()
	self, okA := sys.shapes[shapeA]
	other, okB := sys.shapes[shapeB]
	if !okA || !okB || self == other {
		return
	}
	c := sys.contacts[self]
	if c == nil {
		c = &component.Contacts{}
		sys.contacts[self] = c
	}
	impulse := arb.TotalImpulse().Length()
	for i, e := range c.Entities {
		if e == uint64(other) {
			c.Impulses[i] += impulse
			return
		}
	}
	c.Entities = append(c.Entities, uint64(other))
	c.Impulses = append(c.Impulses, impulse)
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	if ps.space == nil {
		return
	}

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if info := ps.entities[e]; info != nil {
			if bodyComp.Body == nil {
				bodyComp.Body = info.body
				bodyComp.Shapes = info.shapes
			}
			return
		}

		var gravity *component.GravityScale
		if gs, ok := ecs.Get(w, e, component.GravityScaleComponent.Kind()); ok {
			gravity = gs
		}
		oneWay := ecs.Has(w, e, component.OneWayPlatformComponent.Kind())

		info := ps.createBodyInfo(*transform, bodyComp, gravity, oneWay)
		if info == nil {
			log.Printf("Physics: entity %v has no usable collider", e)
			ps.entities[e] = &bodyInfo{}
			return
		}
		ps.entities[e] = info
		for _, shape := range info.shapes {
			ps.shapes[shape] = e
		}
		bodyComp.Body = info.body
		bodyComp.Shapes = info.shapes
	})
}

func (ps *PhysicsSystem) createBodyInfo(transform component.Transform, bodyComp *component.PhysicsBody, gravity *component.GravityScale, oneWay bool) *bodyInfo {
	colliders := append([]component.Collider{bodyComp.Collider}, bodyComp.Children...)

	var body *cp.Body
	if bodyComp.Static {
		body = cp.NewStaticBody()
	} else {
		mass := bodyComp.Mass
		if mass <= 0 {
			mass = 1
		}
		moment := math.Inf(1)
		if !bodyComp.FixedRotation {
			moment = momentForCollider(mass, bodyComp.Collider)
		}
		body = cp.NewBody(mass, moment)
		if gravity != nil {
			body.SetVelocityUpdateFunc(func(b *cp.Body, g cp.Vector, damping, dt float64) {
				b.UpdateVelocity(g.Mult(gravity.Scale), damping, dt)
			})
		}
	}
	body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	body.SetAngle(transform.Rotation)

	info := &bodyInfo{body: body, static: bodyComp.Static}
	for _, c := range colliders {
		shape := newShape(body, c)
		if shape == nil {
			continue
		}
		shape.SetFriction(bodyComp.Friction)
		shape.SetElasticity(bodyComp.Elasticity)
		shape.SetSensor(bodyComp.Sensor)
		switch {
		case oneWay:
			shape.SetCollisionType(collisionTypeOneWay)
		case bodyComp.Static:
			shape.SetCollisionType(collisionTypeStatic)
		default:
			shape.SetCollisionType(collisionTypeDynamic)
		}
		info.shapes = append(info.shapes, shape)
	}
	if len(info.shapes) == 0 {
		return nil
	}

	ps.space.AddBody(body)
	for _, shape := range info.shapes {
		ps.space.AddShape(shape)
	}
	return info
}

// newShape builds the cp shape for c on body, offset by the collider offset.
func newShape(body *cp.Body, c component.Collider) *cp.Shape {
	offset := cp.Vector{X: c.OffsetX, Y: c.OffsetY}
	switch c.Kind {
	case component.ShapeBox, component.ShapeRoundBox:
		if c.Width <= 0 || c.Height <= 0 {
			return nil
		}
		r := 0.0
		if c.Kind == component.ShapeRoundBox {
			r = math.Min(c.Radius, math.Min(c.Width, c.Height)/2)
		}
		hw, hh := c.Width/2-r, c.Height/2-r
		bb := cp.BB{L: offset.X - hw, B: offset.Y - hh, R: offset.X + hw, T: offset.Y + hh}
		return cp.NewBox2(body, bb, r)
	case component.ShapeCircle:
		if c.Radius <= 0 {
			return nil
		}
		return cp.NewCircle(body, c.Radius, offset)
	case component.ShapeCapsule:
		if c.Radius <= 0 {
			return nil
		}
		a := offset.Add(cp.Vector{Y: -c.Height / 2})
		b := offset.Add(cp.Vector{Y: c.Height / 2})
		return cp.NewSegment(body, a, b, c.Radius)
	case component.ShapeSegment:
		if len(c.Vertices) < 2 {
			return nil
		}
		return cp.NewSegment(body, c.Vertices[0].Add(offset), c.Vertices[1].Add(offset), c.Radius)
	}

	verts := colliderVertices(c)
	if len(verts) < 3 {
		return nil
	}
	radius := 0.0
	if c.Kind == component.ShapePolygon {
		radius = c.Radius
	}
	return cp.NewPolyShape(body, len(verts), verts, cp.NewTransformTranslate(offset), radius)
}

// colliderVertices returns the counter-clockwise outline of polygonal
// colliders in body space, without the offset. Regular polygons have a
// vertex pointing up.
func colliderVertices(c component.Collider) []cp.Vector {
	switch c.Kind {
	case component.ShapePolygon:
		return c.Vertices
	case component.ShapeRegularPolygon:
		return regularPolygon(c.Sides, c.Radius, c.Radius, math.Pi/2)
	case component.ShapeEllipse:
		return regularPolygon(ellipseSegments, c.Width/2, c.Height/2, 0)
	}
	return nil
}

func regularPolygon(sides int, rx, ry, start float64) []cp.Vector {
	if sides < 3 || rx <= 0 || ry <= 0 {
		return nil
	}
	verts := make([]cp.Vector, 0, sides)
	for i := 0; i < sides; i++ {
		angle := start + 2*math.Pi*float64(i)/float64(sides)
		verts = append(verts, cp.Vector{X: rx * math.Cos(angle), Y: ry * math.Sin(angle)})
	}
	return verts
}

func momentForCollider(mass float64, c component.Collider) float64 {
	offset := cp.Vector{X: c.OffsetX, Y: c.OffsetY}
	switch c.Kind {
	case component.ShapeBox, component.ShapeRoundBox:
		if c.Width > 0 && c.Height > 0 {
			return cp.MomentForBox(mass, c.Width, c.Height)
		}
	case component.ShapeCircle:
		if c.Radius > 0 {
			return cp.MomentForCircle(mass, 0, c.Radius, offset)
		}
	case component.ShapeCapsule:
		a := offset.Add(cp.Vector{Y: -c.Height / 2})
		b := offset.Add(cp.Vector{Y: c.Height / 2})
		return cp.MomentForSegment(mass, a, b, c.Radius)
	case component.ShapeSegment:
		if len(c.Vertices) >= 2 {
			return cp.MomentForSegment(mass, c.Vertices[0].Add(offset), c.Vertices[1].Add(offset), c.Radius)
		}
	default:
		if verts := colliderVertices(c); len(verts) >= 3 {
			return cp.MomentForPoly(mass, len(verts), verts, offset, 0)
		}
	}
	return cp.MomentForBox(mass, 1, 1)
}

// syncJoints creates cp constraints for new Joint components and removes
// those of broken joints.
func (ps *PhysicsSystem) syncJoints(w *ecs.World) {
	ecs.ForEach(w, component.JointComponent.Kind(), func(e ecs.Entity, joint *component.Joint) {
		if _, exists := ps.joints[e]; exists || joint.Broken {
			return
		}
		a := ps.jointBody(w, joint.BodyA)
		b := ps.jointBody(w, joint.BodyB)
		if a == nil || b == nil || a == b {
			return
		}
		// cp cannot solve a constraint between two infinite masses.
		if a.GetType() == cp.BODY_STATIC && b.GetType() == cp.BODY_STATIC {
			return
		}
		constraints := newConstraints(a, b, joint)
		for _, c := range constraints {
			if joint.MaxForce > 0 {
				c.SetMaxForce(joint.MaxForce)
			}
			c.SetCollideBodies(false)
			ps.space.AddConstraint(c)
		}
		joint.Constraints = constraints
		ps.joints[e] = constraints
	})
}

// jointBody resolves a joint end. Zero means the space's static body.
func (ps *PhysicsSystem) jointBody(w *ecs.World, id uint64) *cp.Body {
	if id == 0 {
		return ps.space.StaticBody
	}
	bodyComp, ok := ecs.Get(w, ecs.Entity(id), component.PhysicsBodyComponent.Kind())
	if !ok {
		return nil
	}
	return bodyComp.Body
}

func newConstraints(a, b *cp.Body, joint *component.Joint) []*cp.Constraint {
	switch joint.Kind {
	case component.JointPrismatic:
		axis := joint.FreeAxis
		if axis.Length() == 0 {
			axis = cp.Vector{X: 1, Y: 0}
		}
		axis = axis.Normalize()
		grooveA := joint.AnchorA.Add(axis.Mult(joint.MinLimit))
		grooveB := joint.AnchorA.Add(axis.Mult(joint.MaxLimit))
		return []*cp.Constraint{
			cp.NewGrooveJoint(a, b, grooveA, grooveB, joint.AnchorB),
			cp.NewRotaryLimitJoint(a, b, joint.MinAngle, joint.MaxAngle),
		}
	case component.JointRevolute:
		out := []*cp.Constraint{cp.NewPivotJoint2(a, b, joint.AnchorA, joint.AnchorB)}
		if joint.AngleLimited {
			out = append(out, cp.NewRotaryLimitJoint(a, b, joint.MinAngle, joint.MaxAngle))
		}
		return out
	case component.JointDistance:
		return []*cp.Constraint{cp.NewSlideJoint(a, b, joint.AnchorA, joint.AnchorB, joint.MinLimit, joint.MaxLimit)}
	}
	return nil
}

// cleanupJoints removes the constraints of joints that broke, were
// destroyed, or lost one of their bodies. It runs before bodies are removed
// so no constraint outlives its body.
func (ps *PhysicsSystem) cleanupJoints(w *ecs.World) {
	for e, constraints := range ps.joints {
		joint, ok := ecs.Get(w, e, component.JointComponent.Kind())
		keep := ok && !joint.Broken &&
			ps.jointEndAlive(w, joint.BodyA) && ps.jointEndAlive(w, joint.BodyB)
		if keep {
			continue
		}
		for _, c := range constraints {
			ps.space.RemoveConstraint(c)
		}
		if ok {
			joint.Constraints = nil
		}
		delete(ps.joints, e)
	}
}

func (ps *PhysicsSystem) jointEndAlive(w *ecs.World, id uint64) bool {
	if id == 0 {
		return true
	}
	e := ecs.Entity(id)
	return ecs.IsAlive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind())
}

func (ps *PhysicsSystem) applyImpulses(w *ecs.World) {
	ecs.ForEach(w, component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody) {
		if bodyComp.Body == nil || bodyComp.Static {
			bodyComp.Impulse = cp.Vector{}
			bodyComp.Force = cp.Vector{}
			return
		}
		pos := bodyComp.Body.Position()
		if bodyComp.Impulse != (cp.Vector{}) {
			bodyComp.Body.ApplyImpulseAtWorldPoint(bodyComp.Impulse, pos)
			bodyComp.Impulse = cp.Vector{}
		}
		if bodyComp.Force != (cp.Vector{}) {
			bodyComp.Body.ApplyForceAtWorldPoint(bodyComp.Force, pos)
			bodyComp.Force = cp.Vector{}
		}
	})
}

func (ps *PhysicsSystem) resetContacts(w *ecs.World) {
	clear(ps.contacts)
	ecs.ForEach(w, component.ContactsComponent.Kind(), func(e ecs.Entity, c *component.Contacts) {
		c.Entities = c.Entities[:0]
		c.Impulses = c.Impulses[:0]
	})
}

func (ps *PhysicsSystem) flushContacts(w *ecs.World) {
	for e, recorded := range ps.contacts {
		c, ok := ecs.Get(w, e, component.ContactsComponent.Kind())
		if !ok {
			continue
		}
		c.Entities = append(c.Entities, recorded.Entities...)
		c.Impulses = append(c.Impulses, recorded.Impulses...)
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if bodyComp.Body == nil || bodyComp.Static {
			return
		}
		pos := bodyComp.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = bodyComp.Body.Angle()
	})
}

// cleanupEntities removes the cp bodies of entities that died or lost their
// PhysicsBody, and drops them from every one-way pass set.
func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		for _, shape := range info.shapes {
			ps.space.RemoveShape(shape)
			delete(ps.shapes, shape)
		}
		if info.body != nil {
			ps.space.RemoveBody(info.body)
		}
		ps.filter.Forget(oneway.Entity(e))
		delete(ps.entities, e)
	}
}
