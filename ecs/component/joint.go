package component

import "github.com/jakecoffman/cp"

type JointKind string

const (
	// JointPrismatic lets B slide along FreeAxis relative to A within limits.
	JointPrismatic JointKind = "prismatic"
	// JointRevolute pins B to A at the anchors, optionally limiting the angle.
	JointRevolute JointKind = "revolute"
	// JointDistance keeps the anchors between MinLimit and MaxLimit apart.
	JointDistance JointKind = "distance"
)

// Joint connects two bodies (ecs.Entity is uint64). The physics system
// creates the cp constraints and stores them in Constraints.
type Joint struct {
	Kind     JointKind
	BodyA    uint64
	BodyB    uint64
	AnchorA  cp.Vector
	AnchorB  cp.Vector
	FreeAxis cp.Vector
	MinLimit float64
	MaxLimit float64
	// AngleLimited enables MinAngle/MaxAngle on revolute joints.
	AngleLimited bool
	MinAngle     float64
	MaxAngle     float64
	// MaxForce above zero softens the joint by capping its force.
	MaxForce float64
	// BreakImpulse above zero removes the joint when exceeded.
	BreakImpulse float64

	Constraints []*cp.Constraint
	Broken      bool
}

var JointComponent = NewComponent[Joint]()
