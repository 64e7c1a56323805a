package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

// Name is the scene name of an entity, used by joints and the camera to
// find their targets.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()

// DemoMember marks an entity as owned by a demo scene; it is destroyed when
// that demo is left.
type DemoMember struct {
	Demo string
}

var DemoMemberComponent = NewComponent[DemoMember]()
