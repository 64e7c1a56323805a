package component

import "image/color"

// Tint is the outline color used by the debug renderer.
type Tint struct {
	Color color.Color
}

var TintComponent = NewComponent[Tint]()
