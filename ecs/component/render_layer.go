package component

import "image/color"

// RenderBox draws an entity as a filled box between the under and over
// terrain passes. Higher Order draws later.
type RenderBox struct {
	Color color.RGBA
	Order int
}

var RenderBoxComponent = NewComponent[RenderBox]()
