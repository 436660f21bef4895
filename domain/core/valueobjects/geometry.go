package valueobjects

// BoundingBox is the vertical extent of a rendered block, in the same
// coordinate space as the pointer position.
type BoundingBox struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// NewBoundingBox builds a box; a bottom above the top collapses to a
// zero-height box at top.
func NewBoundingBox(top, bottom float64) BoundingBox {
	if bottom < top {
		bottom = top
	}
	return BoundingBox{Top: top, Bottom: bottom}
}

// Normalized returns the box with an inverted extent collapsed
func (b BoundingBox) Normalized() BoundingBox {
	return NewBoundingBox(b.Top, b.Bottom)
}

// Midpoint returns the vertical center of the box
func (b BoundingBox) Midpoint() float64 {
	n := b.Normalized()
	return n.Top + (n.Bottom-n.Top)/2
}

// Height returns the box height
func (b BoundingBox) Height() float64 {
	n := b.Normalized()
	return n.Bottom - n.Top
}
