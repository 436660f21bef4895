package services

import "promptbuilder/domain/core/valueobjects"

// ResolveInsertionIndex maps a pointer's vertical position to a gap index
// in [0, len(boxes)]. Gap i sits before block i; gap len(boxes) is the end.
//
// The pointer belongs to the first block whose midpoint lies below it.
// A pointer exactly on a midpoint counts as below that block, so ties go
// to the later gap. Boxes are expected in document order.
func ResolveInsertionIndex(pointerY float64, boxes []valueobjects.BoundingBox) int {
	index := len(boxes)
	for i, box := range boxes {
		if pointerY < box.Midpoint() {
			return i
		}
		index = i + 1
	}
	return index
}
