package actor

import "github.com/go-gl/mathgl/mgl64"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// ContainsBox checks if every corner of the box is inside the AABB
func (a AABB) ContainsBox(box *RigidBox) bool {
	for _, corner := range box.Corners() {
		if !a.ContainsPoint(corner) {
			return false
		}
	}

	return true
}
