package actor

import "github.com/go-gl/mathgl/mgl64"

// CornersCount is the number of corners of a box
const CornersCount = 8

// unitCorners are the corners of a unit cube centered on the origin
var unitCorners = [CornersCount]mgl64.Vec3{
	{0.5, 0.5, 0.5},
	{0.5, -0.5, 0.5},
	{0.5, 0.5, -0.5},
	{0.5, -0.5, -0.5},

	{-0.5, 0.5, 0.5},
	{-0.5, -0.5, 0.5},
	{-0.5, 0.5, -0.5},
	{-0.5, -0.5, -0.5},
}

// RigidBox represents an oriented box
// Size holds the full edge lengths, the corners are placed at ±size/2 in local space.
type RigidBox struct {
	transform Transform
	size      mgl64.Vec3

	// world space corners, always in sync with transform
	corners [CornersCount]mgl64.Vec3
}

// NewRigidBox creates a box with the given pose and size
func NewRigidBox(position mgl64.Vec3, rotation mgl64.Mat3, size mgl64.Vec3) *RigidBox {
	b := &RigidBox{
		transform: Transform{Position: position, Rotation: rotation},
		size:      size,
	}
	b.computeCorners()

	return b
}

func (b *RigidBox) computeCorners() {
	for i, corner := range unitCorners {
		local := mgl64.Vec3{corner.X() * b.size.X(), corner.Y() * b.size.Y(), corner.Z() * b.size.Z()}
		b.corners[i] = b.transform.Rotation.Mul3x1(local).Add(b.transform.Position)
	}
}

func (b *RigidBox) Position() mgl64.Vec3 {
	return b.transform.Position
}

func (b *RigidBox) Rotation() mgl64.Mat3 {
	return b.transform.Rotation
}

func (b *RigidBox) Size() mgl64.Vec3 {
	return b.size
}

// Corners returns a copy of the world space corners
func (b *RigidBox) Corners() [CornersCount]mgl64.Vec3 {
	return b.corners
}

// LeftBottomNear is the minimum corner of the box.
// It ignores the rotation, only meaningful for axis aligned boxes such as the walls.
func (b *RigidBox) LeftBottomNear() mgl64.Vec3 {
	return b.transform.Position.Sub(b.size.Mul(0.5))
}

// RightTopFar is the maximum corner of the box, see LeftBottomNear.
func (b *RigidBox) RightTopFar() mgl64.Vec3 {
	return b.transform.Position.Add(b.size.Mul(0.5))
}

// Bounds returns the axis aligned extent of an unrotated box
func (b *RigidBox) Bounds() AABB {
	return AABB{Min: b.LeftBottomNear(), Max: b.RightTopFar()}
}

// IntegrateTransforms moves the box by positionDelta and rotates it by the rotation vector rotationDelta
func (b *RigidBox) IntegrateTransforms(positionDelta, rotationDelta mgl64.Vec3) {
	b.transform = b.transform.Integrate(positionDelta, rotationDelta)
	b.computeCorners()
}

// LoadState restores a pose saved with SaveState, without validation
func (b *RigidBox) LoadState(state Transform) {
	b.transform = state
	b.computeCorners()
}

func (b *RigidBox) SaveState() Transform {
	return b.transform
}
