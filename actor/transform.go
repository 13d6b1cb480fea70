package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a pose in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Mat3
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.Ident3(),
	}
}

// Integrate returns the transform moved by positionDelta and turned by the small
// rotation vector rotationDelta (axis * angle).
// The rotation uses the first order quaternion derivative q' = q + 0.5 * (0, δ) * q,
// renormalized so the resulting matrix stays orthonormal.
func (t Transform) Integrate(positionDelta, rotationDelta mgl64.Vec3) Transform {
	if rotationDelta == (mgl64.Vec3{}) {
		return Transform{Position: t.Position.Add(positionDelta), Rotation: t.Rotation}
	}

	q := QuatFromMat3(t.Rotation)
	dq := mgl64.Quat{W: 0, V: rotationDelta}
	q = q.Add(dq.Mul(q).Scale(0.5)).Normalize()

	return Transform{
		Position: t.Position.Add(positionDelta),
		Rotation: Mat3FromQuat(q),
	}
}
