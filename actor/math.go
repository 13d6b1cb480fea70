package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ZeroThreshold is the manhattan length under which a direction is considered degenerate
const ZeroThreshold = 1e-4

// IsZeroVec reports whether |x|+|y|+|z| is below ZeroThreshold
func IsZeroVec(v mgl64.Vec3) bool {
	return math.Abs(v.X())+math.Abs(v.Y())+math.Abs(v.Z()) <= ZeroThreshold
}

// QuatFromMat3 converts a rotation matrix to a unit quaternion
func QuatFromMat3(m mgl64.Mat3) mgl64.Quat {
	return mgl64.Mat4ToQuat(m.Mat4())
}

// Mat3FromQuat converts a quaternion to a rotation matrix
func Mat3FromQuat(q mgl64.Quat) mgl64.Mat3 {
	return q.Mat4().Mat3()
}

// RotationFromAxisAngle builds a rotation matrix of angle degrees around axis.
// A degenerate axis yields the identity.
func RotationFromAxisAngle(axis mgl64.Vec3, degrees float64) mgl64.Mat3 {
	if IsZeroVec(axis) || degrees == 0 {
		return mgl64.Ident3()
	}

	return mgl64.HomogRotate3D(mgl64.DegToRad(degrees), axis.Normalize()).Mat3()
}
