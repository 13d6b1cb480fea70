package constraint

import "github.com/go-gl/mathgl/mgl64"

const (
	// DefaultRestitution makes contacts fully inelastic
	DefaultRestitution = 0.0
	// DefaultFriction fully resists tangential slip at the contact point
	DefaultFriction = 1.0
	// BiasFactor is the share of the penetration removed by each positional correction
	BiasFactor = 0.1
)

// Impulse solves the one dimensional effective mass equation along direction:
// impulse = correction / (invMass + dot(d, (I⁻¹ (r × d)) × r))
// r is the contact point relative to the center of mass.
func Impulse(correction, direction, r mgl64.Vec3, inverseMass float64, inverseInertia mgl64.Mat3) mgl64.Vec3 {
	temp := inverseInertia.Mul3x1(r.Cross(direction))
	effectiveMass := inverseMass + direction.Dot(temp.Cross(r))
	if effectiveMass < 1e-10 {
		return mgl64.Vec3{}
	}

	return correction.Mul(1.0 / effectiveMass)
}

// NormalCorrection is the velocity change cancelling the normal approach speed
// and adding the restitution bounce.
func NormalCorrection(pointVelocity, normal mgl64.Vec3, restitution float64) mgl64.Vec3 {
	return normal.Mul(-(1.0 + restitution) * pointVelocity.Dot(normal))
}

// BiasCorrection is the positional change removing BiasFactor of the penetration depth along normal
func BiasCorrection(normal mgl64.Vec3, depth float64) mgl64.Vec3 {
	return normal.Mul(depth).Mul(-BiasFactor)
}
