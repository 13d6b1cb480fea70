package actor

import (
	"github.com/akmonengine/tumble/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

type Material struct {
	Restitution float64 // 0= no rebound, 1= perfect restitution
	Friction    float64 // 1= tangential slip fully cancelled at the contact point
}

// Motion is the persisted velocity state of a rigid body
type Motion struct {
	Linear  mgl64.Vec3
	Angular mgl64.Vec3
}

// RigidBody holds the dynamic state of a box moving inside static walls
type RigidBody struct {
	Box   *RigidBox
	Walls *RigidBox

	Velocity        mgl64.Vec3 // Linear velocity (m/s)
	AngularVelocity mgl64.Vec3 // rad/s

	InverseMass         float64
	InverseInertiaLocal mgl64.Mat3
	inverseInertiaWorld mgl64.Mat3

	IsSleeping bool
	SleepTimer float64

	Material Material
}

// NewRigidBody creates the dynamic state of box, colliding against walls.
// mass must be finite and positive.
func NewRigidBody(box, walls *RigidBox, mass float64) *RigidBody {
	rb := &RigidBody{
		Box:         box,
		Walls:       walls,
		InverseMass: 1.0 / mass,
		Material: Material{
			Restitution: constraint.DefaultRestitution,
			Friction:    constraint.DefaultFriction,
		},
	}

	size := box.Size()
	sizeSq := mgl64.Vec3{size.X() * size.X(), size.Y() * size.Y(), size.Z() * size.Z()}

	// I = (m/12) * (dimension1² + dimension2²)
	factor := mass / 12.0
	inertia := mgl64.Vec3{
		factor * (sizeSq.Y() + sizeSq.Z()),
		factor * (sizeSq.X() + sizeSq.Z()),
		factor * (sizeSq.X() + sizeSq.Y()),
	}
	rb.InverseInertiaLocal = mgl64.Diag3(mgl64.Vec3{1.0 / inertia.X(), 1.0 / inertia.Y(), 1.0 / inertia.Z()})
	rb.updateInertiaTensor()

	return rb
}

// I_world^(-1) = R * I_local^(-1) * R^T
func (rb *RigidBody) updateInertiaTensor() {
	R := rb.Box.Rotation()
	rb.inverseInertiaWorld = R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// GetInverseInertiaWorld returns the inverse inertia tensor for the current orientation
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	return rb.inverseInertiaWorld
}

func (rb *RigidBody) ApplyGravity(gravity mgl64.Vec3, dt float64) {
	rb.Velocity = rb.Velocity.Add(gravity.Mul(dt))
}

// ApplyImpulse changes the velocities as if impulse was applied at localPoint
// (relative to the center of mass).
func (rb *RigidBody) ApplyImpulse(impulse, localPoint mgl64.Vec3) {
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.InverseMass))
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.inverseInertiaWorld.Mul3x1(localPoint.Cross(impulse)))
}

// ApplyPseudoImpulse moves the box directly, as ApplyImpulse would change its velocities.
// Velocities are untouched, no energy is added.
func (rb *RigidBody) ApplyPseudoImpulse(impulse, localPoint mgl64.Vec3) {
	rb.Box.IntegrateTransforms(
		impulse.Mul(rb.InverseMass),
		rb.inverseInertiaWorld.Mul3x1(localPoint.Cross(impulse)),
	)
	rb.updateInertiaTensor()
}

// Integrate moves the box with the current velocities (semi-implicit Euler)
func (rb *RigidBody) Integrate(dt float64) {
	rb.Box.IntegrateTransforms(rb.Velocity.Mul(dt), rb.AngularVelocity.Mul(dt))
	rb.updateInertiaTensor()
}

func (rb *RigidBody) ApplyDamping(dt float64, damping float64) {
	m := 1.0 - dt*damping

	rb.Velocity = rb.Velocity.Mul(m)
	rb.AngularVelocity = rb.AngularVelocity.Mul(m)
}

// PointVelocity is the world velocity of the body point at localPoint
func (rb *RigidBody) PointVelocity(localPoint mgl64.Vec3) mgl64.Vec3 {
	return rb.Velocity.Add(rb.AngularVelocity.Cross(localPoint))
}

func (rb *RigidBody) TrySleep(dt float64, timeThreshold float64, velocityThreshold float64) {
	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timeThreshold {
			rb.Sleep()
		}
	} else {
		rb.Awake()
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// LoadState restores velocities saved with SaveState; a moving body is woken up
func (rb *RigidBody) LoadState(state Motion) {
	rb.Velocity = state.Linear
	rb.AngularVelocity = state.Angular
	rb.updateInertiaTensor()

	if state.Linear.Len() > 0 || state.Angular.Len() > 0 {
		rb.Awake()
	}
}

func (rb *RigidBody) SaveState() Motion {
	return Motion{Linear: rb.Velocity, Angular: rb.AngularVelocity}
}
