package actor

import (
	"github.com/akmonengine/tumble/constraint"
)

// ProcessCollisions resolves the penetration of the box against the walls.
// Each axis is handled on its own, in x, y, z order: the corners outside the slab are
// merged into one penetration weighted contact point, then friction, restitution and
// positional bias impulses are applied at that point.
// It returns the contacts that were resolved.
func (rb *RigidBody) ProcessCollisions() []constraint.Contact {
	bounds := rb.Walls.Bounds()

	var contacts []constraint.Contact
	for axis := range constraint.Normals {
		corners := rb.Box.Corners()
		contact, ok := constraint.SlabContact(corners[:], bounds.Min, bounds.Max, axis)
		if !ok {
			continue
		}

		rb.resolveContact(contact)
		contacts = append(contacts, contact)
	}

	return contacts
}

func (rb *RigidBody) resolveContact(contact constraint.Contact) {
	normal := contact.Normal
	r := contact.Point.Sub(rb.Box.Position())

	// ========== TANGENT IMPULSE (friction) ==========
	pointVelocity := rb.PointVelocity(r)
	c := normal.Cross(pointVelocity)
	if !IsZeroVec(c) {
		tangent := c.Cross(normal).Normalize()
		if !IsZeroVec(tangent) {
			correction := tangent.Mul(-rb.Material.Friction * pointVelocity.Dot(tangent))
			rb.ApplyImpulse(constraint.Impulse(correction, tangent, r, rb.InverseMass, rb.inverseInertiaWorld), r)
		}
	}

	// ========== NORMAL IMPULSE (restitution) ==========
	pointVelocity = rb.PointVelocity(r)
	correction := constraint.NormalCorrection(pointVelocity, normal, rb.Material.Restitution)
	rb.ApplyImpulse(constraint.Impulse(correction, normal, r, rb.InverseMass, rb.inverseInertiaWorld), r)

	// ========== POSITIONAL BIAS ==========
	correction = constraint.BiasCorrection(normal, contact.Depth)
	rb.ApplyPseudoImpulse(constraint.Impulse(correction, normal, r, rb.InverseMass, rb.inverseInertiaWorld), r)
}
