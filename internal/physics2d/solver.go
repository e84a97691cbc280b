package physics2d

import "lockstep/internal/fixed"

// slop and correctionFactor are the defaults spec.md §4.13 step 5 names:
// slop = 0.01, correction = 0.6.
var (
	slop             = fixed.FromFloat(0.01)
	correctionFactor = fixed.FromFloat(0.6)
)

// positionCorrect pushes a and b apart along contact.Normal by
// max(0, penetration-slop)*correction, split equally between two movable
// bodies or applied fully to whichever side is movable (spec.md §4.13
// step 5).
func positionCorrect(a, b *Body, c Contact) {
	corr := c.Penetration - slop
	if corr < 0 {
		corr = 0
	}
	corr = fixed.Mul(corr, correctionFactor)
	if corr == 0 {
		return
	}

	aMovable := a.Type == Dynamic
	bMovable := b.Type == Dynamic
	switch {
	case aMovable && bMovable:
		half := c.Normal.Scale(fixed.Mul(corr, fixed.Half))
		a.Position = a.Position.Sub(half)
		b.Position = b.Position.Add(half)
	case aMovable:
		a.Position = a.Position.Sub(c.Normal.Scale(corr))
	case bMovable:
		b.Position = b.Position.Add(c.Normal.Scale(corr))
	}
}

// applyImpulse resolves the velocity response for one contact: a
// restitution-scaled impulse along the normal, then a Coulomb-clamped
// friction impulse along the tangent, using mu = min(muA, muB) (spec.md
// §4.13 step 5, 2D rule).
func applyImpulse(a, b *Body, c Contact) {
	invMassSum := a.InverseMass + b.InverseMass
	if invMassSum == 0 {
		return
	}

	relVel := b.LinearVelocity.Sub(a.LinearVelocity)
	velAlongNormal := relVel.Dot(c.Normal)
	if velAlongNormal > 0 {
		return // separating already
	}

	restitution := fixed.Min(a.Restitution, b.Restitution)
	j := fixed.Mul(-(fixed.One + restitution), velAlongNormal)
	j = fixed.Div(j, invMassSum)

	impulse := c.Normal.Scale(j)
	if a.Type == Dynamic {
		a.LinearVelocity = a.LinearVelocity.Sub(impulse.Scale(a.InverseMass))
	}
	if b.Type == Dynamic {
		b.LinearVelocity = b.LinearVelocity.Add(impulse.Scale(b.InverseMass))
	}

	relVel = b.LinearVelocity.Sub(a.LinearVelocity)
	tangent := relVel.Sub(c.Normal.Scale(relVel.Dot(c.Normal)))
	tangent = tangent.Normalize()
	if tangent == (fixed.Vec2{}) {
		return
	}

	jt := -relVel.Dot(tangent)
	jt = fixed.Div(jt, invMassSum)

	mu := fixed.Min(a.Friction, b.Friction)
	maxFriction := fixed.Mul(mu, fixed.Abs(j))
	jt = fixed.Clamp(jt, -maxFriction, maxFriction)

	frictionImpulse := tangent.Scale(jt)
	if a.Type == Dynamic {
		a.LinearVelocity = a.LinearVelocity.Sub(frictionImpulse.Scale(a.InverseMass))
	}
	if b.Type == Dynamic {
		b.LinearVelocity = b.LinearVelocity.Add(frictionImpulse.Scale(b.InverseMass))
	}

	a.Wake()
	b.Wake()
}
