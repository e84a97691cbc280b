package physics2d

import "lockstep/internal/fixed"

// Contact is one resolved collision between two bodies: which indices,
// the separating normal (pointing from A to B), the penetration depth,
// and the point used for impulse application.
type Contact struct {
	A, B        int
	Normal      fixed.Vec2
	Penetration fixed.Fixed
	Point       fixed.Vec2
}

// aabbOverlap checks two AABBs (already expanded for rotation) for
// overlap, spec.md §4.13 step 3's first-pass broad-phase-within-
// narrow-phase rejection.
func aabbOverlap(aMin, aMax, bMin, bMax fixed.Vec2) bool {
	if aMax.X < bMin.X || bMax.X < aMin.X {
		return false
	}
	if aMax.Y < bMin.Y || bMax.Y < aMin.Y {
		return false
	}
	return true
}

// narrow runs precise detection for one candidate pair, returning the
// contact (if any) per spec.md §4.13 step 3's three shape-pair rules.
func narrow(a, b *Body) (Contact, bool) {
	aMin, aMax := a.AABB()
	bMin, bMax := b.AABB()
	if !aabbOverlap(aMin, aMax, bMin, bMax) {
		return Contact{}, false
	}

	switch {
	case a.Shape == ShapeCircle && b.Shape == ShapeCircle:
		return circleCircle(a, b)
	case a.Shape == ShapeBox && b.Shape == ShapeBox:
		return boxBox(a, b)
	case a.Shape == ShapeCircle && b.Shape == ShapeBox:
		return circleBox(a, b)
	default: // a is box, b is circle
		c, ok := circleBox(b, a)
		if !ok {
			return Contact{}, false
		}
		c.A, c.B = c.B, c.A
		c.Normal = c.Normal.Neg()
		return c, true
	}
}

func circleCircle(a, b *Body) (Contact, bool) {
	delta := b.Position.Sub(a.Position)
	dist := delta.Length()
	sum := a.Radius + b.Radius
	if dist >= sum {
		return Contact{}, false
	}
	var normal fixed.Vec2
	if dist == 0 {
		normal = fixed.V2(fixed.One, 0)
	} else {
		normal = delta.Normalize()
	}
	penetration := sum - dist
	point := a.Position.Add(normal.Scale(a.Radius))
	return Contact{A: 0, B: 0, Normal: normal, Penetration: penetration, Point: point}, true
}

// boxBox implements axis-aligned SAT on the two cardinal axes (spec.md
// §4.13: "no rotated-box support in 2D" for this pair), picking the
// minimum-overlap axis as the separating normal.
func boxBox(a, b *Body) (Contact, bool) {
	aMin, aMax := a.AABB()
	bMin, bMax := b.AABB()
	overlapX := fixed.Min(aMax.X, bMax.X) - fixed.Max(aMin.X, bMin.X)
	overlapY := fixed.Min(aMax.Y, bMax.Y) - fixed.Max(aMin.Y, bMin.Y)
	if overlapX <= 0 || overlapY <= 0 {
		return Contact{}, false
	}

	delta := b.Position.Sub(a.Position)
	var normal fixed.Vec2
	var penetration fixed.Fixed
	if overlapX < overlapY {
		penetration = overlapX
		if delta.X < 0 {
			normal = fixed.V2(-fixed.One, 0)
		} else {
			normal = fixed.V2(fixed.One, 0)
		}
	} else {
		penetration = overlapY
		if delta.Y < 0 {
			normal = fixed.V2(0, -fixed.One)
		} else {
			normal = fixed.V2(0, fixed.One)
		}
	}
	point := a.Position.Add(delta.Scale(fixed.Half))
	return Contact{Normal: normal, Penetration: penetration, Point: point}, true
}

// circleBox clamps the circle's center to the box's local bounds; if the
// clamped point equals the center (circle center inside the box), the
// nearest face is used for the normal and penetration instead (spec.md
// §4.13 step 3).
func circleBox(circle, box *Body) (Contact, bool) {
	local := circle.Position.Sub(box.Position)
	if box.Angle != 0 {
		local = local.Rotate(-box.Angle)
	}

	clamped := fixed.V2(
		fixed.Clamp(local.X, -box.HalfWidth, box.HalfWidth),
		fixed.Clamp(local.Y, -box.HalfHeight, box.HalfHeight),
	)

	inside := clamped == local
	var normalLocal fixed.Vec2
	var penetration fixed.Fixed

	// normalLocal always ends up pointing from the circle (A) toward the
	// box (B), matching circleCircle/boxBox's A->B convention.
	if !inside {
		diff := local.Sub(clamped)
		dist := diff.Length()
		if dist >= circle.Radius {
			return Contact{}, false
		}
		if dist == 0 {
			normalLocal = fixed.V2(-fixed.One, 0)
		} else {
			normalLocal = diff.Neg().Normalize()
		}
		penetration = circle.Radius - dist
	} else {
		dx := box.HalfWidth - fixed.Abs(local.X)
		dy := box.HalfHeight - fixed.Abs(local.Y)
		if dx < dy {
			penetration = dx + circle.Radius
			if local.X < 0 {
				normalLocal = fixed.V2(fixed.One, 0)
			} else {
				normalLocal = fixed.V2(-fixed.One, 0)
			}
		} else {
			penetration = dy + circle.Radius
			if local.Y < 0 {
				normalLocal = fixed.V2(0, fixed.One)
			} else {
				normalLocal = fixed.V2(0, -fixed.One)
			}
		}
	}

	normal := normalLocal
	if box.Angle != 0 {
		normal = normalLocal.Rotate(box.Angle)
	}
	point := circle.Position.Add(normal.Scale(circle.Radius))
	// Contact is expressed as A=circle, B=box for the caller's
	// convenience; the caller swaps indices/normal when it invoked us
	// with the arguments reversed.
	return Contact{Normal: normal, Penetration: penetration, Point: point}, true
}
