// Package physics2d implements the deterministic 2D rigid body pipeline
// described in spec.md §4.13: spatial-hash broad phase, circle/box narrow
// phase, an impulse-and-friction solver, and sleep detection. Every
// quantity is Q16.16 fixed-point (internal/fixed); host floating point is
// used only where fixed.FromFloat converts constant literals (including
// the velocity clamps Step converts on every call), and the package never
// consults a non-seeded RNG.
package physics2d

import "lockstep/internal/fixed"

// Shape discriminates a body's collider.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeBox
)

// BodyType controls whether a body integrates and participates in the
// solver as a mover, or only as an immovable/externally-driven obstacle.
type BodyType int

const (
	Static BodyType = iota
	Kinematic
	Dynamic
)

// Filter is a collision layer/mask pair: two bodies can collide only if
// each one's Mask bit intersects the other's Layer bit.
type Filter struct {
	Layer uint32
	Mask  uint32
}

// CanCollide reports whether a and b's filters permit a collision check.
func (a Filter) CanCollide(b Filter) bool {
	return a.Mask&b.Layer != 0 && b.Mask&a.Layer != 0
}

// EntityRef is an opaque back-pointer to the owning simulation entity,
// carried through collision callbacks without physics2d needing to import
// the ecs package.
type EntityRef uint32

// Body is one rigid body, addressed by index within a World's bodies
// slice. Radius applies to ShapeCircle; HalfWidth/HalfHeight to ShapeBox.
type Body struct {
	Shape  Shape
	Type   BodyType
	Label  string // stable string key for deterministic enumeration order

	Position fixed.Vec2
	Angle    fixed.Fixed

	LinearVelocity  fixed.Vec2
	AngularVelocity fixed.Fixed

	Radius               fixed.Fixed
	HalfWidth, HalfHeight fixed.Fixed

	InverseMass    fixed.Fixed
	InverseInertia fixed.Fixed

	Restitution fixed.Fixed
	Friction    fixed.Fixed

	LinearDamping  fixed.Fixed
	AngularDamping fixed.Fixed

	Filter       Filter
	Sensor       bool
	RotationLock bool

	Entity EntityRef

	sleeping    bool
	sleepFrames int
}

// Sleeping reports whether the body has been at rest long enough to be
// excluded from integration.
func (b *Body) Sleeping() bool { return b.sleeping }

// Wake clears the sleeping flag and its consecutive-rest counter.
// applyImpulse calls it on both bodies of a contact only when the contact
// leaves a non-zero tangential relative velocity; a purely normal impulse
// does not wake them, and neither does a velocity set directly on a
// sleeping body. WakeAll calls it for every body; nothing calls WakeAll
// automatically after a snapshot restore.
func (b *Body) Wake() {
	b.sleeping = false
	b.sleepFrames = 0
}

// AABB returns the body's axis-aligned bounding box, expanding a box
// shape's footprint to cover its rotation extent (spec.md §4.13 step 3).
func (b *Body) AABB() (min, max fixed.Vec2) {
	switch b.Shape {
	case ShapeCircle:
		r := fixed.V2(b.Radius, b.Radius)
		return b.Position.Sub(r), b.Position.Add(r)
	default:
		extent := boxRotationExtent(b.HalfWidth, b.HalfHeight, b.Angle)
		return b.Position.Sub(extent), b.Position.Add(extent)
	}
}

// boxRotationExtent bounds a rotated box's half-extents with the AABB of
// its four corners under rotation by angle.
func boxRotationExtent(hw, hh, angle fixed.Fixed) fixed.Vec2 {
	c := fixed.Abs(fixed.Cos(angle))
	s := fixed.Abs(fixed.Sin(angle))
	return fixed.V2(
		fixed.Mul(hw, c)+fixed.Mul(hh, s),
		fixed.Mul(hw, s)+fixed.Mul(hh, c),
	)
}
