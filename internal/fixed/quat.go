package fixed

// Quat is a unit quaternion in Q16.16 components, used for 3D orientation
// in the (out-of-scope-but-shape-compatible) 3D physics collaborator; the
// 2D pipeline uses a scalar angle instead, but the primitive lives here
// because it is built from the same fixed-point core.
type Quat struct {
	X, Y, Z, W Fixed
}

// QuatIdentity is the identity rotation.
func QuatIdentity() Quat { return Quat{W: One} }

// FromAxisAngle builds a quaternion from a normalized axis and an angle
// in radians (Q16.16).
func FromAxisAngle(axis Vec3, angle Fixed) Quat {
	half := angle / 2
	s := Sin(half)
	c := Cos(half)
	axis = axis.Normalize()
	return Quat{
		X: Mul(axis.X, s),
		Y: Mul(axis.Y, s),
		Z: Mul(axis.Z, s),
		W: c,
	}
}

// Mul composes two rotations as the Hamilton product q*o: the result
// rotates by o first, then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: Mul(q.W, o.X) + Mul(q.X, o.W) + Mul(q.Y, o.Z) - Mul(q.Z, o.Y),
		Y: Mul(q.W, o.Y) - Mul(q.X, o.Z) + Mul(q.Y, o.W) + Mul(q.Z, o.X),
		Z: Mul(q.W, o.Z) + Mul(q.X, o.Y) - Mul(q.Y, o.X) + Mul(q.Z, o.W),
		W: Mul(q.W, o.W) - Mul(q.X, o.X) - Mul(q.Y, o.Y) - Mul(q.Z, o.Z),
	}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// LengthSq returns the squared magnitude of the quaternion's components.
func (q Quat) LengthSq() Fixed {
	return Mul(q.X, q.X) + Mul(q.Y, q.Y) + Mul(q.Z, q.Z) + Mul(q.W, q.W)
}

// Normalize returns a unit quaternion, or the identity quaternion when q
// has zero magnitude.
func (q Quat) Normalize() Quat {
	l := Sqrt(q.LengthSq())
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{Div(q.X, l), Div(q.Y, l), Div(q.Z, l), Div(q.W, l)}
}

// RotateVec3 rotates v by the unit quaternion q.
func (q Quat) RotateVec3(v Vec3) Vec3 {
	qv := Vec3{q.X, q.Y, q.Z}
	uv := qv.Cross(v)
	uuv := qv.Cross(uv)
	return v.Add(uv.Scale(2 * q.W)).Add(uuv.Scale(2))
}
