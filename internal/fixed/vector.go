package fixed

// Vec2 is a two-component Q16.16 vector.
type Vec2 struct {
	X, Y Fixed
}

func V2(x, y Fixed) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Neg() Vec2       { return Vec2{-v.X, -v.Y} }

func (v Vec2) Scale(s Fixed) Vec2 {
	return Vec2{Mul(v.X, s), Mul(v.Y, s)}
}

func (v Vec2) Dot(o Vec2) Fixed {
	return Mul(v.X, o.X) + Mul(v.Y, o.Y)
}

// Cross returns the 2D cross product (a scalar, the z-component of the
// 3D cross product of the two vectors lifted into the xy-plane).
func (v Vec2) Cross(o Vec2) Fixed {
	return Mul(v.X, o.Y) - Mul(v.Y, o.X)
}

func (v Vec2) LengthSq() Fixed { return v.Dot(v) }

func (v Vec2) Length() Fixed { return Sqrt(v.LengthSq()) }

// Normalize returns the unit vector in the direction of v, or the zero
// vector when v has zero (or near-zero, after fixed-point rounding)
// magnitude — the only conditional permitted in vector math per spec.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{Div(v.X, l), Div(v.Y, l)}
}

// Perp returns the left-hand perpendicular of v (rotated +90 degrees).
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Rotate rotates v by angle (radians, Q16.16) using the package's LUT
// Sin/Cos.
func (v Vec2) Rotate(angle Fixed) Vec2 {
	s, c := Sin(angle), Cos(angle)
	return Vec2{
		X: Mul(v.X, c) - Mul(v.Y, s),
		Y: Mul(v.X, s) + Mul(v.Y, c),
	}
}

// Lerp linearly interpolates between v and o by t in [0, One].
func (v Vec2) Lerp(o Vec2, t Fixed) Vec2 {
	return v.Add(o.Sub(v).Scale(t))
}

// Vec3 is a three-component Q16.16 vector.
type Vec3 struct {
	X, Y, Z Fixed
}

func V3(x, y, z Fixed) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Neg() Vec3       { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Scale(s Fixed) Vec3 {
	return Vec3{Mul(v.X, s), Mul(v.Y, s), Mul(v.Z, s)}
}

func (v Vec3) Dot(o Vec3) Fixed {
	return Mul(v.X, o.X) + Mul(v.Y, o.Y) + Mul(v.Z, o.Z)
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: Mul(v.Y, o.Z) - Mul(v.Z, o.Y),
		Y: Mul(v.Z, o.X) - Mul(v.X, o.Z),
		Z: Mul(v.X, o.Y) - Mul(v.Y, o.X),
	}
}

func (v Vec3) LengthSq() Fixed { return v.Dot(v) }
func (v Vec3) Length() Fixed   { return Sqrt(v.LengthSq()) }

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{Div(v.X, l), Div(v.Y, l), Div(v.Z, l)}
}

func (v Vec3) Lerp(o Vec3, t Fixed) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}
