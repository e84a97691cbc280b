package fixed

import "math"

// lutSize is the number of entries in the quarter-wave table. A fixed,
// documented size is required so independent implementations reproduce
// the same bytes.
const lutSize = 1024

// Pi, TwoPi and HalfPi are the fixed-point constants used to range-reduce
// angles before the table lookup.
var (
	Pi     = FromFloat(float32(math.Pi))
	TwoPi  = FromFloat(float32(2 * math.Pi))
	HalfPi = FromFloat(float32(math.Pi / 2))
)

// sinTable[i] holds sin(i * (pi/2) / lutSize) in Q16.16, for i in
// [0, lutSize]. It is generated once, at package init, by calling math.Sin
// for each table angle and converting the result with FromFloat — it is
// not derived from an integer recurrence — and is never touched again at
// simulation time.
var sinTable [lutSize + 1]Fixed

func init() {
	for i := 0; i <= lutSize; i++ {
		theta := (math.Pi / 2) * (float64(i) / float64(lutSize))
		sinTable[i] = FromFloat(float32(math.Sin(theta)))
	}
}

// quarterSin looks up sin(theta) for theta in [0, pi/2] via linear
// interpolation between adjacent table entries.
func quarterSin(theta Fixed) Fixed {
	if theta <= 0 {
		return 0
	}
	if theta >= HalfPi {
		return One
	}
	// position within the table, as a Q16.16 fixed index.
	pos := Mul(Div(theta, HalfPi), FromInt(lutSize))
	idx := int(ToInt(pos))
	if idx >= lutSize {
		return sinTable[lutSize]
	}
	frac := pos - FromInt(int32(idx))
	lo := sinTable[idx]
	hi := sinTable[idx+1]
	return lo + Mul(hi-lo, frac)
}

// Sin returns sin(theta) for any Fixed angle in radians, range-reduced
// into the quarter-wave table with the standard four-quadrant mirroring.
func Sin(theta Fixed) Fixed {
	theta = wrapTwoPi(theta)
	switch {
	case theta <= HalfPi:
		return quarterSin(theta)
	case theta <= Pi:
		return quarterSin(Pi - theta)
	case theta <= Pi+HalfPi:
		return -quarterSin(theta - Pi)
	default:
		return -quarterSin(TwoPi - theta)
	}
}

// Cos returns cos(theta) = sin(theta + pi/2).
func Cos(theta Fixed) Fixed {
	return Sin(theta + HalfPi)
}

// wrapTwoPi reduces theta into [0, 2*pi).
func wrapTwoPi(theta Fixed) Fixed {
	if TwoPi == 0 {
		return 0
	}
	r := theta % TwoPi
	if r < 0 {
		r += TwoPi
	}
	return r
}

// atan2Coefficients are the CORDIC-style minimax polynomial coefficients
// used to approximate atan(z) for z in [-1, 1]; evaluated in fixed-point
// via Horner's method so the result is a pure function of the input bits.
var atan2Coefficients = []Fixed{
	FromFloat(0.9998660),
	FromFloat(-0.3302995),
	FromFloat(0.1801410),
	FromFloat(-0.0851330),
	FromFloat(0.0208351),
}

// atanApprox evaluates the minimax polynomial for atan(z), z in [-1, 1].
func atanApprox(z Fixed) Fixed {
	zsq := Mul(z, z)
	acc := atan2Coefficients[len(atan2Coefficients)-1]
	for i := len(atan2Coefficients) - 2; i >= 0; i-- {
		acc = atan2Coefficients[i] + Mul(acc, zsq)
	}
	return Mul(acc, z)
}

// Atan2 returns the angle, in radians, between the positive x-axis and the
// point (x, y), using a CORDIC-style polynomial rather than the host's
// floating-point atan2.
func Atan2(y, x Fixed) Fixed {
	if x == 0 && y == 0 {
		return 0
	}
	if x == 0 {
		if y > 0 {
			return HalfPi
		}
		return -HalfPi
	}

	absX, absY := Abs(x), Abs(y)
	var angle Fixed
	if absX >= absY {
		z := Div(y, x)
		angle = atanApprox(Clamp(z, -One, One))
		if x < 0 {
			if y >= 0 {
				angle += Pi
			} else {
				angle -= Pi
			}
		}
		return angle
	}

	z := Div(x, y)
	angle = atanApprox(Clamp(z, -One, One))
	if y > 0 {
		return HalfPi - angle
	}
	return -HalfPi - angle
}
