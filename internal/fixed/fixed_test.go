package fixed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFloatToFloatRoundTrip(t *testing.T) {
	cases := []float32{0, 1, -1, 0.5, 3.14159, -2.71828, 100.0, -0.0001}
	for _, c := range cases {
		got := ToFloat(FromFloat(c))
		assert.InDelta(t, float64(c), float64(got), 1.0/65536.0*2)
	}
}

func TestMulOverflowWraps(t *testing.T) {
	a := Fixed(math.MaxInt32)
	b := FromInt(2)
	// Must not panic; two's-complement wraparound is the defined behavior.
	assert.NotPanics(t, func() { Mul(a, b) })
}

func TestDivByZeroSaturates(t *testing.T) {
	assert.Equal(t, Fixed(math.MaxInt32), Div(FromInt(5), 0))
	assert.Equal(t, Fixed(math.MinInt32+1), Div(FromInt(-5), 0))
}

func TestSqrtBounds(t *testing.T) {
	two := FromFloat(2.0)
	got := Sqrt(two)
	want := FromFloat(float32(math.Sqrt(2)))
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, int32(diff), int32(2))

	assert.Equal(t, Fixed(0), Sqrt(0))
	assert.Equal(t, Fixed(0), Sqrt(FromInt(-1)))
}

func TestSqrtIsPureFunctionOfBits(t *testing.T) {
	seeds := []int32{1, 4, 100, 65536, 12345, 999999}
	for _, s := range seeds {
		x := Fixed(s)
		assert.Equal(t, Sqrt(x), Sqrt(x))
	}
}

func TestSinCosAgainstMath(t *testing.T) {
	for deg := 0; deg < 360; deg += 15 {
		theta := FromFloat(float32(float64(deg) * math.Pi / 180))
		gotSin := ToFloat(Sin(theta))
		wantSin := math.Sin(float64(deg) * math.Pi / 180)
		assert.InDelta(t, wantSin, gotSin, 0.01)

		gotCos := ToFloat(Cos(theta))
		wantCos := math.Cos(float64(deg) * math.Pi / 180)
		assert.InDelta(t, wantCos, gotCos, 0.01)
	}
}

func TestAtan2Quadrants(t *testing.T) {
	cases := []struct{ x, y float32 }{
		{1, 0}, {0, 1}, {-1, 0}, {0, -1},
		{1, 1}, {-1, 1}, {-1, -1}, {1, -1},
	}
	for _, c := range cases {
		got := ToFloat(Atan2(FromFloat(c.y), FromFloat(c.x)))
		want := math.Atan2(float64(c.y), float64(c.x))
		assert.InDelta(t, want, got, 0.05)
	}
}

func TestVec2NormalizeZero(t *testing.T) {
	v := Vec2{}
	assert.Equal(t, Vec2{}, v.Normalize())
}

func TestDeterminismOfRepeatedCalls(t *testing.T) {
	a, b := FromFloat(1.23456), FromFloat(-7.891)
	for i := 0; i < 100; i++ {
		assert.Equal(t, Mul(a, b), Mul(a, b))
		assert.Equal(t, Div(a, b), Div(a, b))
		assert.Equal(t, Sin(a), Sin(a))
		assert.Equal(t, Atan2(a, b), Atan2(a, b))
	}
}
