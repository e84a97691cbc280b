package physics2d

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lockstep/internal/fixed"
)

func TestApplyImpulseBouncesApproachingBodies(t *testing.T) {
	a := dynamicCircle("a", 0, 0)
	b := dynamicCircle("b", 10, 0)
	a.LinearVelocity = fixed.V2(fixed.FromInt(5), 0)
	b.LinearVelocity = fixed.V2(fixed.FromInt(-5), 0)
	a.Restitution, b.Restitution = fixed.One, fixed.One

	c := Contact{Normal: fixed.V2(fixed.One, 0), Penetration: fixed.FromInt(1)}
	applyImpulse(a, b, c)

	// After a fully elastic head-on impulse, a should now be moving away
	// (negative) and b moving away (positive).
	assert.Less(t, int32(a.LinearVelocity.X), int32(0))
	assert.Greater(t, int32(b.LinearVelocity.X), int32(0))
}

func TestApplyImpulseSkipsSeparatingBodies(t *testing.T) {
	a := dynamicCircle("a", 0, 0)
	b := dynamicCircle("b", 10, 0)
	a.LinearVelocity = fixed.V2(fixed.FromInt(-5), 0)
	b.LinearVelocity = fixed.V2(fixed.FromInt(5), 0)

	c := Contact{Normal: fixed.V2(fixed.One, 0), Penetration: fixed.FromInt(1)}
	applyImpulse(a, b, c)

	assert.Equal(t, fixed.FromInt(-5), a.LinearVelocity.X)
	assert.Equal(t, fixed.FromInt(5), b.LinearVelocity.X)
}

func TestPositionCorrectSplitsEquallyBetweenTwoMovable(t *testing.T) {
	a := dynamicCircle("a", 0, 0)
	b := dynamicCircle("b", 6, 0)
	c := Contact{Normal: fixed.V2(fixed.One, 0), Penetration: fixed.FromInt(4)}

	positionCorrect(a, b, c)
	assert.Less(t, int32(a.Position.X), int32(0))
	assert.Greater(t, int32(b.Position.X), int32(fixed.FromInt(6)))
}

func TestPositionCorrectAppliesFullyToSingleMovable(t *testing.T) {
	a := dynamicCircle("a", 0, 0)
	ground := &Body{Type: Static, Position: fixed.V2(fixed.FromInt(6), 0)}
	c := Contact{Normal: fixed.V2(fixed.One, 0), Penetration: fixed.FromInt(4)}

	positionCorrect(a, ground, c)
	assert.Less(t, int32(a.Position.X), int32(0))
	assert.Equal(t, fixed.Zero, ground.Position.Y)
	assert.Equal(t, fixed.FromInt(6), ground.Position.X)
}
