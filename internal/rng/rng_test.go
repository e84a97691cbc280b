package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 32; i++ {
		if a.Next() == b.Next() {
			same++
		}
	}
	assert.Less(t, same, 32)
}

func TestSaveRestore(t *testing.T) {
	a := New(7)
	_ = a.Next()
	_ = a.Next()
	saved := a.Save()

	expected := make([]uint32, 10)
	for i := range expected {
		expected[i] = a.Next()
	}

	a.Restore(saved)
	for i := 0; i < 10; i++ {
		assert.Equal(t, expected[i], a.Next())
	}
}

func TestIntNBounds(t *testing.T) {
	g := New(9)
	for i := 0; i < 1000; i++ {
		v := g.IntN(10)
		assert.Less(t, v, uint32(10))
	}
	assert.Equal(t, uint32(0), g.IntN(0))
}
