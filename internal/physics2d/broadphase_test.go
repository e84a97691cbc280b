package physics2d

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lockstep/internal/fixed"
)

func TestCellCoordKeyMatchesSpecFormula(t *testing.T) {
	c := coordOf(fixed.V2(fixed.FromInt(130), fixed.FromInt(-5)), fixed.FromInt(64))
	want := (uint32(c.x) & 0xFFFF << 16) | (uint32(c.y) & 0xFFFF)
	assert.Equal(t, want, c.Key())
}

func TestSpatialHashPairsWithinSingleCell(t *testing.T) {
	h := newSpatialHash(fixed.FromInt(64))
	h.insert(0, fixed.V2(0, 0))
	h.insert(1, fixed.V2(fixed.FromInt(1), 0))
	h.insert(2, fixed.V2(fixed.FromInt(2), 0))

	pairs := h.pairs()
	assert.Len(t, pairs, 3)
}

func TestSpatialHashPairsAcrossNeighborCell(t *testing.T) {
	h := newSpatialHash(fixed.FromInt(64))
	h.insert(0, fixed.V2(fixed.FromInt(10), fixed.FromInt(10)))
	h.insert(1, fixed.V2(fixed.FromInt(70), fixed.FromInt(10))) // +x neighbor

	pairs := h.pairs()
	assert.Len(t, pairs, 1)
	assert.Equal(t, [2]int{0, 1}, pairs[0])
}

func TestSpatialHashEachPairVisitedExactlyOnce(t *testing.T) {
	h := newSpatialHash(fixed.FromInt(64))
	// Four bodies, one per cell of a 2x2 neighborhood, to exercise every
	// neighbor-offset branch (+x, +y, +x+y, -x+y) without duplication.
	h.insert(0, fixed.V2(fixed.FromInt(10), fixed.FromInt(10)))
	h.insert(1, fixed.V2(fixed.FromInt(70), fixed.FromInt(10)))
	h.insert(2, fixed.V2(fixed.FromInt(10), fixed.FromInt(70)))
	h.insert(3, fixed.V2(fixed.FromInt(70), fixed.FromInt(70)))

	pairs := h.pairs()
	seen := make(map[[2]int]int)
	for _, p := range pairs {
		if p[0] > p[1] {
			p[0], p[1] = p[1], p[0]
		}
		seen[p]++
	}
	assert.Len(t, pairs, 6) // C(4,2)
	for pair, count := range seen {
		assert.Equalf(t, 1, count, "pair %v visited %d times", pair, count)
	}
}
