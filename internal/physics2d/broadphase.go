package physics2d

import "lockstep/internal/fixed"

// defaultCellSize is the spatial hash grid's cell size, default 64 units per
// spec.md §4.13 ("cell size >= largest diameter (default 64 units)").
var defaultCellSize = fixed.FromInt(64)

// cellCoord is the (cx, cy) pair a position hashes into, kept alongside
// the packed key so neighbor cells can be computed without re-deriving
// coordinates from the key.
type cellCoord struct {
	x, y int32
}

func coordOf(pos fixed.Vec2, cellSize fixed.Fixed) cellCoord {
	return cellCoord{
		x: fixed.ToInt(fixed.Div(pos.X, cellSize)),
		y: fixed.ToInt(fixed.Div(pos.Y, cellSize)),
	}
}

// Key packs the coordinate into the 32-bit hash key spec.md §4.13
// defines: ((floor(x/cell) & 0xFFFF) << 16) | (floor(y/cell) & 0xFFFF).
// The spatialHash itself buckets by the cellCoord struct directly (a
// valid, and cheaper, Go map key) rather than this packed form; Key
// exists so callers/tests can confirm the implementation matches the
// spec's literal hash formula.
func (c cellCoord) Key() uint32 {
	return (uint32(int32(c.x)) & 0xFFFF << 16) | (uint32(int32(c.y)) & 0xFFFF)
}

// spatialHash buckets body indices by the cell each body's AABB center
// falls into, preserving insertion order within a bucket (spec.md §4.13:
// "each cell holds a list of bodies in insertion order").
type spatialHash struct {
	cellSize fixed.Fixed
	buckets  map[cellCoord][]int
}

func newSpatialHash(cellSize fixed.Fixed) *spatialHash {
	return &spatialHash{cellSize: cellSize, buckets: make(map[cellCoord][]int)}
}

func (h *spatialHash) insert(index int, pos fixed.Vec2) {
	c := coordOf(pos, h.cellSize)
	h.buckets[c] = append(h.buckets[c], index)
}

// neighborOffsets are the four neighbor cells spec.md §4.13 enumerates
// against, in addition to pairs within the same cell: +x, +y, +x+y, and
// -x+y (the "special-cased" diagonal that still guarantees each
// unordered pair is visited exactly once, since the opposite diagonal,
// +x-y, is covered by -x+y scanned from the other cell).
var neighborOffsets = []cellCoord{
	{x: 1, y: 0},
	{x: 0, y: 1},
	{x: 1, y: 1},
	{x: -1, y: 1},
}

// pairs enumerates every unordered candidate pair exactly once: all (i<j)
// within each occupied cell, plus pairs against the four neighbor cells
// listed above wherever a neighbor bucket exists (empty neighbor buckets
// just contribute nothing, matching "where the neighbor key is strictly
// greater" without needing an explicit key comparison since unvisited
// empty cells are absent from the map entirely).
func (h *spatialHash) pairs() [][2]int {
	var out [][2]int
	for c, bucket := range h.buckets {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				out = append(out, [2]int{bucket[i], bucket[j]})
			}
		}
		for _, off := range neighborOffsets {
			nc := cellCoord{x: c.x + off.x, y: c.y + off.y}
			neighbor, ok := h.buckets[nc]
			if !ok {
				continue
			}
			for _, a := range bucket {
				for _, b := range neighbor {
					out = append(out, [2]int{a, b})
				}
			}
		}
	}
	return out
}
