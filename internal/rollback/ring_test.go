package rollback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotRingEvictsOldestPastCapacity(t *testing.T) {
	r := NewSnapshotRing(2)
	r.Save(1, []byte("a"))
	r.Save(2, []byte("b"))
	r.Save(3, []byte("c"))

	_, ok := r.Get(1)
	assert.False(t, ok)
	data, ok := r.Get(2)
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), data)
	data, ok = r.Get(3)
	assert.True(t, ok)
	assert.Equal(t, []byte("c"), data)
	assert.Equal(t, 2, r.Len())
}

func TestSnapshotRingNearestAtOrBefore(t *testing.T) {
	r := NewSnapshotRing(5)
	r.Save(2, []byte("two"))
	r.Save(5, []byte("five"))

	f, data, ok := r.NearestAtOrBefore(4)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), f)
	assert.Equal(t, []byte("two"), data)

	_, _, ok = r.NearestAtOrBefore(1)
	assert.False(t, ok)
}

func TestSnapshotRingOldest(t *testing.T) {
	r := NewSnapshotRing(3)
	_, ok := r.Oldest()
	assert.False(t, ok)

	r.Save(10, []byte("x"))
	r.Save(11, []byte("y"))
	f, ok := r.Oldest()
	assert.True(t, ok)
	assert.Equal(t, uint32(10), f)
}

func TestSnapshotRingResaveSameFrameKeepsPosition(t *testing.T) {
	r := NewSnapshotRing(2)
	r.Save(1, []byte("a"))
	r.Save(2, []byte("b"))
	r.Save(1, []byte("a2"))
	r.Save(3, []byte("c"))

	// 1 was resaved, not re-inserted, so it should have been the oldest
	// and evicted by 3's insertion just as if unchanged.
	_, ok := r.Get(1)
	assert.False(t, ok)
	data, _ := r.Get(3)
	assert.Equal(t, []byte("c"), data)
}
