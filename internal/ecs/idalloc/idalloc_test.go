package idalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateAssignsIncreasingIndices(t *testing.T) {
	a := NewAllocator(16, false)
	id1, err := a.Allocate()
	require.NoError(t, err)
	id2, err := a.Allocate()
	require.NoError(t, err)

	assert.Equal(t, uint32(0), id1.Index())
	assert.Equal(t, uint32(1), id2.Index())
	assert.True(t, a.IsValid(id1))
	assert.True(t, a.IsValid(id2))
}

func TestFreeThenAllocateBumpsGeneration(t *testing.T) {
	a := NewAllocator(4, false)
	id, _ := a.Allocate()
	a.Free(id)
	assert.False(t, a.IsValid(id))

	reused, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, id.Index(), reused.Index())
	assert.NotEqual(t, id.Generation(), reused.Generation())
	assert.False(t, a.IsValid(id))
	assert.True(t, a.IsValid(reused))
}

func TestFreeWithStaleGenerationIsNoOp(t *testing.T) {
	a := NewAllocator(4, false)
	id, _ := a.Allocate()
	a.Free(id)
	reused, _ := a.Allocate()

	// Freeing the stale id again must not disturb the reused entity.
	a.Free(id)
	assert.True(t, a.IsValid(reused))
}

func TestFreeListPicksSmallestIndex(t *testing.T) {
	a := NewAllocator(8, false)
	ids := make([]EntityID, 4)
	for i := range ids {
		ids[i], _ = a.Allocate()
	}
	a.Free(ids[2])
	a.Free(ids[0])

	next, _ := a.Allocate()
	assert.Equal(t, uint32(0), next.Index())

	next2, _ := a.Allocate()
	assert.Equal(t, uint32(2), next2.Index())
}

func TestCapacityExceeded(t *testing.T) {
	a := NewAllocator(2, false)
	_, err := a.Allocate()
	require.NoError(t, err)
	_, err = a.Allocate()
	require.NoError(t, err)

	_, err = a.Allocate()
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestAllocateSpecificForSnapshotRestore(t *testing.T) {
	a := NewAllocator(8, false)
	restoredID := makeEntityID(3, 5, false)

	require.NoError(t, a.AllocateSpecific(restoredID))
	assert.True(t, a.IsValid(restoredID))

	// Subsequent plain Allocate must not collide with the restored index.
	next, err := a.Allocate()
	require.NoError(t, err)
	assert.NotEqual(t, restoredID.Index(), next.Index())
}

func TestLocalMarkerBit(t *testing.T) {
	local := NewAllocator(4, true)
	id, _ := local.Allocate()
	assert.True(t, id.IsLocal())

	global := NewAllocator(4, false)
	id2, _ := global.Allocate()
	assert.False(t, id2.IsLocal())
}

func TestStateRoundTripsThroughRestoreState(t *testing.T) {
	a := NewAllocator(8, false)
	ids := make([]EntityID, 4)
	for i := range ids {
		ids[i], _ = a.Allocate()
	}
	a.Free(ids[1])

	nextIndex, active := a.State()

	b := NewAllocator(8, false)
	require.NoError(t, b.RestoreState(nextIndex, active))

	assert.True(t, b.IsValid(ids[0]))
	assert.False(t, b.IsValid(ids[1]))
	assert.True(t, b.IsValid(ids[2]))
	assert.True(t, b.IsValid(ids[3]))

	next, err := b.Allocate()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), next.Index())
}

func TestRestoreStateRejectsNextIndexAboveCeiling(t *testing.T) {
	a := NewAllocator(4, false)
	err := a.RestoreState(5, nil)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestGenerationWrapsModulo(t *testing.T) {
	a := NewAllocator(1, false)
	id, _ := a.Allocate()
	for i := uint32(0); i < MaxGeneration; i++ {
		a.Free(id)
		id, _ = a.Allocate()
	}
	assert.True(t, a.IsValid(id))
}
