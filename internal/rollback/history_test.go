package rollback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockstep/internal/ecs"
)

func TestInputHistorySetAndRecordsSortedByClient(t *testing.T) {
	h := NewInputHistory(120)
	h.SetInput(5, ecs.ClientID(2), []byte("b"))
	h.SetInput(5, ecs.ClientID(1), []byte("a"))

	recs := h.Records(5)
	require.Len(t, recs, 2)
	assert.Equal(t, ecs.ClientID(1), recs[0].ClientID)
	assert.Equal(t, ecs.ClientID(2), recs[1].ClientID)
}

func TestInputHistoryConfirmFrameReplacesAndMarks(t *testing.T) {
	h := NewInputHistory(120)
	h.SetInput(5, ecs.ClientID(1), []byte("predicted"))
	assert.False(t, h.Confirmed(5))

	h.ConfirmFrame(5, map[ecs.ClientID][]byte{1: []byte("authoritative")})
	assert.True(t, h.Confirmed(5))
	recs := h.Records(5)
	require.Len(t, recs, 1)
	assert.Equal(t, []byte("authoritative"), recs[0].Payload)
}

func TestInputHistoryRangeAndPrune(t *testing.T) {
	h := NewInputHistory(120)
	h.SetInput(1, ecs.ClientID(1), []byte("a"))
	h.SetInput(2, ecs.ClientID(1), []byte("b"))
	h.SetInput(3, ecs.ClientID(1), []byte("c"))

	r := h.Range(1, 2)
	assert.Len(t, r, 2)

	h.Prune(3)
	assert.Nil(t, h.Range(1, 2)[1])
	r = h.Range(3, 3)
	assert.Len(t, r, 1)
}

func TestInputHistoryStateRoundTrip(t *testing.T) {
	h := NewInputHistory(120)
	h.SetInput(1, ecs.ClientID(1), []byte("a"))
	h.ConfirmFrame(2, map[ecs.ClientID][]byte{3: []byte("x")})

	state := h.GetState()
	h2 := NewInputHistory(120)
	h2.SetState(state)

	assert.True(t, h2.Confirmed(2))
	recs := h2.Records(1)
	require.Len(t, recs, 1)
	assert.Equal(t, []byte("a"), recs[0].Payload)
}
