package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTripPreservesStateHash(t *testing.T) {
	w := newTestWorld(t)
	id, err := w.Spawn("ball")
	require.NoError(t, err)
	require.NoError(t, w.View(id).SetI32(ComponentTransform2D, "x", 123456))
	require.NoError(t, w.View(id).SetI32(ComponentTransform2D, "y", -7))
	require.NoError(t, w.View(id).SetI32("Velocity2D", "vx", 42))
	w.frame = 7

	beforeHash := w.StateHash()
	data, err := w.Encode(3)
	require.NoError(t, err)

	dst := newTestWorld(t)
	require.NoError(t, dst.Decode(data))

	assert.Equal(t, beforeHash, dst.StateHash())
	assert.Equal(t, uint32(7), dst.Frame())

	x, err := dst.View(id).GetI32(ComponentTransform2D, "x")
	require.NoError(t, err)
	assert.Equal(t, int32(123456), x)
}

func TestDecodeRejectsGarbageBytes(t *testing.T) {
	w := newTestWorld(t)
	err := w.Decode([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindInvalidSnapshot, e.Kind)
}

func TestDecodeSkipsUnknownEntityType(t *testing.T) {
	src := newTestWorld(t)
	require.NoError(t, src.RegisterEntityDef(EntityDef{
		Name:       "ghost",
		Components: []ComponentDef{TransformDef},
	}))
	idBall, _ := src.Spawn("ball")
	_, _ = src.Spawn("ghost")
	data, err := src.Encode(0)
	require.NoError(t, err)

	dst := newTestWorld(t) // never registers "ghost"
	require.NoError(t, dst.Decode(data))

	assert.True(t, dst.IsEntityValid(idBall))
	assert.Equal(t, 1, len(dst.ActiveEntities()))
}

// tagDef is a component no "ball" entity starts with, used to exercise a
// live component set that has diverged from the registered type schema
// via AddComponent/RemoveComponent.
var tagDef = ComponentDef{
	Name: "Tag",
	Sync: true,
	Fields: []FieldDef{
		{Name: "value", Type: FieldI32},
	},
}

func TestEncodeDecodeRoundTripAfterAddComponent(t *testing.T) {
	w := newTestWorld(t)
	require.NoError(t, w.RegisterEntityDef(EntityDef{
		Name:       "tagger",
		Components: []ComponentDef{tagDef},
	}))
	id, err := w.Spawn("ball")
	require.NoError(t, err)
	require.NoError(t, w.AddComponent(id, tagDef))
	require.NoError(t, w.View(id).SetI32("Tag", "value", 99))

	beforeHash := w.StateHash()
	data, err := w.Encode(0)
	require.NoError(t, err)

	dst := newTestWorld(t)
	require.NoError(t, dst.RegisterEntityDef(EntityDef{
		Name:       "tagger",
		Components: []ComponentDef{tagDef},
	}))
	require.NoError(t, dst.Decode(data))

	assert.Equal(t, beforeHash, dst.StateHash())
	assert.True(t, dst.HasComponent(id, "Tag"))
	v, err := dst.View(id).GetI32("Tag", "value")
	require.NoError(t, err)
	assert.Equal(t, int32(99), v)
}

func TestEncodeDecodeRoundTripAfterRemoveComponent(t *testing.T) {
	w := newTestWorld(t)
	id, err := w.Spawn("ball")
	require.NoError(t, err)
	require.NoError(t, w.RemoveComponent(id, "Velocity2D"))

	beforeHash := w.StateHash()
	data, err := w.Encode(0)
	require.NoError(t, err)

	dst := newTestWorld(t)
	require.NoError(t, dst.Decode(data))

	assert.Equal(t, beforeHash, dst.StateHash())
	assert.False(t, dst.HasComponent(id, "Velocity2D"))
	assert.True(t, dst.HasComponent(id, ComponentTransform2D))
}

func TestDecodeRejectsTruncatedColumnDataWithoutMutatingWorld(t *testing.T) {
	w := newTestWorld(t)
	id, err := w.Spawn("ball")
	require.NoError(t, err)
	require.NoError(t, w.View(id).SetI32(ComponentTransform2D, "x", 5))

	data, err := w.Encode(0)
	require.NoError(t, err)
	truncated := data[:len(data)-1]

	dst := newTestWorld(t)
	other, err := dst.Spawn("ball")
	require.NoError(t, err)

	err = dst.Decode(truncated)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindInvalidSnapshot, e.Kind)

	// A rejected snapshot must leave the world exactly as it was.
	assert.True(t, dst.IsEntityValid(other))
	assert.Equal(t, 1, len(dst.ActiveEntities()))
}

func TestAllocatorStateSurvivesRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	a, _ := w.Spawn("ball")
	b, _ := w.Spawn("ball")
	require.NoError(t, w.Destroy(a))

	data, err := w.Encode(0)
	require.NoError(t, err)

	dst := newTestWorld(t)
	require.NoError(t, dst.Decode(data))

	assert.True(t, dst.IsEntityValid(b))
	next, err := dst.Spawn("ball")
	require.NoError(t, err)
	assert.Equal(t, a.Index(), next.Index())
}
