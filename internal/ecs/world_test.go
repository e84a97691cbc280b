package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockstep/internal/determinism"
)

func ballDef() EntityDef {
	return EntityDef{
		Name: "ball",
		Components: []ComponentDef{
			TransformDef,
			{
				Name: "Velocity2D",
				Sync: true,
				Fields: []FieldDef{
					{Name: "vx", Type: FieldI32},
					{Name: "vy", Type: FieldI32},
				},
			},
		},
	}
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld(DefaultWorldConfig(), 42, true, true)
	require.NoError(t, w.RegisterEntityDef(ballDef()))
	return w
}

func TestSpawnAssignsComponentsAndIndices(t *testing.T) {
	w := newTestWorld(t)
	id, err := w.Spawn("ball")
	require.NoError(t, err)
	assert.True(t, w.IsEntityValid(id))
	assert.True(t, w.HasComponent(id, ComponentTransform2D))
	assert.True(t, w.HasComponent(id, "Velocity2D"))

	typeName, ok := w.TypeName(id)
	require.True(t, ok)
	assert.Equal(t, "ball", typeName)

	it := w.Query("ball")
	assert.Equal(t, []EntityID{id}, it.IDs())
}

func TestSpawnUnknownTypeErrors(t *testing.T) {
	w := newTestWorld(t)
	_, err := w.Spawn("nonexistent")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindUnknownEntityType, e.Kind)
}

func TestDestroyRemovesFromIndicesAndFreesSlot(t *testing.T) {
	w := newTestWorld(t)
	id, err := w.Spawn("ball")
	require.NoError(t, err)

	require.NoError(t, w.Destroy(id))
	assert.False(t, w.IsEntityValid(id))
	assert.Equal(t, 0, w.Query("ball").Len())

	id2, err := w.Spawn("ball")
	require.NoError(t, err)
	assert.Equal(t, id.Index(), id2.Index())
	assert.NotEqual(t, id.Generation(), id2.Generation())
}

func TestActiveEntitiesAscendingOrder(t *testing.T) {
	w := newTestWorld(t)
	var ids []EntityID
	for i := 0; i < 5; i++ {
		id, err := w.Spawn("ball")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	active := w.ActiveEntities()
	require.Len(t, active, 5)
	for i := 1; i < len(active); i++ {
		assert.Less(t, active[i-1], active[i])
	}
}

func TestTickRoutesInputsBySequenceThenClient(t *testing.T) {
	w := newTestWorld(t)
	var seen []InputRecord
	w.Scheduler().Register(PhaseInput, 0, true, true, func(w *World) {
		seen = append(seen, w.Inputs()...)
	})

	w.Tick(1, []InputRecord{
		{ClientID: 2, Sequence: 1},
		{ClientID: 1, Sequence: 1},
		{ClientID: 1, Sequence: 0},
	})

	require.Len(t, seen, 3)
	assert.Equal(t, uint32(0), seen[0].Sequence)
	assert.Equal(t, uint32(1), seen[1].Sequence)
	assert.Equal(t, ClientID(1), seen[1].ClientID)
	assert.Equal(t, ClientID(2), seen[2].ClientID)
	assert.Equal(t, uint32(1), w.Frame())
}

func TestTickSkipsRenderOnServerOnly(t *testing.T) {
	w := NewWorld(DefaultWorldConfig(), 1, false, true)
	require.NoError(t, w.RegisterEntityDef(ballDef()))
	rendered := false
	w.Scheduler().Register(PhaseRender, 0, true, true, func(w *World) {
		rendered = true
	})
	w.Tick(1, nil)
	assert.False(t, rendered)
}

func TestTickInstallsAndUninstallsGuardAroundSimulatingPhases(t *testing.T) {
	w := newTestWorld(t)
	g := determinism.New()
	w.SetGuard(g)

	var sawInstalledDuringTick bool
	w.Scheduler().Register(PhaseUpdate, 0, true, true, func(w *World) {
		sawInstalledDuringTick = g.Installed()
	})

	w.Tick(1, nil)
	assert.True(t, sawInstalledDuringTick)
	assert.False(t, g.Installed())
}

func TestStateHashDeterministicAcrossIdenticalWorlds(t *testing.T) {
	build := func() *World {
		w := newTestWorld(t)
		id, _ := w.Spawn("ball")
		v := w.View(id)
		require.NoError(t, v.SetI32(ComponentTransform2D, "x", 12345))
		require.NoError(t, v.SetI32(ComponentTransform2D, "y", -6789))
		return w
	}
	a, b := build(), build()
	assert.Equal(t, a.StateHash(), b.StateHash())
}

func TestStateHashChangesWithFieldMutation(t *testing.T) {
	w := newTestWorld(t)
	id, _ := w.Spawn("ball")
	before := w.StateHash()
	require.NoError(t, w.View(id).SetI32(ComponentTransform2D, "x", 999))
	after := w.StateHash()
	assert.NotEqual(t, before, after)
}

func TestEntityViewInterpolatedTransformBlendsPrevAndCurrent(t *testing.T) {
	w := newTestWorld(t)
	id, _ := w.Spawn("ball")
	require.NoError(t, w.View(id).SetI32(ComponentTransform2D, "x", 0))

	w.Scheduler().Register(PhasePhysics, 0, true, true, func(w *World) {
		_ = w.View(id).SetI32(ComponentTransform2D, "x", 65536) // 1.0 in Q16.16
	})
	w.Tick(1, nil)

	mid, err := w.View(id).InterpolatedTransform(32768) // alpha = 0.5
	require.NoError(t, err)
	assert.InDelta(t, 32768, int32(mid.X), 1)
}

func TestClientEntityLookup(t *testing.T) {
	w := newTestWorld(t)
	id, _ := w.Spawn("ball")
	w.SetClientEntity(7, id)
	got, ok := w.ClientEntity(7)
	require.True(t, ok)
	assert.Equal(t, id, got)
}
