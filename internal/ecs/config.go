package ecs

// WorldConfig bundles the tunables a World is constructed with. Mirrors
// the teacher's WorldConfig in shape (internal/core/ecs/types.go),
// repurposed for entity ceiling / rollback window / tick rate instead of
// memory-pool tuning knobs.
type WorldConfig struct {
	// EntityCeiling bounds the number of concurrently live synchronized
	// entities; it sizes every component Store's field arrays.
	EntityCeiling uint32

	// LocalEntityCeiling bounds local-only (unsynchronized) entities,
	// allocated from a separate Allocator so their ids never collide
	// with synchronized ones.
	LocalEntityCeiling uint32

	// RollbackWindow is the default rollback ring depth. Nothing in the
	// module reads it: internal/rollback.NewSnapshotRing takes its
	// capacity as an argument.
	RollbackWindow int

	// TickRate is informational only; the World itself has no wall-clock
	// dependency (§5: single-threaded cooperative, driven by the caller).
	TickRate int
}

// DefaultWorldConfig returns the spec's default tunables: 10,000
// synchronized entities, 1,000 local-only entities, a 60-frame rollback
// window, 60Hz informational tick rate.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		EntityCeiling:      10000,
		LocalEntityCeiling: 1000,
		RollbackWindow:     60,
		TickRate:           60,
	}
}
