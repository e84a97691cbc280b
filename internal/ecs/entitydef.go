package ecs

// EntityDef describes one spawnable entity type: its unique name, the
// ordered list of components every instance carries, whether the type is
// local-only (never synchronized, never appears in StateHash or a
// snapshot), and an optional restore hook invoked after a snapshot decode
// places an instance's data (spec.md §6, "Entity definitions").
type EntityDef struct {
	Name       string
	Components []ComponentDef

	// LocalOnly marks the type as carrying no synchronized fields (the
	// spec's "empty synchronized-fields filter"): entities of this type
	// are allocated from the local allocator and excluded from
	// StateHash and snapshot encoding.
	LocalOnly bool

	// OnRestore, if set, runs after a snapshot decode has finished
	// placing this entity's component data.
	OnRestore func(w *World, id EntityID)
}
