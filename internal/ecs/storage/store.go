// Package storage implements the Structure-of-Arrays component storage:
// one presence bitmap and one flat array per field per component,
// indexed by an entity's low slot index and sized to a fixed ceiling.
package storage

import (
	"sort"

	"lockstep/internal/ecs/schema"
)

// Store holds one component's SoA data: a presence bitmap and one array
// per declared field, each with length equal to the entity ceiling.
type Store struct {
	Def     schema.ComponentDef
	ceiling uint32

	presence []uint32 // bitset, word i>>5, bit 1<<(i&31)

	i32Fields map[string][]int32
	f32Fields map[string][]float32

	fieldOrder []string // declaration order, used for stable iteration
}

// New allocates a Store for def sized to ceiling slots.
func New(def schema.ComponentDef, ceiling uint32) *Store {
	s := &Store{
		Def:        def,
		ceiling:    ceiling,
		presence:   make([]uint32, (ceiling+31)/32),
		i32Fields:  make(map[string][]int32),
		f32Fields:  make(map[string][]float32),
		fieldOrder: def.FieldNames(),
	}
	for _, f := range def.Fields {
		switch f.Type {
		case schema.FieldF32:
			s.f32Fields[f.Name] = make([]float32, ceiling)
		default:
			s.i32Fields[f.Name] = make([]int32, ceiling)
		}
	}
	return s
}

// Has reports whether slot i currently has this component.
func (s *Store) Has(i uint32) bool {
	return s.presence[i>>5]&(1<<(i&31)) != 0
}

// Add sets the presence bit for slot i and writes every field to its
// schema default. Adding an already-present slot is idempotent (the
// caller, World, is responsible for rejecting duplicate adds at the API
// boundary per the DuplicateComponent error kind).
func (s *Store) Add(i uint32) {
	s.presence[i>>5] |= 1 << (i & 31)
	s.InitializeDefaults(i)
}

// Remove clears the presence bit for slot i. Field contents are left in
// place (undefined-but-valid, per the storage invariant) rather than
// zeroed, since they are never observed while the presence bit is clear.
func (s *Store) Remove(i uint32) {
	s.presence[i>>5] &^= 1 << (i & 31)
}

// InitializeDefaults writes every field array at slot i with the
// schema's declared default.
func (s *Store) InitializeDefaults(i uint32) {
	for _, f := range s.Def.Fields {
		switch f.Type {
		case schema.FieldF32:
			s.f32Fields[f.Name][i] = f.DefaultF32
		default:
			s.i32Fields[f.Name][i] = f.DefaultI32
		}
	}
}

// GetI32 reads an i32/u8/bool field's raw slot value.
func (s *Store) GetI32(i uint32, field string) int32 {
	return s.i32Fields[field][i]
}

// SetI32 writes an i32/u8/bool field's raw slot value.
func (s *Store) SetI32(i uint32, field string, v int32) {
	s.i32Fields[field][i] = v
}

// GetF32 reads an f32 field's slot value.
func (s *Store) GetF32(i uint32, field string) float32 {
	return s.f32Fields[field][i]
}

// SetF32 writes an f32 field's slot value.
func (s *Store) SetF32(i uint32, field string, v float32) {
	s.f32Fields[field][i] = v
}

// FieldNames returns the field names in ascending lexicographic order,
// as required for StateHash's deterministic field iteration.
func (s *Store) FieldNames() []string {
	names := append([]string(nil), s.fieldOrder...)
	sort.Strings(names)
	return names
}

// SyncFieldNames returns, in ascending lexicographic order, the names of
// fields that are i32/u8/bool (hashable, snapshot-eligible). f32 fields
// are excluded: they never contribute to synchronized state.
func (s *Store) SyncFieldNames() []string {
	names := make([]string, 0, len(s.i32Fields))
	for name := range s.i32Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresenceIndices returns, in ascending order, every slot index whose
// presence bit is set.
func (s *Store) PresenceIndices() []uint32 {
	out := make([]uint32, 0)
	for i := uint32(0); i < s.ceiling; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// PresenceBitmap returns the raw presence bitset words. The snapshot
// codec does not use it: its entity mask is built from allocator state by
// snapshot.BuildMask.
func (s *Store) PresenceBitmap() []uint32 {
	return s.presence
}

// Ceiling returns the slot array length.
func (s *Store) Ceiling() uint32 { return s.ceiling }
