// Package query implements the ECS secondary indices (type, component,
// clientId) and the snapshot-iterator semantics described in spec.md
// §4.6: every index is a sorted slice of entity ids, and every iterator
// copies its matching-id list at construction time so concurrent
// mutation during traversal is safe.
package query

import (
	"sort"

	"lockstep/internal/ecs/idalloc"
	"lockstep/internal/ecs/schema"
)

// EntityID and ComponentType are aliased here so this package's exported
// API doesn't force callers to also import idalloc/schema directly.
type (
	EntityID      = idalloc.EntityID
	ComponentType = schema.ComponentType
)

// SortedSet is an ascending, duplicate-free slice of entity ids with
// O(log n) membership/insert/remove via binary search.
type SortedSet []EntityID

// Insert adds id to the set, preserving ascending order. A no-op if id is
// already present.
func (s *SortedSet) Insert(id EntityID) {
	i := sort.Search(len(*s), func(i int) bool { return (*s)[i] >= id })
	if i < len(*s) && (*s)[i] == id {
		return
	}
	*s = append(*s, 0)
	copy((*s)[i+1:], (*s)[i:])
	(*s)[i] = id
}

// Remove deletes id from the set if present.
func (s *SortedSet) Remove(id EntityID) {
	i := sort.Search(len(*s), func(i int) bool { return (*s)[i] >= id })
	if i < len(*s) && (*s)[i] == id {
		*s = append((*s)[:i], (*s)[i+1:]...)
	}
}

// Contains reports set membership via binary search.
func (s SortedSet) Contains(id EntityID) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	return i < len(s) && s[i] == id
}

// Snapshot returns a copy of the set's current contents, for iterator
// construction.
func (s SortedSet) Snapshot() []EntityID {
	out := make([]EntityID, len(s))
	copy(out, s)
	return out
}

// Indices bundles the three secondary indices maintained incrementally as
// entities are created, destroyed, and gain or lose components.
type Indices struct {
	byType      map[string]*SortedSet
	byComponent map[ComponentType]*SortedSet
	byClient    map[uint32]EntityID
}

// NewIndices creates an empty index set.
func NewIndices() *Indices {
	return &Indices{
		byType:      make(map[string]*SortedSet),
		byComponent: make(map[ComponentType]*SortedSet),
		byClient:    make(map[uint32]EntityID),
	}
}

// AddType registers id under the type index for type name t.
func (idx *Indices) AddType(t string, id EntityID) {
	set := idx.byType[t]
	if set == nil {
		set = &SortedSet{}
		idx.byType[t] = set
	}
	set.Insert(id)
}

// RemoveType removes id from the type index for type name t.
func (idx *Indices) RemoveType(t string, id EntityID) {
	if set := idx.byType[t]; set != nil {
		set.Remove(id)
	}
}

// AddComponent registers id under the component index for c.
func (idx *Indices) AddComponent(c ComponentType, id EntityID) {
	set := idx.byComponent[c]
	if set == nil {
		set = &SortedSet{}
		idx.byComponent[c] = set
	}
	set.Insert(id)
}

// RemoveComponent removes id from the component index for c.
func (idx *Indices) RemoveComponent(c ComponentType, id EntityID) {
	if set := idx.byComponent[c]; set != nil {
		set.Remove(id)
	}
}

// SetClient records id as the entity owned by clientID, replacing any
// previous owner (the index is single-valued per spec.md §4.6).
func (idx *Indices) SetClient(clientID uint32, id EntityID) {
	idx.byClient[clientID] = id
}

// RemoveClient drops the clientId -> entity mapping for clientID.
func (idx *Indices) RemoveClient(clientID uint32) {
	delete(idx.byClient, clientID)
}

// ByClient is the O(1) clientId lookup.
func (idx *Indices) ByClient(clientID uint32) (EntityID, bool) {
	id, ok := idx.byClient[clientID]
	return id, ok
}

// ByType returns an iterator snapshotting the type index for t.
func (idx *Indices) ByType(t string) *Iterator {
	set := idx.byType[t]
	if set == nil {
		return NewIterator(nil)
	}
	return NewIterator(set.Snapshot())
}

// ByComponents intersects the component sets for the given component
// types: it scans the smallest candidate set and retains ids present in
// every other set, returning them sorted ascending (they already are,
// since the smallest set itself is sorted and scanned in order).
func (idx *Indices) ByComponents(components ...ComponentType) *Iterator {
	if len(components) == 0 {
		return NewIterator(nil)
	}
	sets := make([]*SortedSet, len(components))
	smallest := -1
	for i, c := range components {
		sets[i] = idx.byComponent[c]
		if sets[i] == nil {
			return NewIterator(nil)
		}
		if smallest == -1 || len(*sets[i]) < len(*sets[smallest]) {
			smallest = i
		}
	}

	candidates := *sets[smallest]
	out := make([]EntityID, 0, len(candidates))
	for _, id := range candidates {
		match := true
		for i, s := range sets {
			if i == smallest {
				continue
			}
			if !s.Contains(id) {
				match = false
				break
			}
		}
		if match {
			out = append(out, id)
		}
	}
	return NewIterator(out)
}

// Query intersects the type index for t with the component sets listed.
func (idx *Indices) Query(t string, components ...ComponentType) *Iterator {
	typeSet := idx.byType[t]
	if typeSet == nil {
		return NewIterator(nil)
	}
	if len(components) == 0 {
		return NewIterator(typeSet.Snapshot())
	}

	compSets := make([]*SortedSet, len(components))
	for i, c := range components {
		compSets[i] = idx.byComponent[c]
		if compSets[i] == nil {
			return NewIterator(nil)
		}
	}

	out := make([]EntityID, 0, len(*typeSet))
	for _, id := range *typeSet {
		match := true
		for _, s := range compSets {
			if !s.Contains(id) {
				match = false
				break
			}
		}
		if match {
			out = append(out, id)
		}
	}
	return NewIterator(out)
}
