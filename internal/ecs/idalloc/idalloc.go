// Package idalloc implements the entity-ID allocator: generation-counted
// index recycling with a strictly ascending free list, per spec.md §4.4.
package idalloc

import (
	"errors"
	"sort"
)

// ErrCapacityExceeded is returned by Allocate and AllocateSpecific when
// the ceiling has been reached and no index can be freed or created.
var ErrCapacityExceeded = errors.New("idalloc: entity ceiling reached")

// EntityID packs a generation counter and a slot index into a single
// 32-bit value. Layout (MSB to LSB):
//
//	bit 31      local-only marker (1 = allocated by the local allocator,
//	            never synchronized; 0 = global/synchronized entity)
//	bits 30-19  12-bit generation counter, incremented (mod 4096) on free
//	bits 18-0   19-bit slot index
//
// The spec's "low 20 bits = index" is realized for the common (non-local)
// case where the marker bit is always 0: bits 30-0 split into a 12-bit
// generation and a 19-bit index. Reserving bit 31 for the marker means the
// practically usable index space is 2^19-1 rather than 2^20-1; the
// default entity ceiling (10,000) sits far below either bound, so this
// never matters operationally. See DESIGN.md for the full resolution of
// this layout ambiguity in the source spec.
type EntityID uint32

const (
	genBits  = 12
	idxBits  = 19
	localBit = 31

	idxMask = (uint32(1) << idxBits) - 1
	genMask = (uint32(1) << genBits) - 1

	// MaxGeneration is the modulus generations wrap around.
	MaxGeneration = uint32(1) << genBits
)

func makeEntityID(generation uint32, index uint32, local bool) EntityID {
	id := (generation & genMask) << idxBits
	id |= index & idxMask
	if local {
		id |= uint32(1) << localBit
	}
	return EntityID(id)
}

// Index returns the slot index encoded in the id.
func (id EntityID) Index() uint32 { return uint32(id) & idxMask }

// Generation returns the generation counter encoded in the id.
func (id EntityID) Generation() uint32 { return (uint32(id) >> idxBits) & genMask }

// IsLocal reports whether id was allocated by the local-only allocator.
func (id EntityID) IsLocal() bool { return uint32(id)&(uint32(1)<<localBit) != 0 }

// Allocator assigns and recycles entity indices with generation counters,
// so that a freed-then-reused index yields a distinct EntityID from any
// live reference to the old one.
type Allocator struct {
	ceiling     uint32
	local       bool
	generations []uint32 // generation currently active at each index
	used        []bool   // whether the index is currently live
	freeList    []uint32 // free indices, kept strictly ascending
	nextIndex   uint32
}

// NewAllocator creates an allocator whose storage arrays are sized to
// ceiling entities. local marks this as the local-only allocator, whose
// ids carry the local-entity marker bit.
func NewAllocator(ceiling uint32, local bool) *Allocator {
	return &Allocator{
		ceiling:     ceiling,
		local:       local,
		generations: make([]uint32, ceiling),
		used:        make([]bool, ceiling),
	}
}

// Allocate assigns a fresh EntityID: the smallest free index if one
// exists, otherwise the next never-used index below the ceiling.
func (a *Allocator) Allocate() (EntityID, error) {
	var index uint32
	if len(a.freeList) > 0 {
		index = a.freeList[0]
		a.freeList = a.freeList[1:]
	} else if a.nextIndex < a.ceiling {
		index = a.nextIndex
		a.nextIndex++
	} else {
		return 0, ErrCapacityExceeded
	}
	a.used[index] = true
	return makeEntityID(a.generations[index], index, a.local), nil
}

// AllocateSpecific marks index(id) as used with the generation encoded in
// id, removing it from the free list if present. Used only during
// snapshot restore so restored entities keep their original ids.
func (a *Allocator) AllocateSpecific(id EntityID) error {
	index := id.Index()
	if index >= a.ceiling {
		return ErrCapacityExceeded
	}
	a.generations[index] = id.Generation()
	a.used[index] = true
	a.removeFromFreeList(index)
	if index >= a.nextIndex {
		a.nextIndex = index + 1
	}
	return nil
}

// Free validates id's generation against the live generation at its
// index; a mismatch is a silent no-op. On a match, the generation is
// incremented (mod 4096) and the index is returned to the free list in
// ascending order.
func (a *Allocator) Free(id EntityID) {
	index := id.Index()
	if index >= a.ceiling || !a.used[index] || a.generations[index] != id.Generation() {
		return
	}
	a.used[index] = false
	a.generations[index] = (a.generations[index] + 1) % MaxGeneration
	a.insertFreeList(index)
}

// IsValid reports whether id refers to a currently live entity.
func (a *Allocator) IsValid(id EntityID) bool {
	index := id.Index()
	return index < a.ceiling && a.used[index] && a.generations[index] == id.Generation()
}

// IndexOf is a bit-field accessor equivalent to id.Index().
func (a *Allocator) IndexOf(id EntityID) uint32 { return id.Index() }

// GenerationOf is a bit-field accessor equivalent to id.Generation().
func (a *Allocator) GenerationOf(id EntityID) uint32 { return id.Generation() }

// Ceiling returns the maximum number of concurrently live entities.
func (a *Allocator) Ceiling() uint32 { return a.ceiling }

// ActiveSlot pairs a live index with its current generation, the unit the
// snapshot codec round-trips allocator state through.
type ActiveSlot struct {
	Index      uint32
	Generation uint32
}

// State returns the allocator's minimal snapshot representation: the
// next never-used index, plus every currently active (index, generation)
// pair in ascending index order. The free list is reconstructible as the
// complement over [0, nextIndex) and is not itself serialized.
func (a *Allocator) State() (nextIndex uint32, active []ActiveSlot) {
	active = make([]ActiveSlot, 0, a.nextIndex)
	for i := uint32(0); i < a.nextIndex; i++ {
		if a.used[i] {
			active = append(active, ActiveSlot{Index: i, Generation: a.generations[i]})
		}
	}
	return a.nextIndex, active
}

// RestoreState resets the allocator to exactly the state described by
// nextIndex and active (which must be ascending by Index, as returned by
// State): every index below nextIndex not listed in active becomes a free
// list entry, every listed index becomes used with its given generation.
func (a *Allocator) RestoreState(nextIndex uint32, active []ActiveSlot) error {
	if nextIndex > a.ceiling {
		return ErrCapacityExceeded
	}
	for i := range a.used {
		a.used[i] = false
		a.generations[i] = 0
	}
	a.freeList = a.freeList[:0]
	a.nextIndex = nextIndex

	activeIdx := 0
	for i := uint32(0); i < nextIndex; i++ {
		if activeIdx < len(active) && active[activeIdx].Index == i {
			a.used[i] = true
			a.generations[i] = active[activeIdx].Generation
			activeIdx++
			continue
		}
		a.freeList = append(a.freeList, i)
	}
	return nil
}

func (a *Allocator) insertFreeList(index uint32) {
	i := sort.Search(len(a.freeList), func(i int) bool { return a.freeList[i] >= index })
	a.freeList = append(a.freeList, 0)
	copy(a.freeList[i+1:], a.freeList[i:])
	a.freeList[i] = index
}

func (a *Allocator) removeFromFreeList(index uint32) {
	i := sort.Search(len(a.freeList), func(i int) bool { return a.freeList[i] >= index })
	if i < len(a.freeList) && a.freeList[i] == index {
		a.freeList = append(a.freeList[:i], a.freeList[i+1:]...)
	}
}
