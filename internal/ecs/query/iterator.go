package query

// Iterator snapshots a matching-id list at construction time. Entities
// may be created, destroyed, or modified during iteration without
// invalidating it. It does not skip ids destroyed after the snapshot was
// taken: they are still yielded, and ecs.World's Query/ByComponents hand
// the iterator out without filtering them.
type Iterator struct {
	ids []EntityID
	pos int
}

// NewIterator wraps an already-sorted, already-copied id slice.
func NewIterator(ids []EntityID) *Iterator {
	return &Iterator{ids: ids}
}

// Next returns the next id in the snapshot and advances the cursor.
func (it *Iterator) Next() (EntityID, bool) {
	if it.pos >= len(it.ids) {
		return 0, false
	}
	id := it.ids[it.pos]
	it.pos++
	return id, true
}

// Reset rewinds the cursor to the start of the snapshot.
func (it *Iterator) Reset() { it.pos = 0 }

// Len returns the number of ids captured in the snapshot.
func (it *Iterator) Len() int { return len(it.ids) }

// IDs returns the full snapshotted id slice, in ascending order.
func (it *Iterator) IDs() []EntityID { return it.ids }
