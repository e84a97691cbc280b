// Package rollback implements the rollback ring buffer, input history, and
// client-side prediction/resimulation loop described in spec.md
// §4.10-§4.12. It depends on internal/ecs (for *ecs.World.Encode/Decode/
// Tick/StateHash) and internal/snapshot only indirectly, through World's
// own snapshot methods — this package never parses wire bytes itself.
package rollback

// SnapshotRing holds up to Capacity recent encoded snapshots keyed by
// frame number. Inserting past capacity evicts the oldest entry
// (spec.md §4.10).
type SnapshotRing struct {
	capacity int
	frames   []uint32 // insertion order, oldest first
	byFrame  map[uint32][]byte
}

// NewSnapshotRing creates a ring holding at most capacity snapshots.
func NewSnapshotRing(capacity int) *SnapshotRing {
	return &SnapshotRing{
		capacity: capacity,
		byFrame:  make(map[uint32][]byte),
	}
}

// Save inserts data under frame, evicting the oldest entry if the ring is
// at capacity. Saving an already-present frame replaces its bytes without
// changing its position in eviction order.
func (r *SnapshotRing) Save(frame uint32, data []byte) {
	if _, exists := r.byFrame[frame]; exists {
		r.byFrame[frame] = data
		return
	}
	if len(r.frames) >= r.capacity {
		oldest := r.frames[0]
		r.frames = r.frames[1:]
		delete(r.byFrame, oldest)
	}
	r.frames = append(r.frames, frame)
	r.byFrame[frame] = data
}

// Get returns the encoded snapshot for frame, if still held.
func (r *SnapshotRing) Get(frame uint32) ([]byte, bool) {
	data, ok := r.byFrame[frame]
	return data, ok
}

// NearestAtOrBefore returns the snapshot for the largest held frame <=
// frame, for "restore the snapshot saved at frame F-1 (or the nearest
// available earlier)" (spec.md §4.12 step 3).
func (r *SnapshotRing) NearestAtOrBefore(frame uint32) (uint32, []byte, bool) {
	var best uint32
	var bestData []byte
	found := false
	for f, data := range r.byFrame {
		if f > frame {
			continue
		}
		if !found || f > best {
			best, bestData, found = f, data, true
		}
	}
	return best, bestData, found
}

// Oldest returns the oldest frame still held, for checking whether a
// required frame has aged out of the window.
func (r *SnapshotRing) Oldest() (uint32, bool) {
	if len(r.frames) == 0 {
		return 0, false
	}
	return r.frames[0], true
}

// Len returns the number of snapshots currently held.
func (r *SnapshotRing) Len() int { return len(r.frames) }
