package rollback

import (
	"sort"

	"lockstep/internal/ecs"
)

// frameEntry holds one frame's per-client inputs plus whether the server
// has confirmed them yet.
type frameEntry struct {
	byClient  map[ecs.ClientID][]byte
	confirmed bool
}

// InputHistory is a per-frame, per-client store of confirmed vs. predicted
// inputs (spec.md §4.11). Its window is recorded but not enforced: frames
// are dropped only by an explicit Prune call.
type InputHistory struct {
	window int
	frames map[uint32]*frameEntry
}

// NewInputHistory creates a history bounded to window frames (default 120
// per spec.md §4.11; window is advisory here since pruning is explicit via
// Prune, not automatic).
func NewInputHistory(window int) *InputHistory {
	return &InputHistory{window: window, frames: make(map[uint32]*frameEntry)}
}

func (h *InputHistory) entry(frame uint32) *frameEntry {
	e, ok := h.frames[frame]
	if !ok {
		e = &frameEntry{byClient: make(map[ecs.ClientID][]byte)}
		h.frames[frame] = e
	}
	return e
}

// SetInput records a local prediction for (frame, clientID).
func (h *InputHistory) SetInput(frame uint32, clientID ecs.ClientID, data []byte) {
	h.entry(frame).byClient[clientID] = data
}

// ConfirmFrame replaces frame's contents with server-authoritative inputs
// and marks it confirmed.
func (h *InputHistory) ConfirmFrame(frame uint32, inputs map[ecs.ClientID][]byte) {
	e := h.entry(frame)
	e.byClient = make(map[ecs.ClientID][]byte, len(inputs))
	for c, data := range inputs {
		e.byClient[c] = data
	}
	e.confirmed = true
}

// Confirmed reports whether frame's inputs are server-authoritative.
func (h *InputHistory) Confirmed(frame uint32) bool {
	e, ok := h.frames[frame]
	return ok && e.confirmed
}

// Records returns frame's inputs as []ecs.InputRecord sorted by ascending
// clientId, the ordering resimulation's determinism depends on.
func (h *InputHistory) Records(frame uint32) []ecs.InputRecord {
	e, ok := h.frames[frame]
	if !ok {
		return nil
	}
	clients := make([]ecs.ClientID, 0, len(e.byClient))
	for c := range e.byClient {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })
	out := make([]ecs.InputRecord, 0, len(clients))
	for _, c := range clients {
		out = append(out, ecs.InputRecord{ClientID: c, Sequence: frame, Payload: e.byClient[c]})
	}
	return out
}

// Range returns the held frames in [from, to], keyed by frame number,
// each entry's Records already sorted by client. The result is a map, so
// it carries no frame order.
func (h *InputHistory) Range(from, to uint32) map[uint32][]ecs.InputRecord {
	out := make(map[uint32][]ecs.InputRecord)
	for f := from; f <= to; f++ {
		if _, ok := h.frames[f]; ok {
			out[f] = h.Records(f)
		}
	}
	return out
}

// Prune drops all frames strictly before beforeFrame.
func (h *InputHistory) Prune(beforeFrame uint32) {
	for f := range h.frames {
		if f < beforeFrame {
			delete(h.frames, f)
		}
	}
}

// HistoryState is the serializable form of InputHistory, for late-joiner
// transfer.
type HistoryState struct {
	Frames map[uint32]map[ecs.ClientID][]byte
	Confirmed map[uint32]bool
}

// GetState serializes the history for transfer to a late joiner.
func (h *InputHistory) GetState() HistoryState {
	frames := make(map[uint32]map[ecs.ClientID][]byte, len(h.frames))
	confirmed := make(map[uint32]bool, len(h.frames))
	for f, e := range h.frames {
		cp := make(map[ecs.ClientID][]byte, len(e.byClient))
		for c, data := range e.byClient {
			cp[c] = data
		}
		frames[f] = cp
		confirmed[f] = e.confirmed
	}
	return HistoryState{Frames: frames, Confirmed: confirmed}
}

// SetState replaces the history's contents with a previously serialized
// state.
func (h *InputHistory) SetState(state HistoryState) {
	h.frames = make(map[uint32]*frameEntry, len(state.Frames))
	for f, byClient := range state.Frames {
		cp := make(map[ecs.ClientID][]byte, len(byClient))
		for c, data := range byClient {
			cp[c] = data
		}
		h.frames[f] = &frameEntry{byClient: cp, confirmed: state.Confirmed[f]}
	}
}
