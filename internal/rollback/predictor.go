package rollback

import (
	"lockstep/internal/ecs"
)

// Prediction records one pending client-side guess: the frame it was made
// for, the inputs used, and the hash observed right after applying them
// (spec.md §4.12).
type Prediction struct {
	Frame        uint32
	Inputs       []ecs.InputRecord
	PostTickHash uint32
}

// Predictor is the client-side role of the orchestrator: it runs ahead of
// server confirmation, remembers what it guessed, and resimulates from the
// nearest held snapshot when a guess turns out wrong.
type Predictor struct {
	world   *ecs.World
	ring    *SnapshotRing
	history *InputHistory

	pending      map[uint32]Prediction
	currentFrame uint32

	// OnRollback is invoked with the mispredicted frame before
	// resimulation begins, e.g. for telemetry or snapping render
	// interpolation state. May be nil.
	OnRollback func(frame uint32)
}

// NewPredictor wires a Predictor around an already-constructed world, ring,
// and input history.
func NewPredictor(world *ecs.World, ring *SnapshotRing, history *InputHistory) *Predictor {
	return &Predictor{
		world:   world,
		ring:    ring,
		history: history,
		pending: make(map[uint32]Prediction),
	}
}

// CurrentFrame returns the highest frame the world has been ticked to,
// confirmed or predicted.
func (p *Predictor) CurrentFrame() uint32 { return p.currentFrame }

// Predict saves the world's current (pre-tick) state under key frame-1 —
// it is exactly the state as of completing frame-1, so a later
// misprediction on frame can restore it by looking up frame-1 directly —
// then ticks the world forward speculatively using inputs (which may
// include locally-generated input not yet acknowledged by the server),
// records the resulting state hash as a pending prediction for frame, and
// advances CurrentFrame. The caller is expected to have already recorded
// these inputs in the InputHistory via SetInput.
func (p *Predictor) Predict(frame uint32, inputs []ecs.InputRecord) (uint32, error) {
	if frame > 0 {
		preTick, err := p.world.Encode(frame)
		if err != nil {
			return 0, err
		}
		p.ring.Save(frame-1, preTick)
	}
	p.world.Tick(frame, inputs)
	hash := p.world.StateHash()
	p.pending[frame] = Prediction{Frame: frame, Inputs: inputs, PostTickHash: hash}
	if frame > p.currentFrame {
		p.currentFrame = frame
	}
	return hash, nil
}

// ServerTick implements spec.md §4.12's four-step algorithm for an
// authoritative tick of frame:
//  1. Save the current world as the pre-apply snapshot for frame (done by
//     Predict, at the point the client first ran ahead of the server for
//     this frame; a frame the client never predicted has no such snapshot
//     and needs none, since step 4 applies).
//  2. Confirm frame's inputs in the input history.
//  3. If a prediction for frame exists, restore the snapshot from frame-1
//     (or the nearest held earlier one), reapply the confirmed inputs, and
//     compare hashes; on mismatch, invoke OnRollback and resimulate every
//     later frame up to CurrentFrame using confirmed-or-predicted inputs.
//  4. Otherwise just tick frame normally.
//
// ServerTick returns ErrRollbackWindowExceeded if a misprediction needs a
// pre-frame snapshot older than what the ring still holds.
func (p *Predictor) ServerTick(frame uint32, confirmed map[ecs.ClientID][]byte) error {
	p.history.ConfirmFrame(frame, confirmed)

	pred, hadPrediction := p.pending[frame]
	delete(p.pending, frame)

	if !hadPrediction {
		p.world.Tick(frame, p.history.Records(frame))
		if frame > p.currentFrame {
			p.currentFrame = frame
		}
		return nil
	}

	if frame == 0 {
		return rollbackWindowExceeded(frame)
	}
	restoreFrame, restoreData, found := p.ring.NearestAtOrBefore(frame - 1)
	if !found {
		return rollbackWindowExceeded(frame)
	}
	if err := p.world.Decode(restoreData); err != nil {
		return err
	}

	for f := restoreFrame + 1; f < frame; f++ {
		p.world.Tick(f, p.history.Records(f))
	}
	p.world.Tick(frame, p.history.Records(frame))
	postHash := p.world.StateHash()

	if postHash == pred.PostTickHash {
		return nil
	}

	if p.OnRollback != nil {
		p.OnRollback(frame)
	}
	for f := frame + 1; f <= p.currentFrame; f++ {
		p.world.Tick(f, p.history.Records(f))
	}
	return nil
}

func rollbackWindowExceeded(frame uint32) error {
	return &windowExceededError{frame: frame}
}

// windowExceededError is rollback's own carrier for the
// RollbackWindowExceeded condition. The ecs package defines the same
// taxonomy entry (ecs.ErrRollbackWindowExceeded), but nothing in ecs
// returns it and its constructor is unexported, so this package mirrors
// the sentinel shape here rather than string-matching.
type windowExceededError struct {
	frame uint32
}

func (e *windowExceededError) Error() string {
	return "rollback: required snapshot frame is older than the rollback window"
}

// ErrRollbackWindowExceeded is the sentinel for errors.Is comparisons
// against ServerTick's window-exceeded failure.
var ErrRollbackWindowExceeded = &windowExceededError{}

func (e *windowExceededError) Is(target error) bool {
	_, ok := target.(*windowExceededError)
	return ok
}
