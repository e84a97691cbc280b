package ecs

import "sort"

// Phase names the six fixed points in a tick where registered systems run.
type Phase int

const (
	PhaseInput Phase = iota
	PhaseUpdate
	PhasePrePhysics
	PhasePhysics
	PhasePostPhysics
	PhaseRender
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhasePrePhysics:
		return "prePhysics"
	case PhasePhysics:
		return "physics"
	case PhasePostPhysics:
		return "postPhysics"
	case PhaseRender:
		return "render"
	default:
		return "unknown"
	}
}

// System is a plain synchronous tick callback. Systems must not re-enter
// the scheduler (calling RunPhase/RunAll from inside a System is
// undefined) and must not suspend.
type System func(w *World)

type registration struct {
	order        int
	seq          int
	runsOnClient bool
	runsOnServer bool
	fn           System
}

// Scheduler holds the per-phase registration lists and runs them in the
// fixed phase order, honoring the client/server role gate, the ascending
// order, and registration-sequence tie-break.
type Scheduler struct {
	phases  [phaseCount][]registration
	nextSeq int
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Register adds fn to phase, to run at the given order (ascending, stable
// tie-break by registration sequence). runsOnClient/runsOnServer gate
// whether the system executes for a given host role; a system that opts
// out of the current role is silently skipped.
func (s *Scheduler) Register(phase Phase, order int, runsOnClient, runsOnServer bool, fn System) {
	reg := registration{
		order:        order,
		seq:          s.nextSeq,
		runsOnClient: runsOnClient,
		runsOnServer: runsOnServer,
		fn:           fn,
	}
	s.nextSeq++
	s.phases[phase] = append(s.phases[phase], reg)
	sort.SliceStable(s.phases[phase], func(i, j int) bool {
		return s.phases[phase][i].order < s.phases[phase][j].order
	})
}

// RunPhase executes every system registered for phase that is eligible
// for at least one of the world's active roles, in the phase's fixed
// (order, seq) sequence. A dedicated client (isServer false) or
// dedicated server (isClient false) runs only systems opted into that
// single role, same as always; a listen server (isClient && isServer
// both true) runs a system if it is enabled for either role, not only
// ones enabled for both — otherwise a client-only system such as local
// input handling would never run on a listen server, which also acts as
// its own client.
func (s *Scheduler) RunPhase(phase Phase, w *World, isClient, isServer bool) {
	for _, reg := range s.phases[phase] {
		eligible := (isClient && reg.runsOnClient) || (isServer && reg.runsOnServer)
		if !eligible {
			continue
		}
		reg.fn(w)
	}
}

// RunAll runs input, update, prePhysics, physics, postPhysics in that
// order, then render unless isServer (servers never render).
func (s *Scheduler) RunAll(w *World, isClient, isServer bool) {
	order := []Phase{PhaseInput, PhaseUpdate, PhasePrePhysics, PhasePhysics, PhasePostPhysics}
	for _, p := range order {
		s.RunPhase(p, w, isClient, isServer)
	}
	if !isServer {
		s.RunPhase(PhaseRender, w, isClient, isServer)
	}
}
