package physics2d

import (
	"sort"

	"lockstep/internal/fixed"
)

// sleepThresholdSq and sleepFramesRequired are the defaults from spec.md
// §4.13 step 7: a speed threshold of 0.12, stored squared because it is
// compared against squared linear and angular speeds, and 20 consecutive
// frames.
var sleepThresholdSq = fixed.Mul(fixed.FromFloat(0.12), fixed.FromFloat(0.12))

const sleepFramesRequired = 20

// Handler reacts to a collision between a and b. For a registered pair of
// distinct categories, the reverse-ordered handler is synthesized
// automatically at registration (spec.md §4.13 step 4); for bodies of the
// same category the handler is invoked twice, once per argument order.
type Handler func(a, b *Body)

type handlerKey struct{ A, B string }

// World owns a set of bodies and the one tick pipeline of spec.md §4.13.
// Category is an addition beyond the spec's literal per-body field list
// (shape/type/position/.../label) needed to give "for same-type pairs"
// and "different types" in step 4 a concrete meaning: it is the
// dispatch key collision handlers register against, distinct from Label
// (which only orders enumeration, never gates dispatch). See DESIGN.md.
type World struct {
	Bodies   []*Body
	Gravity  fixed.Vec2
	CellSize fixed.Fixed

	handlers map[handlerKey]Handler

	Categories map[*Body]string
}

// NewWorld constructs an empty physics world with the given gravity
// vector and cell size (pass fixed.Zero-valued CellSize to use the
// spec's default of 64 units).
func NewWorld(gravity fixed.Vec2, cellSize fixed.Fixed) *World {
	if cellSize == 0 {
		cellSize = defaultCellSize
	}
	return &World{
		Gravity:    gravity,
		CellSize:   cellSize,
		handlers:   make(map[handlerKey]Handler),
		Categories: make(map[*Body]string),
	}
}

// Add registers a body under category (the handler dispatch key) and
// returns its index.
func (w *World) Add(b *Body, category string) int {
	w.Bodies = append(w.Bodies, b)
	w.Categories[b] = category
	return len(w.Bodies) - 1
}

// OnCollision registers fn for contacts between catA and catB. If the
// categories differ, a reverse handler with swapped arguments is
// synthesized so a (catB, catA)-ordered contact still dispatches
// correctly; same-category registrations need no synthesis since
// dispatch invokes the one handler twice (spec.md §4.13 step 4).
func (w *World) OnCollision(catA, catB string, fn Handler) {
	w.handlers[handlerKey{catA, catB}] = fn
	if catA != catB {
		w.handlers[handlerKey{catB, catA}] = func(a, b *Body) { fn(b, a) }
	}
}

func (w *World) category(b *Body) string { return w.Categories[b] }

// Step runs one tick of the pipeline: integrate velocities, broad phase,
// narrow phase, sorted collision dispatch, response, integrate
// positions, sleep detection. dt is a fixed-point seconds-per-tick value
// (commonly fixed.One / tickRate).
func (w *World) Step(dt fixed.Fixed) {
	order := w.sortedIndices()

	w.integrateVelocities(order, dt)

	hash := newSpatialHash(w.CellSize)
	for _, i := range order {
		if w.Bodies[i].Type == Static {
			continue
		}
		min, max := w.Bodies[i].AABB()
		center := min.Add(max).Scale(fixed.Half)
		hash.insert(i, center)
	}
	// Static bodies still participate in narrow phase against movers, so
	// they're inserted too, just last, to keep the "in insertion order"
	// contract stable per sorted index rather than depending on dynamic
	// vs static partitioning order.
	for _, i := range order {
		if w.Bodies[i].Type != Static {
			continue
		}
		min, max := w.Bodies[i].AABB()
		center := min.Add(max).Scale(fixed.Half)
		hash.insert(i, center)
	}

	contacts := w.narrowPhaseAll(hash.pairs())
	w.dispatchAndRespond(contacts)

	w.integratePositions(order, dt)
	w.detectSleep(order)
}

// sortedIndices returns body indices sorted by label ascending, the
// deterministic enumeration order spec.md §4.13 step 1 requires.
func (w *World) sortedIndices() []int {
	order := make([]int, len(w.Bodies))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return w.Bodies[order[i]].Label < w.Bodies[order[j]].Label
	})
	return order
}

func (w *World) integrateVelocities(order []int, dt fixed.Fixed) {
	for _, i := range order {
		b := w.Bodies[i]
		if b.Type != Dynamic || b.Sleeping() {
			continue
		}
		b.LinearVelocity = b.LinearVelocity.Add(w.Gravity.Scale(dt))
		b.LinearVelocity = b.LinearVelocity.Scale(fixed.One - b.LinearDamping)
		// Applied unconditionally per the integration step's ordering.
		// A rotation-locked body's AngularVelocity is not forced to zero,
		// but integratePositions never folds it into Angle, so damping it
		// here has no effect on that body's rotation.
		b.AngularVelocity = fixed.Mul(b.AngularVelocity, fixed.One-b.AngularDamping)
	}
}

// sortedContact carries the label pair used for step 4's ordering
// alongside the resolved Contact, so the final dispatch/response order
// depends only on body labels, never on broad-phase discovery order or
// narrow-phase detection order (both of which walk a Go map internally
// and are not otherwise deterministic).
type sortedContact struct {
	labelA, labelB string
	contact        Contact
}

func (w *World) narrowPhaseAll(candidatePairs [][2]int) []sortedContact {
	out := make([]sortedContact, 0, len(candidatePairs))
	for _, pair := range candidatePairs {
		a, b := w.Bodies[pair[0]], w.Bodies[pair[1]]
		if !a.Filter.CanCollide(b.Filter) {
			continue
		}
		c, ok := narrow(a, b)
		if !ok {
			continue
		}
		c.A, c.B = pair[0], pair[1]
		la, lb := a.Label, b.Label
		if la > lb {
			la, lb = lb, la
			c.A, c.B = c.B, c.A
			c.Normal = c.Normal.Neg()
		}
		out = append(out, sortedContact{labelA: la, labelB: lb, contact: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].labelA != out[j].labelA {
			return out[i].labelA < out[j].labelA
		}
		return out[i].labelB < out[j].labelB
	})
	return out
}

func (w *World) dispatchAndRespond(contacts []sortedContact) {
	for _, sc := range contacts {
		c := sc.contact
		a, b := w.Bodies[c.A], w.Bodies[c.B]

		key := handlerKey{w.category(a), w.category(b)}
		if fn, ok := w.handlers[key]; ok {
			fn(a, b)
			if w.category(a) == w.category(b) {
				fn(b, a)
			}
		}

		if a.Sensor || b.Sensor {
			continue
		}
		positionCorrect(a, b, c)
		applyImpulse(a, b, c)
	}
}

func (w *World) integratePositions(order []int, dt fixed.Fixed) {
	linearClamp := fixed.FromFloat(0.05)
	angularClamp := fixed.FromFloat(0.01)
	for _, i := range order {
		b := w.Bodies[i]
		if b.Type == Static || b.Sleeping() {
			continue
		}
		if fixed.Abs(b.LinearVelocity.X) < linearClamp && fixed.Abs(b.LinearVelocity.Y) < linearClamp {
			b.LinearVelocity = fixed.Vec2{}
		}
		if !b.RotationLock && fixed.Abs(b.AngularVelocity) < angularClamp {
			b.AngularVelocity = 0
		}
		b.Position = b.Position.Add(b.LinearVelocity.Scale(dt))
		if !b.RotationLock {
			b.Angle = b.Angle + fixed.Mul(b.AngularVelocity, dt)
		}
	}
}

func (w *World) detectSleep(order []int) {
	for _, i := range order {
		b := w.Bodies[i]
		if b.Type != Dynamic {
			continue
		}
		speedSq := b.LinearVelocity.LengthSq()
		angSq := fixed.Mul(b.AngularVelocity, b.AngularVelocity)
		if speedSq < sleepThresholdSq && angSq < sleepThresholdSq {
			b.sleepFrames++
			if b.sleepFrames >= sleepFramesRequired {
				b.sleeping = true
				b.LinearVelocity = fixed.Vec2{}
				b.AngularVelocity = 0
			}
		} else {
			b.sleepFrames = 0
		}
	}
}

// WakeAll wakes every body, required after a snapshot restore so peers
// never diverge on sleep state across a resync (spec.md §4.13 invariant).
func (w *World) WakeAll() {
	for _, b := range w.Bodies {
		b.Wake()
	}
}
