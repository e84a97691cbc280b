package main

import (
	"lockstep/internal/ecs"
	"lockstep/internal/fixed"
	"lockstep/internal/physics2d"
)

// ballDef is the one entity type the demo spawns: a position plus a
// horizontal-velocity field driven directly by client input.
func ballDef() ecs.EntityDef {
	return ecs.EntityDef{
		Name: "ball",
		Components: []ecs.ComponentDef{
			ecs.TransformDef,
			{
				Name: "Velocity2D",
				Sync: true,
				Fields: []ecs.FieldDef{
					{Name: "vx", Type: ecs.FieldI32},
					{Name: "vy", Type: ecs.FieldI32},
				},
			},
		},
	}
}

// peer bundles an *ecs.World with the internal/physics2d.World its
// PhasePhysics system drives. Two peers built from identical seeds and
// fed identical (frame, inputs) sequences must report identical
// StateHash after every Tick (spec.md §5's cross-implementation
// ordering guarantee) — that equality is exactly what cmd/simhost
// exists to demonstrate.
type peer struct {
	world  *ecs.World
	phys   *physics2d.World
	ballID ecs.EntityID
	ball   *physics2d.Body
}

func newPeer(seed uint32, isClient, isServer bool) *peer {
	w := ecs.NewWorld(ecs.DefaultWorldConfig(), seed, isClient, isServer)
	if err := w.RegisterEntityDef(ballDef()); err != nil {
		panic(err)
	}

	phys := physics2d.NewWorld(fixed.V2(0, fixed.FromFloat(-9.8)), 0)
	ball := &physics2d.Body{
		Shape:          physics2d.ShapeCircle,
		Type:           physics2d.Dynamic,
		Label:          "ball",
		Position:       fixed.V2(0, fixed.FromInt(20)),
		Radius:         fixed.FromInt(1),
		InverseMass:    fixed.One,
		InverseInertia: fixed.One,
		Restitution:    fixed.FromFloat(0.4),
		Friction:       fixed.FromFloat(0.1),
		Filter:         physics2d.Filter{Layer: 1, Mask: 1},
	}
	phys.Add(ball, "ball")

	ground := &physics2d.Body{
		Shape:      physics2d.ShapeBox,
		Type:       physics2d.Static,
		Label:      "ground",
		Position:   fixed.V2(0, 0),
		HalfWidth:  fixed.FromInt(100),
		HalfHeight: fixed.FromInt(1),
		Filter:     physics2d.Filter{Layer: 1, Mask: 1},
	}
	phys.Add(ground, "ground")

	p := &peer{world: w, phys: phys, ball: ball}

	id, err := w.Spawn("ball")
	if err != nil {
		panic(err)
	}
	p.ballID = id
	w.SetClientEntity(ecs.ClientID(1), id)

	w.Scheduler().Register(ecs.PhaseUpdate, 0, true, true, func(w *ecs.World) {
		for _, in := range w.Inputs() {
			eid, ok := w.ClientEntity(in.ClientID)
			if !ok {
				continue
			}
			push := fixed.FromFloat(float32(len(in.Payload)) * 0.1)
			_ = w.View(eid).SetI32("Velocity2D", "vx", int32(push))
		}
	})

	w.Scheduler().Register(ecs.PhasePhysics, 0, true, true, func(w *ecs.World) {
		vx, _ := w.View(p.ballID).GetI32("Velocity2D", "vx")
		p.ball.LinearVelocity.X = fixed.Fixed(vx)

		p.phys.Step(fixed.FromFloat(1.0 / 60))

		_ = w.View(p.ballID).SetI32("Transform2D", "x", int32(p.ball.Position.X))
		_ = w.View(p.ballID).SetI32("Transform2D", "y", int32(p.ball.Position.Y))
	})

	return p
}

// tick advances the peer one frame with inputs, returning the resulting
// StateHash.
func (p *peer) tick(frame uint32, inputs []ecs.InputRecord) uint32 {
	p.world.Tick(frame, inputs)
	return p.world.StateHash()
}
