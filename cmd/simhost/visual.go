package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// debugGame drives a single peer for on-screen inspection. Draw reads the
// ball's physics-body position directly (no render-phase interpolation)
// and the world's StateHash; it never calls a mutating World method
// outside the Tick that Update itself issues, and like any ebiten view
// here it sits outside internal/*.
type debugGame struct {
	p     *peer
	frame uint32
}

func (g *debugGame) Update() error {
	g.frame++
	g.p.tick(g.frame, syntheticInputs(g.frame))
	return nil
}

func (g *debugGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})
	x := float64(int32(g.p.ball.Position.X)) / 65536
	y := float64(int32(g.p.ball.Position.Y)) / 65536
	ebitenutil.DrawRect(screen, 640+x*4, 360-y*4, 8, 8, color.RGBA{220, 160, 40, 255})
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"frame %d hash %08x ball (%.2f, %.2f)",
		g.frame, g.p.world.StateHash(), x, y,
	))
}

func (g *debugGame) Layout(_, _ int) (int, int) {
	return 1280, 720
}

func runVisual(seed uint32) {
	g := &debugGame{p: newPeer(seed, true, true)}

	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("simhost debug view")
	if err := ebiten.RunGame(g); err != nil {
		panic(err)
	}
}
