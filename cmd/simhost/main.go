// Command simhost is a demonstration host for the deterministic lockstep
// core: it runs two in-process peers over identical synthetic input and
// asserts their StateHash matches after every tick, the property spec.md
// §5 and §8 require of any two correct implementations. It is debug/demo
// tooling, not part of the simulation core itself — internal/* never
// imports this package.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"lockstep/internal/ecs"
)

func main() {
	frames := flag.Int("frames", 180, "number of ticks to run")
	seed := flag.Uint("seed", 1, "PRNG seed shared by both peers")
	visual := flag.Bool("visual", false, "launch an ebiten debug view of peer A instead of the headless comparison")
	flag.Parse()

	if *visual {
		runVisual(uint32(*seed))
		return
	}

	if err := runHeadless(*frames, uint32(*seed)); err != nil {
		log.Fatal(err)
	}
}

// syntheticInputs deterministically varies the single client's payload
// length by frame, so the demo's velocity system has something to chew
// on; real transports would fill this from the network instead.
func syntheticInputs(frame uint32) []ecs.InputRecord {
	length := int(frame % 5)
	payload := make([]byte, length)
	return []ecs.InputRecord{{ClientID: 1, Sequence: frame, Payload: payload}}
}

func runHeadless(frames int, seed uint32) error {
	a := newPeer(seed, true, true)
	b := newPeer(seed, true, true)

	for f := uint32(1); f <= uint32(frames); f++ {
		inputs := syntheticInputs(f)
		hashA := a.tick(f, inputs)
		hashB := b.tick(f, inputs)
		if hashA != hashB {
			return fmt.Errorf("frame %d: peers diverged: %08x != %08x", f, hashA, hashB)
		}
	}

	fmt.Fprintf(os.Stdout, "%d frames, peers agree, final hash %08x\n", frames, a.world.StateHash())
	return nil
}
