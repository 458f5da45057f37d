package programs

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// GeneratorState is the mutable state a stochastic CPU fractal carries from
// frame to frame.
type GeneratorState struct {
	Rand   *rand.Rand
	Point  mgl64.Vec2
	Ready  bool
	Frames int
}

// Generators owns one GeneratorState per fractal id.
type Generators struct {
	seed   int64
	states map[int]*GeneratorState
}

func NewGenerators(seed int64) *Generators {
	return &Generators{
		seed:   seed,
		states: make(map[int]*GeneratorState),
	}
}

// Activate gives id a fresh state. Call it whenever id becomes the active
// fractal.
func (g *Generators) Activate(id int) *GeneratorState {
	s := &GeneratorState{
		Rand: rand.New(rand.NewSource(g.seed + int64(id))),
	}
	g.states[id] = s
	return s
}

// State returns the state for id, creating it on first use.
func (g *Generators) State(id int) *GeneratorState {
	if s, ok := g.states[id]; ok {
		return s
	}
	return g.Activate(id)
}
