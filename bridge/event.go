// Package bridge carries control-panel changes to the render window and view
// snapshots back, as gob messages over a net.Conn.
package bridge

import (
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/artmorph/view"
)

func init() {
	gob.Register(&Event{})
	gob.Register(&Snapshot{})
}

type Kind int

const (
	SetPalette Kind = iota + 1
	SetIterations
	SetScale
	SetRotation
	SetSpeed
	SetFractal
	TogglePlay
	Reset
)

func (k Kind) String() string {
	switch k {
	case SetPalette:
		return "palette"
	case SetIterations:
		return "iterations"
	case SetScale:
		return "scale"
	case SetRotation:
		return "rotation"
	case SetSpeed:
		return "speed"
	case SetFractal:
		return "fractal"
	case TogglePlay:
		return "toggle-play"
	case Reset:
		return "reset"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one discrete value change from the control panel. Int carries
// palette, iteration and fractal values; Float carries scale, rotation
// degrees and speed.
type Event struct {
	Kind  Kind
	Int   int
	Float float64
}

func (e Event) String() string {
	switch e.Kind {
	case SetPalette, SetIterations, SetFractal:
		return fmt.Sprintf("%v=%d", e.Kind, e.Int)
	case SetScale, SetRotation, SetSpeed:
		return fmt.Sprintf("%v=%g", e.Kind, e.Float)
	}
	return e.Kind.String()
}

func Palette(p view.Palette) Event { return Event{Kind: SetPalette, Int: int(p)} }
func Iterations(n int) Event       { return Event{Kind: SetIterations, Int: n} }
func Scale(v float64) Event        { return Event{Kind: SetScale, Float: v} }
func Rotation(deg float64) Event   { return Event{Kind: SetRotation, Float: deg} }
func Speed(v float64) Event        { return Event{Kind: SetSpeed, Float: v} }
func Fractal(id int) Event         { return Event{Kind: SetFractal, Int: id} }

// Snapshot is the view as the render window last applied it, sent back so
// the control panel can keep its widgets in sync.
type Snapshot struct {
	Fractal    int
	Palette    int
	Iterations int
	Scale      float64
	Rotation   float64
	Speed      float64
	Center     [2]float64
	Time       float64
	Playing    bool
}

func SnapshotOf(s view.State) Snapshot {
	c := s.Center()
	return Snapshot{
		Fractal:    s.Fractal(),
		Palette:    int(s.Palette()),
		Iterations: s.Iterations(),
		Scale:      s.Scale(),
		Rotation:   s.Rotation(),
		Speed:      s.Speed(),
		Center:     [2]float64{c[0], c[1]},
		Time:       s.Time(),
		Playing:    s.Playing(),
	}
}

// State rebuilds the view the snapshot was taken from.
func (s Snapshot) State() (view.State, error) {
	st := view.Default()
	err := errors.Join(
		st.SetCenter(mgl64.Vec2{s.Center[0], s.Center[1]}),
		st.SetScale(s.Scale),
		st.SetRotation(s.Rotation),
		st.SetSpeed(s.Speed),
		st.SetIterations(s.Iterations),
		st.SetPalette(view.Palette(s.Palette)),
	)
	if err != nil {
		return view.State{}, err
	}
	st.SetFractal(s.Fractal)

	st.SetPlaying(true)
	st.Advance(s.Time)
	st.SetPlaying(s.Playing)
	return st, nil
}
