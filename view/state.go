// Package view holds the interactive view state shared by the GPU and CPU
// renderers and the coordinate mapping between device pixels and the world
// plane.
package view

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// BaseSpan is the width of the visible world plane at scale 1.
	BaseSpan = 3.0

	MinScale = 0.1
	MaxScale = 10.0

	// MaxIterations is the loop bound compiled into the escape-time
	// kernels. A larger iteration bound would misclassify interior points.
	MaxIterations = 2000
)

var ErrInvalidValue = errors.New("view: invalid value")

type Palette int32

const (
	PaletteKhokhloma Palette = iota
	PaletteGzhel
	PaletteRainbow

	NumPalettes
)

func (p Palette) String() string {
	switch p {
	case PaletteKhokhloma:
		return "khokhloma"
	case PaletteGzhel:
		return "gzhel"
	case PaletteRainbow:
		return "rainbow"
	}
	return fmt.Sprintf("palette(%d)", int32(p))
}

func (p Palette) Valid() bool {
	return p >= 0 && p < NumPalettes
}

// ParsePalette accepts a palette name or its index.
func ParsePalette(s string) (Palette, error) {
	for p := Palette(0); p < NumPalettes; p++ {
		if s == p.String() || s == fmt.Sprint(int32(p)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown palette %q", ErrInvalidValue, s)
}

// State is the interactive view. The zero value is not useful; start from
// Default. Every setter keeps scale within [MinScale, MaxScale], rotation
// within [0,360), speed positive and the iteration bound within
// [1, MaxIterations].
//
// State is a plain value; copying it takes a consistent snapshot.
type State struct {
	center     mgl64.Vec2
	scale      float64
	rotation   float64
	time       float64
	speed      float64
	iterations int
	palette    Palette
	fractal    int
	playing    bool
}

func Default() State {
	return State{
		center:     mgl64.Vec2{-0.2, 0},
		scale:      1,
		speed:      1,
		iterations: 200,
		palette:    PaletteKhokhloma,
		playing:    true,
	}
}

func (s *State) Center() mgl64.Vec2 { return s.center }
func (s *State) Scale() float64      { return s.scale }
func (s *State) Speed() float64      { return s.speed }
func (s *State) Iterations() int     { return s.iterations }
func (s *State) Palette() Palette    { return s.palette }
func (s *State) Fractal() int        { return s.fractal }
func (s *State) Playing() bool       { return s.playing }

// Rotation returns the rotation in degrees, within [0,360).
func (s *State) Rotation() float64 { return s.rotation }

func (s *State) Radians() float64 { return s.rotation * math.Pi / 180 }

// Span is the width of the visible world plane.
func (s *State) Span() float64 { return BaseSpan * s.scale }

// Time is the accumulated animation clock in seconds.
func (s *State) Time() float64 { return s.time }

// SampledTime is the animation time handed to fractal formulas.
func (s *State) SampledTime() float64 { return s.time * s.speed }

func (s *State) SetCenter(c mgl64.Vec2) error {
	if !finite(c[0]) || !finite(c[1]) {
		return fmt.Errorf("%w: center %v", ErrInvalidValue, c)
	}
	s.center = c
	return nil
}

// SetScale clamps v into [MinScale, MaxScale].
func (s *State) SetScale(v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%w: scale %v", ErrInvalidValue, v)
	}
	s.scale = ClampScale(v)
	return nil
}

// SetRotation takes absolute degrees and normalizes them into [0,360).
func (s *State) SetRotation(deg float64) error {
	if !finite(deg) {
		return fmt.Errorf("%w: rotation %v", ErrInvalidValue, deg)
	}
	s.rotation = NormalizeDegrees(deg)
	return nil
}

func (s *State) SetSpeed(v float64) error {
	if !finite(v) || v <= 0 {
		return fmt.Errorf("%w: speed %v", ErrInvalidValue, v)
	}
	s.speed = v
	return nil
}

func (s *State) SetIterations(n int) error {
	if n <= 0 || n > MaxIterations {
		return fmt.Errorf("%w: iterations %d", ErrInvalidValue, n)
	}
	s.iterations = n
	return nil
}

func (s *State) SetPalette(p Palette) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidValue, p)
	}
	s.palette = p
	return nil
}

// SetFractal records the active fractal id. It does not consult a registry;
// interact.Controller is responsible for rejecting unknown ids.
func (s *State) SetFractal(id int) { s.fractal = id }

func (s *State) SetPlaying(playing bool) { s.playing = playing }

// Advance moves the animation clock forward by seconds when playing.
// It reports whether the clock moved.
func (s *State) Advance(seconds float64) bool {
	if !s.playing || !(seconds > 0) || math.IsInf(seconds, 0) {
		return false
	}
	s.time += seconds
	return true
}

// Apply sets the fields an Overrides carries. Invalid overrides leave the
// state untouched.
func (s *State) Apply(o Overrides) error {
	if err := o.Validate(); err != nil {
		return err
	}
	s.iterations = o.Iterations
	s.scale = o.Scale
	s.rotation = NormalizeDegrees(o.Rotation)
	s.center = o.Center
	return nil
}

// Overrides are the view defaults a fractal applies when it becomes active.
type Overrides struct {
	Iterations int
	Scale      float64
	Rotation   float64
	Center     mgl64.Vec2
}

func (o Overrides) Validate() error {
	switch {
	case o.Iterations <= 0 || o.Iterations > MaxIterations:
		return fmt.Errorf("%w: override iterations %d", ErrInvalidValue, o.Iterations)
	case !finite(o.Scale) || o.Scale < MinScale || o.Scale > MaxScale:
		return fmt.Errorf("%w: override scale %v", ErrInvalidValue, o.Scale)
	case !finite(o.Rotation):
		return fmt.Errorf("%w: override rotation %v", ErrInvalidValue, o.Rotation)
	case !finite(o.Center[0]) || !finite(o.Center[1]):
		return fmt.Errorf("%w: override center %v", ErrInvalidValue, o.Center)
	}
	return nil
}

func ClampScale(v float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, v))
}

func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -1e-17 + 360 rounds to 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
