package view

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms is the per-frame parameter block handed to the GPU kernel. The
// uniform tag names the GLSL uniform each field is uploaded to.
type Uniforms struct {
	Resolution [2]int32   `uniform:"u_resolution"`
	Center     mgl32.Vec2 `uniform:"u_center"`
	Span       float32    `uniform:"u_span"`
	Rotation   float32    `uniform:"u_rotation"`
	Time       float32    `uniform:"u_time"`
	Iterations int32      `uniform:"u_maxIter"`
	Palette    int32      `uniform:"u_palette"`
	Fractal    int32      `uniform:"u_fractal"`
}

// Frame is everything one render needs, derived from a single State copy so
// the GPU uniforms and the CPU transform cannot disagree.
type Frame struct {
	State     State
	Transform Transform
	Uniforms  Uniforms
}

func NewFrame(s State, width, height int) Frame {
	t := NewTransform(s, width, height)
	w, h := t.Size()
	c := s.Center()
	return Frame{
		State:     s,
		Transform: t,
		Uniforms: Uniforms{
			Resolution: [2]int32{int32(w), int32(h)},
			Center:     mgl32.Vec2{float32(c[0]), float32(c[1])},
			Span:       float32(s.Span()),
			Rotation:   float32(s.Radians()),
			Time:       float32(s.SampledTime()),
			Iterations: int32(s.Iterations()),
			Palette:    int32(s.Palette()),
			Fractal:    int32(s.Fractal()),
		},
	}
}
