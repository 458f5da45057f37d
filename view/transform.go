package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mapper is the set of coordinate callbacks handed to CPU-drawn fractals so
// their output lines up with the GPU layer.
type Mapper interface {
	// Forward maps a device pixel to the world plane.
	Forward(device mgl64.Vec2) mgl64.Vec2
	// Inverse maps a world point to a device pixel.
	Inverse(world mgl64.Vec2) mgl64.Vec2
	// WorldFromUnit maps the unit square (y up) onto the base view window.
	WorldFromUnit(unit mgl64.Vec2) mgl64.Vec2
	// DeviceFromUnit is Inverse(WorldFromUnit(unit)).
	DeviceFromUnit(unit mgl64.Vec2) mgl64.Vec2
}

// Transform maps between device pixels (origin top-left, y down) and the
// world plane (y up) for one view snapshot.
//
// Forward normalizes the pixel to [-1,1]², stretches x by the aspect ratio,
// rotates counter-clockwise by the view rotation, scales by half the span and
// translates by the center. Inverse undoes those steps in reverse order. The
// GLSL kernel's viewTransform performs the same steps.
type Transform struct {
	width, height float64
	aspect        float64
	center        mgl64.Vec2
	halfSpan      float64
	rot, unrot    mgl64.Mat2
}

var _ Mapper = Transform{}

func NewTransform(s State, width, height int) Transform {
	w := math.Max(1, float64(width))
	h := math.Max(1, float64(height))
	a := s.Radians()
	return Transform{
		width:    w,
		height:   h,
		aspect:   w / h,
		center:   s.Center(),
		halfSpan: s.Span() * 0.5,
		rot:      mgl64.Rotate2D(a),
		unrot:    mgl64.Rotate2D(-a),
	}
}

func (t Transform) Size() (width, height float64) { return t.width, t.height }
func (t Transform) Span() float64                 { return t.halfSpan * 2 }

func (t Transform) Forward(p mgl64.Vec2) mgl64.Vec2 {
	n := mgl64.Vec2{
		(p[0]/t.width*2 - 1) * t.aspect,
		1 - p[1]/t.height*2,
	}
	return t.rot.Mul2x1(n).Mul(t.halfSpan).Add(t.center)
}

func (t Transform) Inverse(w mgl64.Vec2) mgl64.Vec2 {
	n := t.unrot.Mul2x1(w.Sub(t.center).Mul(1 / t.halfSpan))
	return mgl64.Vec2{
		(n[0]/t.aspect + 1) * t.width / 2,
		(1 - n[1]) * t.height / 2,
	}
}

// ForwardLinear maps a device-space delta to a world-space delta: the
// rotation and scale part of Forward, without translation.
func (t Transform) ForwardLinear(d mgl64.Vec2) mgl64.Vec2 {
	n := mgl64.Vec2{
		d[0] / t.width * 2 * t.aspect,
		-d[1] / t.height * 2,
	}
	return t.rot.Mul2x1(n).Mul(t.halfSpan)
}

func (t Transform) WorldFromUnit(u mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{(u[0] - 0.5) * BaseSpan, (u[1] - 0.5) * BaseSpan}
}

func (t Transform) DeviceFromUnit(u mgl64.Vec2) mgl64.Vec2 {
	return t.Inverse(t.WorldFromUnit(u))
}
