// Package programs is the fractal registry: one descriptor per fractal,
// either a GLSL color function evaluated by the shared GPU kernel or a Go
// routine drawing vectors on the CPU layer.
package programs

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/stewi1014/artmorph/view"
)

var (
	ErrInvalidDescriptor   = errors.New("invalid fractal descriptor")
	ErrUnknownFractal      = errors.New("unknown fractal id")
	ErrNoCPUImplementation = errors.New("fractal does not have a CPU implementation")
	ErrNoGenerator         = errors.New("stateful fractal drawn without generator state")
)

var (
	// NullColour is the neutral background drawn for ids without a GPU
	// function, CPU fractals included.
	NullColour = mgl32.Vec3{0.1, 0.1, 0.1}
)

type Kind int

const (
	GPU Kind = iota
	CPU
)

func (k Kind) String() string {
	switch k {
	case GPU:
		return "gpu"
	case CPU:
		return "cpu"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Shape is the kind of point a GPU color function takes.
type Shape int

const (
	// ShapePlane passes the world-plane point as vec2.
	ShapePlane Shape = iota
	// ShapeSlice passes vec3(z, slice) where slice drifts with time.
	ShapeSlice
	// ShapeRay passes the view-relative direction for raymarchers.
	ShapeRay
)

// Output is what a GPU color function returns.
type Output int

const (
	// OutputColor functions return vec3.
	OutputColor Output = iota
	// OutputDepth functions return a float in [0,1] looked up in the palette.
	OutputDepth
)

// PixelFunc is the CPU rendition of a GPU color function, used for headless
// export. z is the world-plane point.
type PixelFunc func(u view.Uniforms, z mgl64.Vec2) mgl32.Vec3

// DrawFunc draws a CPU fractal on dc. m maps between device pixels and the
// world plane for the current frame; gen is the fractal's generator state.
type DrawFunc func(dc *gg.Context, iterations int, pixelRatio float64, m view.Mapper, gen *GeneratorState) error

type Descriptor struct {
	ID       int
	Name     string
	Kind     Kind
	Defaults view.Overrides

	// GPU
	Source string
	Func   string
	Shape  Shape
	Output Output
	Pixel  PixelFunc

	// CPU
	Draw DrawFunc
}

// Fallback is what unknown ids resolve to: a uniform background.
var Fallback = Descriptor{
	ID:   -1,
	Name: "Fallback",
	Kind: GPU,
	Pixel: func(view.Uniforms, mgl64.Vec2) mgl32.Vec3 {
		return NullColour
	},
	Defaults: view.Overrides{Iterations: 1, Scale: 1},
}

// Image returns the descriptor evaluated on the CPU over a width×height
// surface for frame f.
func (d *Descriptor) Image(f view.Frame, width, height int) (Image, error) {
	if d.Kind != GPU || d.Pixel == nil {
		return nil, ErrNoCPUImplementation
	}

	return &programImage{
		frame:     view.NewFrame(f.State, width, height),
		bounds:    image.Rect(0, 0, width, height),
		pixelFunc: d.Pixel,
	}, nil
}

// Image is a fractal sampled at device pixel positions.
type Image interface {
	GetPixel(device mgl64.Vec2) mgl32.Vec3
	Bounds() image.Rectangle
}

type programImage struct {
	frame     view.Frame
	bounds    image.Rectangle
	pixelFunc PixelFunc
}

func (i *programImage) GetPixel(device mgl64.Vec2) mgl32.Vec3 {
	return i.pixelFunc(i.frame.Uniforms, i.frame.Transform.Forward(device))
}

func (i *programImage) Bounds() image.Rectangle {
	return i.bounds
}

var builtin []Descriptor

func register(d Descriptor) {
	builtin = append(builtin, d)
}

var builtinRegistry = sync.OnceValues(func() (*Registry, error) {
	return NewRegistry(slices.Clone(builtin)...)
})

// Builtin returns the registry of every fractal shipped with artmorph.
func Builtin() (*Registry, error) {
	return builtinRegistry()
}

func defaults(iterations int, scale float64) view.Overrides {
	return view.Overrides{Iterations: iterations, Scale: scale}
}
