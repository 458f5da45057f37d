package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/view"
	"golang.org/x/image/draw"
)

// FullscreenVertices is the vertex count of the single triangle covering the
// viewport.
const FullscreenVertices = 3

// FrameRenderer draws a frame with the composed GPU kernel and, for CPU
// fractals, an overlay drawn with gg on top of it.
type FrameRenderer struct {
	device   Device
	reg      *programs.Registry
	features programs.Features
	gens     *programs.Generators
	composer programs.Composer

	program  Program
	fallback bool
	unknown  map[int]bool
	overlay  *gg.Context
}

func NewFrameRenderer(device Device, reg *programs.Registry, features programs.Features, gens *programs.Generators) *FrameRenderer {
	return &FrameRenderer{
		device:   device,
		reg:      reg,
		features: features,
		gens:     gens,
		unknown:  make(map[int]bool),
	}
}

// Fallback reports whether the renderer is drawing the fallback kernel
// because the composed one was rejected.
func (r *FrameRenderer) Fallback() bool { return r.fallback }

// Composer exposes the kernel cache, mostly for its build count.
func (r *FrameRenderer) Composer() *programs.Composer { return &r.composer }

// Rebuild compiles the kernel anew. A kernel the device rejects is replaced
// by programs.FallbackSource; ErrNoProgram is returned if that fails too.
func (r *FrameRenderer) Rebuild() error {
	if r.program != nil {
		r.program.Delete()
		r.program = nil
	}

	p, err := r.device.Compile(r.composer.Source(r.reg, r.features))
	if err == nil {
		r.program, r.fallback = p, false
		return nil
	}

	var compileErr *CompileError
	var linkErr *LinkError
	if !errors.As(err, &compileErr) && !errors.As(err, &linkErr) {
		return err
	}
	logger.Logger().Warn("fractal kernel rejected, drawing fallback", "err", err)

	p, fallbackErr := r.device.Compile(programs.FallbackSource)
	if fallbackErr != nil {
		return fmt.Errorf("%w: %w", ErrNoProgram, errors.Join(err, fallbackErr))
	}
	r.program, r.fallback = p, true
	return nil
}

func (r *FrameRenderer) Render(s view.State, width, height int, pixelRatio float64) error {
	if r.program == nil {
		if err := r.Rebuild(); err != nil {
			return err
		}
	}

	f := view.NewFrame(s, width, height)
	d := r.resolve(s.Fractal())

	if err := r.device.Draw(r.program, f.Uniforms, FullscreenVertices); err != nil {
		return err
	}
	if d.Kind != programs.CPU {
		return nil
	}

	img, err := r.drawOverlay(d, f, pixelRatio)
	if err != nil {
		logger.Logger().Error("overlay failed", "fractal", d.Name, "err", err)
		return nil
	}
	return r.device.Overlay(img)
}

func (r *FrameRenderer) resolve(id int) programs.Descriptor {
	d := r.reg.Resolve(id)
	if d.ID == programs.Fallback.ID && !r.unknown[id] {
		r.unknown[id] = true
		logger.Logger().Warn("drawing fallback for fractal", "id", id, "err", programs.ErrUnknownFractal)
	}
	return d
}

func (r *FrameRenderer) drawOverlay(d programs.Descriptor, f view.Frame, pixelRatio float64) (*image.RGBA, error) {
	w, h := f.Transform.Size()
	if r.overlay == nil || r.overlay.Width() != int(w) || r.overlay.Height() != int(h) {
		if r.overlay != nil {
			r.overlay.Close()
		}
		r.overlay = gg.NewContext(int(w), int(h))
	}
	r.overlay.Clear()

	if err := d.Draw(r.overlay, f.State.Iterations(), pixelRatio, f.Transform, r.gens.State(d.ID)); err != nil {
		return nil, err
	}
	return toRGBA(r.overlay.Image()), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

// Release frees the program and the device.
func (r *FrameRenderer) Release() {
	if r.program != nil {
		r.program.Delete()
		r.program = nil
	}
	if r.overlay != nil {
		r.overlay.Close()
		r.overlay = nil
	}
	r.device.Release()
}
