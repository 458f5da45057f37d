// Package export renders fractals to images without a GPU.
package export

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/view"
	"golang.org/x/image/draw"
)

type Options struct {
	Width, Height int
	// Antialias is the 9-tap sample distance in pixels; 0 disables it.
	Antialias float64
	// Supersample renders at this multiple of the output size and scales
	// down.
	Supersample int
	// Seed seeds stochastic fractals.
	Seed int64
}

// Render draws the fractal selected in s at the size in opts. GPU fractals
// are evaluated through their CPU pixel function; ones without one fail with
// programs.ErrNoCPUImplementation. progress may be nil.
func Render(ctx context.Context, reg *programs.Registry, s view.State, opts Options, progress *Progress) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("export size %dx%d", opts.Width, opts.Height)
	}
	d, ok := reg.Lookup(s.Fractal())
	if !ok {
		return nil, fmt.Errorf("%w: %d", programs.ErrUnknownFractal, s.Fractal())
	}

	ss := max(1, opts.Supersample)
	w, h := opts.Width*ss, opts.Height*ss
	logger.Logger().Info("exporting",
		"fractal", d.Name,
		"width", opts.Width,
		"height", opts.Height,
		"supersample", ss,
		"antialias", opts.Antialias,
	)

	var (
		img *image.RGBA
		err error
	)
	switch d.Kind {
	case programs.CPU:
		img, err = drawCPU(d, s, w, h, float64(ss), opts.Seed)
		progress.finish()
	default:
		img, err = sampleGPU(ctx, d, s, w, h, opts.Antialias*float64(ss), progress)
	}
	if err != nil {
		return nil, err
	}

	if ss == 1 {
		return img, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out, nil
}

func sampleGPU(ctx context.Context, d programs.Descriptor, s view.State, w, h int, antialias float64, progress *Progress) (*image.RGBA, error) {
	img, err := d.Image(view.NewFrame(s, w, h), w, h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	if antialias > 0 {
		img = AntiAlias9x(img, antialias)
	}
	return buffer(ctx, img, progress)
}

func drawCPU(d programs.Descriptor, s view.State, w, h int, pixelRatio float64, seed int64) (*image.RGBA, error) {
	dc := gg.NewContext(w, h)
	defer dc.Close()

	dc.ClearWithColor(gg.RGBA{
		R: float64(programs.NullColour[0]),
		G: float64(programs.NullColour[1]),
		B: float64(programs.NullColour[2]),
		A: 1,
	})

	gen := programs.NewGenerators(seed).Activate(d.ID)
	t := view.NewTransform(s, w, h)
	if err := d.Draw(dc, s.Iterations(), pixelRatio, t, gen); err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}

	img := dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	dc := gg.NewContextForImage(img)
	defer dc.Close()
	return dc.EncodePNG(w)
}
