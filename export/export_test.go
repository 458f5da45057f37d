package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/view"
)

func registry(t *testing.T) *programs.Registry {
	t.Helper()
	reg, err := programs.Builtin()
	if err != nil {
		t.Fatalf("builtin registry: %v", err)
	}
	return reg
}

func stateFor(t *testing.T, reg *programs.Registry, id int) view.State {
	t.Helper()
	d, ok := reg.Lookup(id)
	if !ok {
		t.Fatalf("fractal %d is not registered", id)
	}
	s := view.Default()
	if err := s.Apply(d.Defaults); err != nil {
		t.Fatal(err)
	}
	s.SetFractal(id)
	return s
}

func distinctColours(img *image.RGBA) int {
	seen := make(map[[4]uint8]bool)
	for i := 0; i < len(img.Pix); i += 4 {
		seen[[4]uint8(img.Pix[i:i+4])] = true
	}
	return len(seen)
}

func TestRenderJulia(t *testing.T) {
	reg := registry(t)
	var progress Progress

	img, err := Render(context.Background(), reg, stateFor(t, reg, 0), Options{Width: 120, Height: 80}, &progress)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 120, 80) {
		t.Errorf("expected bounds 120x80, got %v", got)
	}
	if progress.Fraction() != 1 {
		t.Errorf("expected progress 1, got %v", progress.Fraction())
	}
	if n := distinctColours(img); n < 10 {
		t.Errorf("expected a varied image, got %d colours", n)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			t.Fatalf("expected opaque pixels, got alpha %d at %d", img.Pix[i], i/4)
		}
	}
}

func TestRenderSupersample(t *testing.T) {
	reg := registry(t)
	img, err := Render(context.Background(), reg, stateFor(t, reg, 20), Options{
		Width:       40,
		Height:      30,
		Antialias:   0.5,
		Supersample: 2,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got != image.Pt(40, 30) {
		t.Errorf("expected 40x30 after downscale, got %v", got)
	}
}

func TestRenderCPUOverlay(t *testing.T) {
	reg := registry(t)
	for _, id := range []int{5, 6, 7, 8, 9} {
		img, err := Render(context.Background(), reg, stateFor(t, reg, id), Options{Width: 96, Height: 96, Seed: 3}, nil)
		if err != nil {
			t.Errorf("fractal %d: %v", id, err)
			continue
		}

		bg := channel(programs.NullColour[0])
		lit := 0
		for i := 0; i < len(img.Pix); i += 4 {
			if img.Pix[i] > bg+40 {
				lit++
			}
		}
		if lit == 0 {
			t.Errorf("fractal %d: expected strokes over the background", id)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	reg := registry(t)

	s := view.Default()
	s.SetFractal(99)
	if _, err := Render(context.Background(), reg, s, Options{Width: 8, Height: 8}, nil); !errors.Is(err, programs.ErrUnknownFractal) {
		t.Errorf("expected ErrUnknownFractal, got %v", err)
	}

	// Menger sponge only exists as a GPU kernel.
	if _, err := Render(context.Background(), reg, stateFor(t, reg, 3), Options{Width: 8, Height: 8}, nil); !errors.Is(err, programs.ErrNoCPUImplementation) {
		t.Errorf("expected ErrNoCPUImplementation, got %v", err)
	}

	if _, err := Render(context.Background(), reg, view.Default(), Options{}, nil); err == nil {
		t.Error("expected an error for an empty size")
	}
}

func TestRenderCancel(t *testing.T) {
	reg := registry(t)
	cause := errors.New("stop")
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(cause)

	_, err := Render(ctx, reg, stateFor(t, reg, 0), Options{Width: 200, Height: 200}, nil)
	if !errors.Is(err, cause) {
		t.Errorf("expected cancel cause, got %v", err)
	}
}

type constImage struct {
	bounds image.Rectangle
}

func (i constImage) Bounds() image.Rectangle { return i.bounds }
func (i constImage) GetPixel(p mgl64.Vec2) mgl32.Vec3 {
	if p[0] < 1 {
		return mgl32.Vec3{1, 1, 1}
	}
	return mgl32.Vec3{}
}

func TestAntiAlias9x(t *testing.T) {
	img := AntiAlias9x(constImage{image.Rect(0, 0, 4, 4)}, 1)

	// Three of the nine taps at x=1.5 land left of x=1.
	got := img.GetPixel(mgl64.Vec2{1.5, 1.5})
	want := mgl32.Vec3{1, 1, 1}.Mul(1.0 / 3)
	if !got.ApproxEqual(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestWritePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	src.Pix[0], src.Pix[1], src.Pix[2] = 10, 20, 30

	var buf bytes.Buffer
	if err := WritePNG(&buf, src); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	r, g, b, a := decoded.At(0, 0).RGBA()
	if diff := cmp.Diff([4]uint32{10, 20, 30, 0xff}, [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8}); diff != "" {
		t.Errorf("pixel (-want +got):\n%s", diff)
	}
	if decoded.Bounds() != src.Bounds() {
		t.Errorf("expected bounds %v, got %v", src.Bounds(), decoded.Bounds())
	}
}
