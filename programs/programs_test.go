package programs

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stewi1014/artmorph/view"
)

func mustBuiltin(t *testing.T) *Registry {
	t.Helper()
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("builtin registry: %v", err)
	}
	return reg
}

func TestBuiltinRegistry(t *testing.T) {
	reg := mustBuiltin(t)

	want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 20, 21, 22, 23, 24}
	var got []int
	names := make(map[string]bool)
	for _, d := range reg.Descriptors() {
		got = append(got, d.ID)
		if names[d.Name] {
			t.Errorf("duplicate name %q", d.Name)
		}
		names[d.Name] = true
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("builtin ids (-want +got):\n%s", diff)
	}

	for _, id := range []int{5, 6, 7, 8, 9} {
		if d, _ := reg.Lookup(id); d.Kind != CPU {
			t.Errorf("expected %d (%s) to be a CPU fractal, got %v", id, d.Name, d.Kind)
		}
	}

	for _, want := range []Descriptor{
		{ID: 15, Name: "3D Bending Star", Func: "colorStar3D", Shape: ShapeRay, Defaults: defaults(64, 1)},
		{ID: 16, Name: "Energy Core", Func: "colorEnergyCore", Shape: ShapePlane, Defaults: defaults(50, 1)},
	} {
		d, ok := reg.Lookup(want.ID)
		if !ok {
			t.Errorf("expected %s to be registered", want.Name)
			continue
		}
		if d.Name != want.Name || d.Kind != GPU || d.Func != want.Func || d.Shape != want.Shape || d.Defaults != want.Defaults {
			t.Errorf("unexpected descriptor %d: %s %v %s %v %+v", d.ID, d.Name, d.Kind, d.Func, d.Shape, d.Defaults)
		}
		if !strings.Contains(d.Source, "u_maxIter") {
			t.Errorf("%s: expected the kernel to honour the iteration bound", d.Name)
		}
	}

	julia, ok := reg.Lookup(0)
	if !ok {
		t.Fatal("julia is not registered")
	}
	if julia.Defaults.Center != (mgl64.Vec2{-0.2, 0}) || julia.Defaults.Iterations != 200 {
		t.Errorf("unexpected julia defaults %+v", julia.Defaults)
	}
}

func TestNewRegistryRejects(t *testing.T) {
	good := Descriptor{
		ID:       1,
		Name:     "good",
		Kind:     GPU,
		Defaults: defaults(10, 1),
		Source:   "vec3 good(vec2 z) { return vec3(z, 0.0); }",
		Func:     "good",
	}
	draw := func(*gg.Context, int, float64, view.Mapper, *GeneratorState) error { return nil }

	tests := []struct {
		name   string
		descs  func() []Descriptor
		target error
	}{
		{"duplicate id", func() []Descriptor {
			dup := good
			dup.Name = "other"
			return []Descriptor{good, dup}
		}, nil},
		{"zero iterations", func() []Descriptor {
			d := good
			d.Defaults.Iterations = 0
			return []Descriptor{d}
		}, view.ErrInvalidValue},
		{"scale out of range", func() []Descriptor {
			d := good
			d.Defaults.Scale = 50
			return []Descriptor{d}
		}, view.ErrInvalidValue},
		{"empty name", func() []Descriptor {
			d := good
			d.Name = " "
			return []Descriptor{d}
		}, nil},
		{"missing function", func() []Descriptor {
			d := good
			d.Func = ""
			return []Descriptor{d}
		}, nil},
		{"function not in source", func() []Descriptor {
			d := good
			d.Func = "missing"
			return []Descriptor{d}
		}, nil},
		{"cpu without draw", func() []Descriptor {
			return []Descriptor{{ID: 2, Name: "cpu", Kind: CPU, Defaults: defaults(1, 1)}}
		}, nil},
		{"negative id", func() []Descriptor {
			d := good
			d.ID = -4
			return []Descriptor{d}
		}, nil},
		{"unknown kind", func() []Descriptor {
			return []Descriptor{{ID: 2, Name: "odd", Kind: Kind(9), Defaults: defaults(1, 1), Draw: draw}}
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.descs()...)
			if err == nil {
				t.Fatalf("expected an error, got registry with %d descriptors", reg.Len())
			}
			if !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("expected ErrInvalidDescriptor, got %v", err)
			}
			var de *DescriptorError
			if !errors.As(err, &de) {
				t.Errorf("expected *DescriptorError, got %T", err)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v in chain, got %v", tt.target, err)
			}
		})
	}

	if _, err := NewRegistry(good, Descriptor{ID: 2, Name: "cpu", Kind: CPU, Defaults: defaults(1, 1), Draw: draw}); err != nil {
		t.Errorf("expected valid registry, got %v", err)
	}
}

func TestResolveFallback(t *testing.T) {
	reg := mustBuiltin(t)

	if d := reg.Resolve(13); d.ID != 13 {
		t.Errorf("expected descriptor 13, got %d", d.ID)
	}
	d := reg.Resolve(999)
	if d.ID != Fallback.ID {
		t.Fatalf("expected fallback for unknown id, got %d", d.ID)
	}
	if got := d.Pixel(view.Uniforms{}, mgl64.Vec2{}); got != NullColour {
		t.Errorf("expected fallback colour %v, got %v", NullColour, got)
	}
}

func TestComposeDispatch(t *testing.T) {
	reg := mustBuiltin(t)
	src := Compose(reg, Features{})

	if !strings.HasPrefix(src, "#version 330 core") {
		t.Errorf("expected kernel to start with the version directive")
	}

	last := -1
	for _, d := range reg.Descriptors() {
		clause := DispatchClause(d)
		switch d.Kind {
		case GPU:
			if n := strings.Count(src, clause); n != 1 {
				t.Errorf("expected dispatch clause for %d exactly once, got %d", d.ID, n)
			}
			at := strings.Index(src, clause)
			if at < last {
				t.Errorf("dispatch clause for %d out of registry order", d.ID)
			}
			last = at
		case CPU:
			if strings.Contains(src, clause) {
				t.Errorf("CPU fractal %d must not have a dispatch clause", d.ID)
			}
		}
	}

	if !strings.Contains(src, fmt.Sprintf("const int MAX_ITER = %d;", view.MaxIterations)) {
		t.Error("expected the kernel loop bound to match view.MaxIterations")
	}

	if !strings.Contains(src, "return vec3(0.1, 0.1, 0.1);\n}") {
		t.Error("expected dispatch to end with the neutral background")
	}
	if strings.Contains(src, "smoothstep(1.2, 0.2") {
		t.Error("vignette emitted without being requested")
	}
	if !strings.Contains(Compose(reg, Features{Vignette: true}), "smoothstep(1.2, 0.2") {
		t.Error("expected vignette stage")
	}
}

func TestDispatchClauseShapes(t *testing.T) {
	tests := []struct {
		d    Descriptor
		want string
	}{
		{Descriptor{ID: 3, Func: "f"}, "if (u_fractal == 3) return f(z);"},
		{Descriptor{ID: 4, Func: "f", Shape: ShapeSlice, Output: OutputDepth}, "if (u_fractal == 4) return getPalette(f(sliceOf(z)), u_palette);"},
		{Descriptor{ID: 12, Func: "g", Shape: ShapeRay}, "if (u_fractal == 12) return g(rayOf(z));"},
	}
	for _, tt := range tests {
		if got := DispatchClause(tt.d); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestComposerCache(t *testing.T) {
	reg := mustBuiltin(t)
	var c Composer

	first := c.Source(reg, Features{})
	second := c.Source(reg, Features{})
	if first != second || c.Builds() != 1 {
		t.Errorf("expected one build for repeated requests, got %d", c.Builds())
	}

	c.Source(reg, Features{Vignette: true})
	if c.Builds() != 2 {
		t.Errorf("expected rebuild on feature change, got %d builds", c.Builds())
	}

	other, err := NewRegistry(reg.Kind(GPU)...)
	if err != nil {
		t.Fatal(err)
	}
	c.Source(other, Features{Vignette: true})
	if c.Builds() != 3 {
		t.Errorf("expected rebuild on registry change, got %d builds", c.Builds())
	}
}

func TestFallbackSource(t *testing.T) {
	if !strings.Contains(FallbackSource, "outputColor = vec4(vec3(0.1, 0.1, 0.1), 1.0);") {
		t.Errorf("unexpected fallback kernel:\n%s", FallbackSource)
	}
}

func TestEscapeTimePixels(t *testing.T) {
	reg := mustBuiltin(t)
	mandelbrot, _ := reg.Lookup(20)
	u := view.Uniforms{Iterations: 100, Palette: int32(view.PaletteGzhel)}

	if got := mandelbrot.Pixel(u, mgl64.Vec2{0, 0}); got != NullColour {
		t.Errorf("expected origin inside the set, got %v", got)
	}
	// Escapes before the first step.
	if got, want := mandelbrot.Pixel(u, mgl64.Vec2{3, 3}), PaletteColour(0, view.PaletteGzhel); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}

	for _, id := range []int{0, 21, 22, 23, 24} {
		d, _ := reg.Lookup(id)
		c := d.Pixel(u, mgl64.Vec2{10, 10})
		for i := range c {
			if c[i] < 0 || c[i] > 1 {
				t.Errorf("%s: colour component out of range: %v", d.Name, c)
			}
		}
	}
}

func TestInteriorUpToMaxIterations(t *testing.T) {
	reg := mustBuiltin(t)

	// At this time the Julia constant lies in the main cardioid, so the
	// origin never escapes.
	julia, _ := reg.Lookup(0)
	u := view.Uniforms{Time: float32(math.Pi / 1.7 / 0.25), Palette: int32(view.PaletteKhokhloma)}
	u.Iterations = 499
	interior := julia.Pixel(u, mgl64.Vec2{0, 0})
	if interior[0] > 0.2 {
		t.Fatalf("expected a dark interior colour, got %v", interior)
	}
	for _, n := range []int32{500, 501, view.MaxIterations} {
		u.Iterations = n
		got := julia.Pixel(u, mgl64.Vec2{0, 0})
		if diff := cmp.Diff(interior, got, cmpopts.EquateApprox(0, 1e-3)); diff != "" {
			t.Errorf("julia origin at %d iterations (-499 +%d):\n%s", n, n, diff)
		}
	}

	mandelbrot, _ := reg.Lookup(20)
	for _, n := range []int32{499, 500, 501, view.MaxIterations} {
		u := view.Uniforms{Iterations: n}
		if got := mandelbrot.Pixel(u, mgl64.Vec2{-0.1, 0.1}); got != NullColour {
			t.Errorf("expected point inside the mandelbrot set at %d iterations, got %v", n, got)
		}
	}
}

func TestFoldDepth(t *testing.T) {
	reg := mustBuiltin(t)
	carpet, _ := reg.Lookup(2)
	u := view.Uniforms{Iterations: 6, Palette: int32(view.PaletteKhokhloma)}

	// The centre square is removed on the first fold.
	if got, want := carpet.Pixel(u, mgl64.Vec2{0.5, 0.5}), PaletteColour(0, view.PaletteKhokhloma); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	// The corner survives every fold.
	if got, want := carpet.Pixel(u, mgl64.Vec2{0, 0}), PaletteColour(1, view.PaletteKhokhloma); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPaletteStops(t *testing.T) {
	tests := []struct {
		t    float32
		p    view.Palette
		want mgl32.Vec3
	}{
		{0, view.PaletteKhokhloma, mgl32.Vec3{0.02, 0, 0}},
		{1, view.PaletteKhokhloma, mgl32.Vec3{1, 0.9, 0.4}},
		{-3, view.PaletteGzhel, mgl32.Vec3{0.02, 0.05, 0.12}},
		{1, view.PaletteGzhel, mgl32.Vec3{0.92, 0.96, 1}},
	}
	for _, tt := range tests {
		if got := PaletteColour(tt.t, tt.p); !got.ApproxEqualThreshold(tt.want, 1e-6) {
			t.Errorf("%v at %v: expected %v, got %v", tt.p, tt.t, tt.want, got)
		}
	}

	// Hue 0 is pure red at 85% saturation.
	if got := PaletteColour(0, view.PaletteRainbow); !got.ApproxEqualThreshold(mgl32.Vec3{1, 0.15, 0.15}, 1e-5) {
		t.Errorf("unexpected rainbow start %v", got)
	}
}

func TestImage(t *testing.T) {
	reg := mustBuiltin(t)
	s := view.Default()
	f := view.NewFrame(s, 64, 48)

	julia, _ := reg.Lookup(0)
	img, err := julia.Image(f, 64, 48)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 64, 48) {
		t.Errorf("expected 64x48 bounds, got %v", got)
	}

	menger, _ := reg.Lookup(3)
	if _, err := menger.Image(f, 64, 48); !errors.Is(err, ErrNoCPUImplementation) {
		t.Errorf("expected ErrNoCPUImplementation, got %v", err)
	}
	koch, _ := reg.Lookup(5)
	if _, err := koch.Image(f, 64, 48); !errors.Is(err, ErrNoCPUImplementation) {
		t.Errorf("expected ErrNoCPUImplementation for CPU fractal, got %v", err)
	}
}

func TestExpand(t *testing.T) {
	if got := expand("F", map[rune]string{'F': "F+F--F+F"}, 1); got != "F+F--F+F" {
		t.Errorf("unexpected koch generation %q", got)
	}
	if got := expand("X", treeRules, 0); got != "X" {
		t.Errorf("expected axiom unchanged, got %q", got)
	}
	if got := strings.Count(expand("F", map[rune]string{'F': "F+F--F+F"}, 3), "F"); got != 64 {
		t.Errorf("expected 4^3 segments, got %d", got)
	}
}

func litPixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r > 0x4000 {
				n++
			}
		}
	}
	return n
}

func TestOverlaysDraw(t *testing.T) {
	reg := mustBuiltin(t)
	gens := NewGenerators(1)

	s := view.Default()
	_ = s.SetCenter(mgl64.Vec2{})
	tf := view.NewTransform(s, 160, 160)

	for _, d := range reg.Kind(CPU) {
		t.Run(d.Name, func(t *testing.T) {
			dc := gg.NewContext(160, 160)
			dc.ClearWithColor(gg.RGBA{R: 0.1, G: 0.1, B: 0.1, A: 1})

			if err := d.Draw(dc, d.Defaults.Iterations, 1, tf, gens.Activate(d.ID)); err != nil {
				t.Fatalf("draw: %v", err)
			}
			if n := litPixels(dc.Image()); n == 0 {
				t.Error("expected the overlay to draw something")
			}
		})
	}
}

func TestFernGenerator(t *testing.T) {
	s := view.Default()
	tf := view.NewTransform(s, 64, 64)
	gens := NewGenerators(7)

	gen := gens.Activate(9)
	dc := gg.NewContext(64, 64)
	if err := drawFern(dc, 10, 1, tf, gen); err != nil {
		t.Fatal(err)
	}
	after := gen.Point
	if !gen.Ready || gen.Frames != 1 {
		t.Errorf("expected initialised generator after one frame, got %+v", gen)
	}
	if err := drawFern(dc, 10, 1, tf, gen); err != nil {
		t.Fatal(err)
	}
	if gen.Point == after {
		t.Error("expected the chaos game to continue between frames")
	}

	// Re-activation starts the sequence over.
	again := gens.Activate(9)
	if again == gen || again.Ready {
		t.Error("expected a fresh generator on re-activation")
	}
	if err := drawFern(gg.NewContext(64, 64), 10, 1, tf, again); err != nil {
		t.Fatal(err)
	}
	if again.Point != after {
		t.Errorf("expected same first frame after reset, got %v and %v", again.Point, after)
	}

	if gens.State(9) != again {
		t.Error("expected State to return the active generator")
	}

	if err := drawFern(dc, 10, 1, tf, nil); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("expected ErrNoGenerator, got %v", err)
	}
}

func TestFernPoints(t *testing.T) {
	tests := map[int]int{1: 2000, 10: 2000, 50: 10000, 200: 40000, 5000: 40000}
	for iter, want := range tests {
		if got := FernPoints(iter); got != want {
			t.Errorf("%d iterations: expected %d points, got %d", iter, want, got)
		}
	}
}
