package view

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
)

func randomState(r *rand.Rand) State {
	s := Default()
	_ = s.SetCenter(mgl64.Vec2{r.Float64()*20 - 10, r.Float64()*20 - 10})
	_ = s.SetScale(MinScale + r.Float64()*(MaxScale-MinScale))
	_ = s.SetRotation(r.Float64() * 360)
	return s
}

func near(a, b mgl64.Vec2, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}

func TestTransformRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		s := randomState(r)
		w, h := 1+r.Intn(3000), 1+r.Intn(3000)
		tf := NewTransform(s, w, h)

		p := mgl64.Vec2{r.Float64() * float64(w), r.Float64() * float64(h)}
		if got := tf.Inverse(tf.Forward(p)); !near(got, p, 1e-6) {
			t.Fatalf("inverse(forward(%v)) = %v for %+v (%dx%d)", p, got, s, w, h)
		}

		q := s.Center().Add(mgl64.Vec2{r.Float64()*4 - 2, r.Float64()*4 - 2})
		if got := tf.Forward(tf.Inverse(q)); !near(got, q, 1e-6) {
			t.Fatalf("forward(inverse(%v)) = %v for %+v (%dx%d)", q, got, s, w, h)
		}
	}
}

func TestTransformCenterPixel(t *testing.T) {
	s := Default()
	_ = s.SetRotation(73)
	tf := NewTransform(s, 800, 600)
	got := tf.Forward(mgl64.Vec2{400, 300})
	if !near(got, s.Center(), 1e-12) {
		t.Errorf("expected surface center to map to %v, got %v", s.Center(), got)
	}
}

func TestTransformAxes(t *testing.T) {
	s := Default()
	_ = s.SetCenter(mgl64.Vec2{0, 0})
	tf := NewTransform(s, 200, 100)

	// right edge, vertical middle: x = aspect * span/2
	if got := tf.Forward(mgl64.Vec2{200, 50}); !near(got, mgl64.Vec2{3, 0}, 1e-12) {
		t.Errorf("expected right edge at (3,0), got %v", got)
	}
	// top edge maps to positive y
	if got := tf.Forward(mgl64.Vec2{100, 0}); !near(got, mgl64.Vec2{0, 1.5}, 1e-12) {
		t.Errorf("expected top edge at (0,1.5), got %v", got)
	}

	_ = s.SetRotation(90)
	tf = NewTransform(s, 200, 100)
	if got := tf.Forward(mgl64.Vec2{200, 50}); !near(got, mgl64.Vec2{0, 3}, 1e-12) {
		t.Errorf("expected 90° rotation to turn +x into +y, got %v", got)
	}
}

func TestForwardLinearHasNoTranslation(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		s := randomState(r)
		tf := NewTransform(s, 640, 480)
		p := mgl64.Vec2{r.Float64() * 640, r.Float64() * 480}
		d := mgl64.Vec2{r.Float64()*100 - 50, r.Float64()*100 - 50}
		want := tf.Forward(p.Add(d)).Sub(tf.Forward(p))
		if got := tf.ForwardLinear(d); !near(got, want, 1e-9) {
			t.Fatalf("ForwardLinear(%v): expected %v, got %v", d, want, got)
		}
	}
}

func TestWorldFromUnit(t *testing.T) {
	tf := NewTransform(Default(), 100, 100)
	if got := tf.WorldFromUnit(mgl64.Vec2{0.5, 0.5}); !near(got, mgl64.Vec2{}, 1e-12) {
		t.Errorf("expected unit center at origin, got %v", got)
	}
	if got := tf.WorldFromUnit(mgl64.Vec2{1, 1}); !near(got, mgl64.Vec2{1.5, 1.5}, 1e-12) {
		t.Errorf("expected unit corner at (1.5,1.5), got %v", got)
	}
}

func TestZeroSizedSurface(t *testing.T) {
	tf := NewTransform(Default(), 0, 0)
	p := tf.Forward(mgl64.Vec2{0, 0})
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		t.Errorf("expected finite mapping for empty surface, got %v", p)
	}
}

func TestStateSetters(t *testing.T) {
	s := Default()

	for _, v := range []float64{1e9, math.Inf(1)} {
		_ = s.SetScale(v)
		if s.Scale() != MaxScale {
			t.Errorf("SetScale(%v): expected %v, got %v", v, MaxScale, s.Scale())
		}
	}
	for _, v := range []float64{-5, 0, 1e-9} {
		_ = s.SetScale(v)
		if s.Scale() != MinScale {
			t.Errorf("SetScale(%v): expected %v, got %v", v, MinScale, s.Scale())
		}
	}
	if err := s.SetScale(math.NaN()); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for NaN scale, got %v", err)
	}

	rotations := map[float64]float64{0: 0, 360: 0, 370: 10, -90: 270, 719.5: 359.5}
	for in, want := range rotations {
		_ = s.SetRotation(in)
		if math.Abs(s.Rotation()-want) > 1e-9 {
			t.Errorf("SetRotation(%v): expected %v, got %v", in, want, s.Rotation())
		}
	}

	if err := s.SetSpeed(0); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected zero speed to be rejected, got %v", err)
	}
	if s.Speed() != 1 {
		t.Errorf("rejected speed changed state: %v", s.Speed())
	}
	if err := s.SetIterations(-1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected negative iterations to be rejected, got %v", err)
	}
	if err := s.SetIterations(MaxIterations); err != nil {
		t.Errorf("expected MaxIterations to be accepted, got %v", err)
	}
	if err := s.SetIterations(MaxIterations + 1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected iterations above MaxIterations to be rejected, got %v", err)
	}
	if s.Iterations() != MaxIterations {
		t.Errorf("rejected iterations changed state: %v", s.Iterations())
	}
	if err := s.SetPalette(NumPalettes); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected unknown palette to be rejected, got %v", err)
	}
}

func TestAdvance(t *testing.T) {
	s := Default()
	_ = s.SetSpeed(2)
	if !s.Advance(0.5) {
		t.Fatal("expected playing clock to advance")
	}
	if s.Time() != 0.5 || s.SampledTime() != 1 {
		t.Errorf("expected time 0.5 sampled 1, got %v sampled %v", s.Time(), s.SampledTime())
	}

	s.SetPlaying(false)
	if s.Advance(1) {
		t.Error("expected paused clock not to advance")
	}
	if s.Time() != 0.5 {
		t.Errorf("paused clock moved to %v", s.Time())
	}
}

func TestApplyOverrides(t *testing.T) {
	s := Default()
	o := Overrides{Iterations: 9, Scale: 1.2, Rotation: -30, Center: mgl64.Vec2{1, 2}}
	if err := s.Apply(o); err != nil {
		t.Fatal(err)
	}
	if s.Iterations() != 9 || s.Scale() != 1.2 || s.Rotation() != 330 || s.Center() != (mgl64.Vec2{1, 2}) {
		t.Errorf("overrides not applied: %+v", s)
	}

	before := s
	if err := s.Apply(Overrides{Iterations: 0, Scale: 1}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected invalid override error, got %v", err)
	}
	if err := s.Apply(Overrides{Iterations: MaxIterations + 1, Scale: 1}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected override above MaxIterations to be rejected, got %v", err)
	}
	if s != before {
		t.Error("invalid override modified the state")
	}
}

func TestNewFrameUniforms(t *testing.T) {
	s := Default()
	_ = s.SetRotation(180)
	_ = s.SetScale(2)
	_ = s.SetSpeed(3)
	_ = s.SetPalette(PaletteRainbow)
	s.SetFractal(12)
	s.Advance(2)

	f := NewFrame(s, 320, 200)
	want := Uniforms{
		Resolution: [2]int32{320, 200},
		Center:     mgl32.Vec2{-0.2, 0},
		Span:       6,
		Rotation:   math.Pi,
		Time:       6,
		Iterations: 200,
		Palette:    2,
		Fractal:    12,
	}
	if diff := cmp.Diff(want, f.Uniforms); diff != "" {
		t.Errorf("uniforms mismatch (-want +got):\n%s", diff)
	}
	if f.Transform.Span() != float64(f.Uniforms.Span) {
		t.Errorf("transform span %v disagrees with uniform span %v", f.Transform.Span(), f.Uniforms.Span)
	}
}

func TestParsePalette(t *testing.T) {
	for _, in := range []string{"gzhel", "1"} {
		p, err := ParsePalette(in)
		if err != nil || p != PaletteGzhel {
			t.Errorf("ParsePalette(%q): expected gzhel, got %v (%v)", in, p, err)
		}
	}
	if _, err := ParsePalette("sepia"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}
