package programs

import (
	_ "embed"
	"math"
	"math/cmplx"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/artmorph/view"
)

//go:embed shaders/julia.glsl
var juliaFragment string

func init() {
	register(Descriptor{
		ID:   0,
		Name: "Julia Set",
		Kind: GPU,
		Defaults: view.Overrides{
			Iterations: 200,
			Scale:      1,
			Center:     mgl64.Vec2{-0.2, 0},
		},
		Source: juliaFragment,
		Func:   "colorJulia",
		Pixel:  juliaPixel,
	})
}

func juliaPixel(u view.Uniforms, pos mgl64.Vec2) mgl32.Vec3 {
	t := float64(u.Time) * 0.25
	c := complex(0.285+0.25*math.Cos(t*1.7), 0.01+0.25*math.Sin(t*1.2))
	z := complex(pos[0], pos[1])
	limit := min(int(u.Iterations), view.MaxIterations)

	i := 0
	escaped := false
	trap := 1e9
	for ; i < limit; i++ {
		z = z*z + c
		trap = math.Min(trap, math.Abs(real(z))+math.Abs(imag(z)))
		if real(z)*real(z)+imag(z)*imag(z) > 256 {
			escaped = true
			break
		}
	}

	colorT := 0.0
	if escaped {
		nu := float64(i) - math.Log2(math.Log2(math.Max(cmplx.Abs(z), 1.001))) + 4
		colorT = nu / float64(limit)
	}
	colorT = mgl64.Clamp(colorT+0.15*math.Exp(-3*trap), 0, 1)
	return PaletteColour(float32(colorT), view.Palette(u.Palette))
}
