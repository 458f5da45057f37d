package programs

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/artmorph/view"
)

//go:embed shaders/mandelbrot.glsl
var mandelbrotFragment string

func init() {
	register(Descriptor{
		ID:   20,
		Name: "Mandelbrot",
		Kind: GPU,
		Defaults: view.Overrides{
			Iterations: 300,
			Scale:      1,
			Center:     mgl64.Vec2{-0.6, 0},
		},
		Source: mandelbrotFragment,
		Func:   "colorMandelbrot",
		Pixel: func(u view.Uniforms, pos mgl64.Vec2) mgl32.Vec3 {
			c := complex(pos[0], pos[1])
			iterations := escapeTime(c, int(u.Iterations), func(z complex128) complex128 {
				return z*z + c
			})
			return escapeColour(u, iterations)
		},
	})
}
