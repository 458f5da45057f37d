package programs

import (
	_ "embed"
)

//go:embed shaders/julia6.glsl
var julia6Fragment string

func init() {
	register(Descriptor{
		ID:       23,
		Name:     "Julia (6th power)",
		Kind:     GPU,
		Defaults: defaults(150, 0.8),
		Source:   julia6Fragment,
		Func:     "colorJulia6",
		Pixel: powerJulia(complex(-0.50517, -0.35667), func(z complex128) complex128 {
			z3 := z * z * z
			return z3 * z3
		}),
	})
}
