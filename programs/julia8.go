package programs

import (
	_ "embed"
)

//go:embed shaders/julia8.glsl
var julia8Fragment string

func init() {
	register(Descriptor{
		ID:       24,
		Name:     "Julia (8th power)",
		Kind:     GPU,
		Defaults: defaults(150, 0.8),
		Source:   julia8Fragment,
		Func:     "colorJulia8",
		Pixel: powerJulia(complex(-1.08475, 0), func(z complex128) complex128 {
			z2 := z * z
			z4 := z2 * z2
			return z4 * z4
		}),
	})
}
