package programs

import (
	_ "embed"
)

//go:embed shaders/julia4_8.glsl
var julia4_8Fragment string

func init() {
	register(Descriptor{
		ID:       22,
		Name:     "Julia (4th + 8th power)",
		Kind:     GPU,
		Defaults: defaults(150, 0.8),
		Source:   julia4_8Fragment,
		Func:     "colorJulia4_8",
		Pixel: powerJulia(complex(-0.98487460613250732421875, 0), func(z complex128) complex128 {
			z4 := z * z * z * z
			return z4 + z4*z4
		}),
	})
}
