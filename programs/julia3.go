package programs

import (
	_ "embed"
)

//go:embed shaders/julia3.glsl
var julia3Fragment string

func init() {
	register(Descriptor{
		ID:       21,
		Name:     "Julia (cubic)",
		Kind:     GPU,
		Defaults: defaults(150, 1),
		Source:   julia3Fragment,
		Func:     "colorJulia3",
		Pixel: powerJulia(complex(0.08394, 0.77007), func(z complex128) complex128 {
			return z * z * z
		}),
	})
}
