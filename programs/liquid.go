package programs

import (
	_ "embed"
)

//go:embed shaders/liquid.glsl
var liquidFragment string

func init() {
	register(Descriptor{
		ID:       13,
		Name:     "Liquid Gradient",
		Kind:     GPU,
		Defaults: defaults(30, 1),
		Source:   liquidFragment,
		Func:     "colorLiquid",
	})
}
