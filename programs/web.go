package programs

import (
	_ "embed"
)

//go:embed shaders/web.glsl
var webFragment string

func init() {
	register(Descriptor{
		ID:       14,
		Name:     "3D Web",
		Kind:     GPU,
		Defaults: defaults(10, 1),
		Source:   webFragment,
		Func:     "colorWeb3D",
		Shape:    ShapeSlice,
	})
}
