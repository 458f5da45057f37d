package programs

import (
	_ "embed"
)

//go:embed shaders/menger.glsl
var mengerFragment string

func init() {
	register(Descriptor{
		ID:       3,
		Name:     "Menger Sponge",
		Kind:     GPU,
		Defaults: unitDefaults(5),
		Source:   mengerFragment,
		Func:     "mengerDepth",
		Shape:    ShapeSlice,
		Output:   OutputDepth,
	})
}
