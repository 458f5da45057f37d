package programs

import (
	_ "embed"
)

//go:embed shaders/morph.glsl
var morphFragment string

func init() {
	register(Descriptor{
		ID:       11,
		Name:     "Dynamic Morph",
		Kind:     GPU,
		Defaults: defaults(8, 1),
		Source:   morphFragment,
		Func:     "colorDynamicMorph",
		Shape:    ShapeSlice,
	})
}
