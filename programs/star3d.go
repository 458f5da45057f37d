package programs

import (
	_ "embed"
)

//go:embed shaders/star3d.glsl
var star3DFragment string

func init() {
	register(Descriptor{
		ID:       15,
		Name:     "3D Bending Star",
		Kind:     GPU,
		Defaults: defaults(64, 1),
		Source:   star3DFragment,
		Func:     "colorStar3D",
		Shape:    ShapeRay,
	})
}
