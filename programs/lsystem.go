package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/stewi1014/artmorph/view"
)

var treeRules = map[rune]string{
	'X': "F-[[X]+X]+F[+FX]-X",
	'F': "FF",
}

func init() {
	register(Descriptor{
		ID:       8,
		Name:     "L-System Tree",
		Kind:     CPU,
		Defaults: defaults(6, 1),
		Draw:     drawTree,
	})
}

// drawTree grows the branching plant from the bottom centre. Expansion stops
// at five generations; further iterations lengthen the stride.
func drawTree(dc *gg.Context, iterations int, pixelRatio float64, m view.Mapper, _ *GeneratorState) error {
	n := max(1, min(12, iterations))
	return strokeTurtle(dc, m, strokeWidth(1.5, pixelRatio), turtle{
		pos:   mgl64.Vec2{0.5, 0.05},
		dir:   math.Pi / 2,
		step:  0.02 * float64(max(1, n-2)),
		angle: math.Pi / 7,
	}, expand("X", treeRules, min(5, n)))
}
