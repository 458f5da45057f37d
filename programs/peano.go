package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/stewi1014/artmorph/view"
)

var peanoRules = map[rune]string{
	'L': "LFRFL-F-RFLFR+F+LFRFL",
	'R': "RFLFR+F+LFRFL-F-RFLFR",
}

func init() {
	register(Descriptor{
		ID:       6,
		Name:     "Peano Curve",
		Kind:     CPU,
		Defaults: defaults(5, 1),
		Draw:     drawPeano,
	})
}

// drawPeano draws the 3x3 Peano curve from the bottom-left corner.
func drawPeano(dc *gg.Context, iterations int, pixelRatio float64, m view.Mapper, _ *GeneratorState) error {
	n := max(1, min(5, iterations))
	return strokeTurtle(dc, m, strokeWidth(2, pixelRatio), turtle{
		pos:   mgl64.Vec2{0.1, 0.1},
		step:  0.8 / math.Pow(3, float64(n-1)),
		angle: math.Pi / 2,
	}, expand("L", peanoRules, n-1))
}
