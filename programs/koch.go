package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/stewi1014/artmorph/view"
)

func init() {
	register(Descriptor{
		ID:       5,
		Name:     "Koch Curve",
		Kind:     CPU,
		Defaults: defaults(4, 1),
		Draw:     drawKoch,
	})
}

func drawKoch(dc *gg.Context, iterations int, pixelRatio float64, m view.Mapper, _ *GeneratorState) error {
	n := max(0, min(6, iterations))
	return strokeTurtle(dc, m, strokeWidth(2, pixelRatio), turtle{
		pos:   mgl64.Vec2{0.1, 0.5},
		step:  0.8 / math.Pow(3, float64(n)),
		angle: math.Pi / 3,
	}, expand("F", map[rune]string{'F': "F+F--F+F"}, n))
}
