package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/stewi1014/artmorph/view"
)

func init() {
	register(Descriptor{
		ID:       7,
		Name:     "Pythagoras Tree",
		Kind:     CPU,
		Defaults: defaults(9, 1),
		Draw:     drawPythagoras,
	})
}

const pythagorasBase = 0.18

func drawPythagoras(dc *gg.Context, iterations int, pixelRatio float64, m view.Mapper, _ *GeneratorState) error {
	depth := max(1, min(10, iterations))

	dc.Push()
	defer dc.Pop()
	dc.SetLineWidth(strokeWidth(1.2, pixelRatio))

	var square func(center mgl64.Vec2, side, angle float64, d int) error
	square = func(center mgl64.Vec2, side, angle float64, d int) error {
		ex := mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(side / 2)
		ey := mgl64.Vec2{-math.Sin(angle), math.Cos(angle)}.Mul(side / 2)
		corners := [4]mgl64.Vec2{
			center.Sub(ex).Sub(ey),
			center.Add(ex).Sub(ey),
			center.Add(ex).Add(ey),
			center.Sub(ex).Add(ey),
		}

		for i, c := range corners {
			p := m.DeviceFromUnit(c)
			if i == 0 {
				dc.MoveTo(p[0], p[1])
			} else {
				dc.LineTo(p[0], p[1])
			}
		}
		dc.ClosePath()
		dc.SetRGBA(1, 1, 1, 0.08)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		dc.SetHexColor(overlayStroke)
		if err := dc.Stroke(); err != nil {
			return err
		}

		if d <= 0 {
			return nil
		}

		// Children sit on the top edge, turned a quarter turn apart.
		child := side / math.Sqrt2
		left, right := angle+math.Pi/4, angle-math.Pi/4
		exL := mgl64.Vec2{math.Cos(left), math.Sin(left)}.Mul(child / 2)
		eyL := mgl64.Vec2{-math.Sin(left), math.Cos(left)}.Mul(child / 2)
		exR := mgl64.Vec2{math.Cos(right), math.Sin(right)}.Mul(child / 2)
		eyR := mgl64.Vec2{-math.Sin(right), math.Cos(right)}.Mul(child / 2)

		if err := square(corners[3].Add(exL).Add(eyL), child, left, d-1); err != nil {
			return err
		}
		return square(corners[2].Sub(exR).Add(eyR), child, right, d-1)
	}

	return square(mgl64.Vec2{0.5, 0.1 + pythagorasBase/2}, pythagorasBase, 0, depth-1)
}
