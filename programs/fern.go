package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/stewi1014/artmorph/view"
)

func init() {
	register(Descriptor{
		ID:       9,
		Name:     "Stochastic Fern",
		Kind:     CPU,
		Defaults: defaults(200, 1),
		Draw:     drawFern,
	})
}

// Bounding box of the Barnsley attractor.
const (
	fernMinX, fernMaxX = -2.1820, 2.6558
	fernMinY, fernMaxY = 0.0, 9.9983
)

// FernPoints is how many attractor points one frame plots for iterations.
func FernPoints(iterations int) int {
	return max(2000, min(40000, iterations*200))
}

// fernStep applies one randomly chosen Barnsley map to p.
func fernStep(p mgl64.Vec2, r float64) mgl64.Vec2 {
	x, y := p[0], p[1]
	switch {
	case r < 0.01:
		return mgl64.Vec2{0, 0.16 * y}
	case r < 0.86:
		return mgl64.Vec2{0.85*x + 0.04*y, -0.04*x + 0.85*y + 1.6}
	case r < 0.93:
		return mgl64.Vec2{0.20*x - 0.26*y, 0.23*x + 0.22*y + 1.6}
	default:
		return mgl64.Vec2{-0.15*x + 0.28*y, 0.26*x + 0.24*y + 0.44}
	}
}

// fernUnit fits the attractor into 90% of the unit square's height.
func fernUnit(p mgl64.Vec2) mgl64.Vec2 {
	const fill = 0.9
	w, h := fernMaxX-fernMinX, fernMaxY-fernMinY
	xs := fill * w / h
	return mgl64.Vec2{
		0.5 - xs/2 + (p[0]-fernMinX)/w*xs,
		0.05 + (p[1]-fernMinY)/h*fill,
	}
}

// drawFern continues the chaos game from where the previous frame stopped,
// so the fern fills in while the view is animating.
func drawFern(dc *gg.Context, iterations int, pixelRatio float64, m view.Mapper, gen *GeneratorState) error {
	if gen == nil || gen.Rand == nil {
		return ErrNoGenerator
	}
	if !gen.Ready {
		gen.Point = mgl64.Vec2{}
		gen.Ready = true
	}

	dc.Push()
	defer dc.Pop()
	dc.SetRGBA(234.0/255, 234.0/255, 234.0/255, 0.9)

	size := math.Max(1, math.Floor(pixelRatio))
	p := gen.Point
	for range FernPoints(iterations) {
		p = fernStep(p, gen.Rand.Float64())
		d := m.DeviceFromUnit(fernUnit(p))
		dc.DrawRectangle(d[0], d[1], size, size)
	}
	gen.Point = p
	gen.Frames++

	return dc.Fill()
}
