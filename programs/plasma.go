package programs

import (
	_ "embed"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/artmorph/view"
)

//go:embed shaders/plasma.glsl
var plasmaFragment string

func init() {
	register(Descriptor{
		ID:       10,
		Name:     "Plasma",
		Kind:     GPU,
		Defaults: defaults(50, 1),
		Source:   plasmaFragment,
		Func:     "colorPlasma",
		Pixel:    plasmaPixel,
	})
}

func plasmaPixel(u view.Uniforms, p mgl64.Vec2) mgl32.Vec3 {
	t := float64(u.Time) * 0.5
	v := math.Sin(p[0]*8 + t)
	v += math.Sin((p[1]*5 - t) * 2)
	v += math.Sin((p[0] + p[1] + t) * 4)
	p2 := p.Mul(2)
	v += math.Sin(math.Sqrt(p2[0]*p2[0]+p2[1]*p2[1]+1) + t)
	return PaletteColour(float32(v/4), view.Palette(u.Palette))
}
