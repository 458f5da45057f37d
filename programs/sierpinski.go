package programs

import (
	_ "embed"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/artmorph/view"
)

var (
	//go:embed shaders/sierpinski_triangle.glsl
	sierpinskiTriangleFragment string

	//go:embed shaders/sierpinski_carpet.glsl
	sierpinskiCarpetFragment string

	//go:embed shaders/sierpinski_pyramid.glsl
	sierpinskiPyramidFragment string
)

// The folding fractals live on the unit square (or cube), so they open
// centred on it.
func unitDefaults(iterations int) view.Overrides {
	return view.Overrides{
		Iterations: iterations,
		Scale:      0.5,
		Center:     mgl64.Vec2{0.5, 0.5},
	}
}

func init() {
	register(Descriptor{
		ID:       1,
		Name:     "Sierpinski Triangle",
		Kind:     GPU,
		Defaults: unitDefaults(9),
		Source:   sierpinskiTriangleFragment,
		Func:     "sierpinskiTri",
		Output:   OutputDepth,
		Pixel: depthPixel(func(p mgl64.Vec2, limit int) float64 {
			return foldDepth(p, limit, 2, func(r mgl64.Vec2) bool {
				return r[0]+r[1] > 1
			})
		}),
	})

	register(Descriptor{
		ID:       2,
		Name:     "Sierpinski Carpet",
		Kind:     GPU,
		Defaults: unitDefaults(6),
		Source:   sierpinskiCarpetFragment,
		Func:     "sierpinskiCarpet",
		Output:   OutputDepth,
		Pixel: depthPixel(func(p mgl64.Vec2, limit int) float64 {
			return foldDepth(p, limit, 3, func(r mgl64.Vec2) bool {
				return middleThird(r[0]) && middleThird(r[1])
			})
		}),
	})

	register(Descriptor{
		ID:       4,
		Name:     "Sierpinski Pyramid",
		Kind:     GPU,
		Defaults: unitDefaults(9),
		Source:   sierpinskiPyramidFragment,
		Func:     "sierpinskiPyramidDepth",
		Shape:    ShapeSlice,
		Output:   OutputDepth,
	})
}

// foldDepth repeatedly scales p by base and keeps the fractional part until
// removed reports the point fell in a hole. The result is the fold count over
// limit, or 1 for points that survive every fold.
func foldDepth(p mgl64.Vec2, limit, base int, removed func(mgl64.Vec2) bool) float64 {
	q := p
	for i := 0; i < min(limit, 1024); i++ {
		r := mgl64.Vec2{fract64(q[0] * float64(base)), fract64(q[1] * float64(base))}
		if removed(r) {
			return float64(i) / math.Max(1, float64(limit))
		}
		q = r
	}
	return 1
}

func middleThird(a float64) bool {
	return a > 1.0/3 && a < 2.0/3
}

func depthPixel(depth func(p mgl64.Vec2, limit int) float64) PixelFunc {
	return func(u view.Uniforms, pos mgl64.Vec2) mgl32.Vec3 {
		return PaletteColour(float32(depth(pos, int(u.Iterations))), view.Palette(u.Palette))
	}
}

func fract64(x float64) float64 {
	return x - math.Floor(x)
}
