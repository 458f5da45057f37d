package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/artmorph/view"
)

// The CPU palettes below follow shaders/common.glsl stop for stop so
// exported images match the live view.

type stop struct {
	at    float32
	color mgl32.Vec3
}

var (
	khokhloma = []stop{
		{0, mgl32.Vec3{0.02, 0, 0}},
		{0.25, mgl32.Vec3{0.35, 0, 0.02}},
		{0.5, mgl32.Vec3{0.8, 0.15, 0}},
		{0.8, mgl32.Vec3{1, 0.65, 0}},
		{1, mgl32.Vec3{1, 0.9, 0.4}},
	}
	gzhel = []stop{
		{0, mgl32.Vec3{0.02, 0.05, 0.12}},
		{0.4, mgl32.Vec3{0.05, 0.25, 0.65}},
		{0.75, mgl32.Vec3{0.35, 0.55, 0.95}},
		{1, mgl32.Vec3{0.92, 0.96, 1}},
	}
)

// PaletteColour returns palette p at t in [0,1].
func PaletteColour(t float32, p view.Palette) mgl32.Vec3 {
	switch p {
	case view.PaletteKhokhloma:
		return gradient(khokhloma, t)
	case view.PaletteGzhel:
		return gradient(gzhel, t)
	default:
		return hsv2rgb(mgl32.Vec3{fract(t), 0.85, 1})
	}
}

func gradient(stops []stop, t float32) mgl32.Vec3 {
	t = mgl32.Clamp(t, 0, 1)
	for i := 1; i < len(stops)-1; i++ {
		if t < stops[i].at {
			return mix3(stops[i-1].color, stops[i].color, smoothstep(stops[i-1].at, stops[i].at, t))
		}
	}
	last := len(stops) - 1
	return mix3(stops[last-1].color, stops[last].color, smoothstep(stops[last-1].at, stops[last].at, t))
}

func hsv2rgb(c mgl32.Vec3) mgl32.Vec3 {
	var rgb mgl32.Vec3
	for i, off := range [3]float32{0, 2.0 / 6, 4.0 / 6} {
		p := float32(math.Abs(float64(fract(c[0]+off)*6 - 3)))
		rgb[i] = mgl32.Clamp(p-1, 0, 1)
	}
	return mix3(mgl32.Vec3{1, 1, 1}, rgb, c[1]).Mul(c[2])
}

func smoothstep(e0, e1, x float32) float32 {
	t := mgl32.Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

func mix3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

func fract(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}
