package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/artmorph/view"
)

// escapeTime iterates z = step(z) until the L1 bailout or the iteration
// bound, returning the iteration count.
func escapeTime(z complex128, limit int, step func(complex128) complex128) int {
	limit = min(limit, view.MaxIterations)
	iterations := 0
	for iterations < limit && math.Abs(real(z))+math.Abs(imag(z)) <= 4 {
		z = step(z)
		iterations++
	}
	return iterations
}

func escapeColour(u view.Uniforms, iterations int) mgl32.Vec3 {
	if iterations >= min(int(u.Iterations), view.MaxIterations) {
		return NullColour
	}
	return PaletteColour(float32(iterations%32)/32, view.Palette(u.Palette))
}

// wobble is the slow drift applied to the power Julia constants.
func wobble(u view.Uniforms, c complex128) complex128 {
	t := float64(u.Time) * 0.2
	return c + complex(0.01*math.Cos(t), 0.01*math.Sin(t))
}

func powerJulia(c complex128, power func(complex128) complex128) PixelFunc {
	return func(u view.Uniforms, pos mgl64.Vec2) mgl32.Vec3 {
		c := wobble(u, c)
		iterations := escapeTime(complex(pos[0], pos[1]), int(u.Iterations), func(z complex128) complex128 {
			return power(z) + c
		})
		return escapeColour(u, iterations)
	}
}
