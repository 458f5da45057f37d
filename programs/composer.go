package programs

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/view"
)

//go:embed shaders/header.glsl
var headerSource string

//go:embed shaders/common.glsl
var commonSource string

//go:embed shaders/noise.glsl
var noiseSource string

//go:embed shaders/default.vert
var VertexShader string

// Features are optional kernel stages selected at composition time.
type Features struct {
	Vignette bool
}

// FallbackSource is a minimal kernel drawing only the neutral background.
// It is used when the composed kernel fails to compile.
var FallbackSource = headerSource + fmt.Sprintf(`
void main() {
  outputColor = vec4(%s, 1.0);
}
`, glslVec3(NullColour[0], NullColour[1], NullColour[2]))

// Compose builds the fragment kernel for every GPU descriptor in reg: shared
// utilities, each descriptor's color function, a dispatch on u_fractal and
// the view transform. Ids without a GPU function fall through to the neutral
// background.
func Compose(reg *Registry, f Features) string {
	var b strings.Builder
	gpu := reg.Kind(GPU)

	b.WriteString(headerSource)
	fmt.Fprintf(&b, "\nconst int MAX_ITER = %d;\n\n", view.MaxIterations)
	b.WriteString(commonSource)
	b.WriteString(noiseSource)

	for _, d := range gpu {
		fmt.Fprintf(&b, "\n// %d: %s\n", d.ID, d.Name)
		b.WriteString(strings.TrimSpace(d.Source))
		b.WriteString("\n")
	}

	b.WriteString("\nvec3 dispatch(vec2 z) {\n")
	for _, d := range gpu {
		fmt.Fprintf(&b, "  if (u_fractal == %d) return %s;\n", d.ID, dispatchCall(d))
	}
	fmt.Fprintf(&b, "  return %s;\n}\n", glslVec3(NullColour[0], NullColour[1], NullColour[2]))

	b.WriteString(`
void main() {
  vec2 n = viewNormalized(gl_FragCoord.xy);
  vec3 col = dispatch(viewTransform(n));
`)
	if f.Vignette {
		b.WriteString("  col *= mix(0.85, 1.0, smoothstep(1.2, 0.2, length(n)));\n")
	}
	b.WriteString("  outputColor = vec4(col, 1.0);\n}\n")

	return b.String()
}

// DispatchClause is the dispatch line Compose emits for d.
func DispatchClause(d Descriptor) string {
	return fmt.Sprintf("if (u_fractal == %d) return %s;", d.ID, dispatchCall(d))
}

func dispatchCall(d Descriptor) string {
	var arg string
	switch d.Shape {
	case ShapeSlice:
		arg = "sliceOf(z)"
	case ShapeRay:
		arg = "rayOf(z)"
	default:
		arg = "z"
	}

	call := fmt.Sprintf("%s(%s)", d.Func, arg)
	if d.Output == OutputDepth {
		call = fmt.Sprintf("getPalette(%s, u_palette)", call)
	}
	return call
}

func glslVec3(r, g, b float32) string {
	return fmt.Sprintf("vec3(%g, %g, %g)", r, g, b)
}

// Composer caches Compose output. The kernel is rebuilt only when the
// registry or the requested features change.
type Composer struct {
	reg      *Registry
	features Features
	source   string
	builds   int
}

func (c *Composer) Source(reg *Registry, f Features) string {
	if c.builds > 0 && c.reg == reg && c.features == f {
		return c.source
	}

	c.reg, c.features = reg, f
	c.source = Compose(reg, f)
	c.builds++

	logger.Logger().Debug("composed fractal kernel",
		"fractals", len(reg.Kind(GPU)),
		"bytes", len(c.source),
		"vignette", f.Vignette,
	)
	return c.source
}

// Builds reports how many times the kernel has been composed.
func (c *Composer) Builds() int {
	return c.builds
}
