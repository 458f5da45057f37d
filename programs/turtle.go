package programs

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/stewi1014/artmorph/view"
)

const overlayStroke = "#eaeaea"

func strokeWidth(scale, pixelRatio float64) float64 {
	return math.Max(1, math.Floor(scale*pixelRatio))
}

// expand rewrites axiom n times with rules. Symbols without a rule are kept.
func expand(axiom string, rules map[rune]string, n int) string {
	s := axiom
	for range n {
		var b strings.Builder
		for _, ch := range s {
			if r, ok := rules[ch]; ok {
				b.WriteString(r)
			} else {
				b.WriteRune(ch)
			}
		}
		s = b.String()
	}
	return s
}

// turtle walks an L-system string in unit-square coordinates (y up) and
// emits device-space path segments onto dc.
type turtle struct {
	dc    *gg.Context
	m     view.Mapper
	pos   mgl64.Vec2
	dir   float64
	step  float64
	angle float64
	stack []turtleState
}

type turtleState struct {
	pos mgl64.Vec2
	dir float64
}

func (t *turtle) moveTo(p mgl64.Vec2) {
	d := t.m.DeviceFromUnit(p)
	t.dc.MoveTo(d[0], d[1])
}

func (t *turtle) lineTo(p mgl64.Vec2) {
	d := t.m.DeviceFromUnit(p)
	t.dc.LineTo(d[0], d[1])
}

func (t *turtle) walk(program string) {
	t.moveTo(t.pos)
	for _, ch := range program {
		switch ch {
		case 'F':
			t.pos = t.pos.Add(mgl64.Vec2{math.Cos(t.dir), math.Sin(t.dir)}.Mul(t.step))
			t.lineTo(t.pos)
		case '+':
			t.dir += t.angle
		case '-':
			t.dir -= t.angle
		case '[':
			t.stack = append(t.stack, turtleState{t.pos, t.dir})
		case ']':
			if len(t.stack) == 0 {
				continue
			}
			top := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.pos, t.dir = top.pos, top.dir
			t.moveTo(t.pos)
		}
	}
}

func strokeTurtle(dc *gg.Context, m view.Mapper, width float64, t turtle, program string) error {
	dc.Push()
	defer dc.Pop()

	dc.SetLineWidth(width)
	dc.SetHexColor(overlayStroke)

	t.dc, t.m = dc, m
	t.walk(program)
	return dc.Stroke()
}
