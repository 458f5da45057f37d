// Package interact turns pointer gestures and control-panel events into view
// changes.
package interact

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/artmorph/bridge"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/view"
)

// WheelResponse is the exponent applied per unit of wheel delta.
const WheelResponse = 0.001

type Gesture int

const (
	Idle Gesture = iota
	Panning
	Pinching
)

func (g Gesture) String() string {
	switch g {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	}
	return fmt.Sprintf("gesture(%d)", int(g))
}

// Sizer reports the backing-store size in device pixels.
type Sizer interface {
	BackingSize() (width, height int)
}

// Controller owns no state of its own beyond the gesture in progress; every
// change goes to the shared view.State and is followed by a call to
// onChange.
type Controller struct {
	state    *view.State
	reg      *programs.Registry
	gens     *programs.Generators
	surface  Sizer
	onChange func()

	gesture  Gesture
	contacts map[int]mgl64.Vec2
	pinch    struct {
		scale0 float64
		d0     float64
	}
}

func New(state *view.State, reg *programs.Registry, gens *programs.Generators, surface Sizer, onChange func()) *Controller {
	if onChange == nil {
		onChange = func() {}
	}
	return &Controller{
		state:    state,
		reg:      reg,
		gens:     gens,
		surface:  surface,
		onChange: onChange,
		contacts: make(map[int]mgl64.Vec2),
	}
}

func (c *Controller) Gesture() Gesture { return c.gesture }

// transform is built fresh for every gesture step from the current view and
// surface, so rotation and size changes never go stale.
func (c *Controller) transform() view.Transform {
	w, h := c.surface.BackingSize()
	return view.NewTransform(*c.state, w, h)
}

// Press registers contact id at device point p.
func (c *Controller) Press(id int, p mgl64.Vec2) {
	c.contacts[id] = p

	switch {
	case len(c.contacts) >= 2 && c.gesture != Pinching:
		c.gesture = Pinching
		c.pinch.scale0 = c.state.Scale()
		c.pinch.d0 = c.contactDistance()
	case len(c.contacts) == 1 && c.gesture == Idle:
		c.gesture = Panning
	}
}

// Move updates contact id. A single panning contact pans; two contacts
// pinch about their midpoint.
func (c *Controller) Move(id int, p mgl64.Vec2) {
	prev, ok := c.contacts[id]
	if !ok {
		return
	}
	c.contacts[id] = p

	switch c.gesture {
	case Panning:
		c.Pan(p.Sub(prev))
	case Pinching:
		d := c.contactDistance()
		if d <= 0 || c.pinch.d0 <= 0 {
			return
		}
		c.ZoomAt(c.contactMidpoint(), c.pinch.scale0*c.pinch.d0/d)
	}
}

// Release drops contact id. Leaving a pinch always returns to Idle; panning
// needs a fresh press.
func (c *Controller) Release(id int) {
	if _, ok := c.contacts[id]; !ok {
		return
	}
	delete(c.contacts, id)

	switch c.gesture {
	case Pinching:
		if len(c.contacts) < 2 {
			c.gesture = Idle
			clear(c.contacts)
		}
	case Panning:
		if len(c.contacts) == 0 {
			c.gesture = Idle
		}
	}
}

// firstTwo returns the two lowest-numbered contacts.
func (c *Controller) firstTwo() (a, b mgl64.Vec2) {
	ids := slices.Sorted(maps.Keys(c.contacts))
	if len(ids) < 2 {
		return a, b
	}
	return c.contacts[ids[0]], c.contacts[ids[1]]
}

func (c *Controller) contactDistance() float64 {
	a, b := c.firstTwo()
	return math.Max(1, a.Sub(b).Len())
}

func (c *Controller) contactMidpoint() mgl64.Vec2 {
	a, b := c.firstTwo()
	return a.Add(b).Mul(0.5)
}

// Pan moves the view so the world point under the pointer follows a device
// delta of d.
func (c *Controller) Pan(d mgl64.Vec2) {
	if d == (mgl64.Vec2{}) {
		return
	}
	world := c.transform().ForwardLinear(d)
	if c.set(c.state.SetCenter(c.state.Center().Sub(world))) {
		c.onChange()
	}
}

// Wheel zooms about device point at. Negative deltaY zooms in.
func (c *Controller) Wheel(at mgl64.Vec2, deltaY float64) {
	c.ZoomAt(at, c.state.Scale()*math.Exp(-deltaY*WheelResponse))
}

// ZoomAt sets the scale (clamped) while keeping the world point under device
// point at fixed. Scale and center change together.
func (c *Controller) ZoomAt(at mgl64.Vec2, scale float64) {
	if math.IsNaN(scale) {
		return
	}
	before := c.transform().Forward(at)

	next := *c.state
	if !c.set(next.SetScale(scale)) {
		return
	}
	w, h := c.surface.BackingSize()
	after := view.NewTransform(next, w, h).Forward(at)
	if !c.set(next.SetCenter(next.Center().Add(before.Sub(after)))) {
		return
	}

	*c.state = next
	c.onChange()
}

// DoubleClick recenters the view on the world point under at.
func (c *Controller) DoubleClick(at mgl64.Vec2) {
	if c.set(c.state.SetCenter(c.transform().Forward(at))) {
		c.onChange()
	}
}

func (c *Controller) SetRotation(deg float64) error {
	if err := c.state.SetRotation(deg); err != nil {
		return err
	}
	c.onChange()
	return nil
}

// SwitchFractal makes id active, applying its view overrides and starting
// its generator over. Unknown ids are rejected and leave the view as it was.
// Selecting the active fractal again changes nothing.
func (c *Controller) SwitchFractal(id int) error {
	d, ok := c.reg.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", programs.ErrUnknownFractal, id)
	}
	if id == c.state.Fractal() {
		return nil
	}

	next := *c.state
	if err := next.Apply(d.Defaults); err != nil {
		return err
	}
	next.SetFractal(id)
	*c.state = next

	if d.Kind == programs.CPU && c.gens != nil {
		c.gens.Activate(id)
	}

	logger.Logger().Debug("switched fractal", "id", id, "name", d.Name)
	c.onChange()
	return nil
}

// Reset restores the default view, keeping the active fractal and its
// overrides. The animation clock is kept.
func (c *Controller) Reset() {
	next := view.Default()
	next.Advance(c.state.Time())

	if d, ok := c.reg.Lookup(c.state.Fractal()); ok {
		if err := next.Apply(d.Defaults); err == nil {
			next.SetFractal(d.ID)
		}
		if d.Kind == programs.CPU && c.gens != nil {
			c.gens.Activate(d.ID)
		}
	}

	*c.state = next
	c.onChange()
}

// Apply routes a control-panel event to the matching operation.
func (c *Controller) Apply(e bridge.Event) error {
	var err error
	switch e.Kind {
	case bridge.SetPalette:
		err = c.state.SetPalette(view.Palette(e.Int))
	case bridge.SetIterations:
		err = c.state.SetIterations(e.Int)
	case bridge.SetScale:
		err = c.state.SetScale(e.Float)
	case bridge.SetRotation:
		return c.SetRotation(e.Float)
	case bridge.SetSpeed:
		err = c.state.SetSpeed(e.Float)
	case bridge.SetFractal:
		return c.SwitchFractal(e.Int)
	case bridge.TogglePlay:
		c.state.SetPlaying(!c.state.Playing())
	case bridge.Reset:
		c.Reset()
		return nil
	default:
		return fmt.Errorf("unknown bridge event %v", e.Kind)
	}
	if err != nil {
		return err
	}
	c.onChange()
	return nil
}

// set logs a rejected gesture update and reports whether it was accepted.
func (c *Controller) set(err error) bool {
	if err != nil {
		logger.Logger().Warn("gesture rejected", "err", err)
		return false
	}
	return true
}
