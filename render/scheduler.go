package render

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/view"
)

type Phase int

const (
	Idle Phase = iota
	Active
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Active:
		return "active"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Renderer draws one frame of a view snapshot.
type Renderer interface {
	Render(s view.State, width, height int, pixelRatio float64) error
	// Rebuild replaces every device resource the renderer holds.
	Rebuild() error
}

// Scheduler runs the frame loop. It only draws when the view changed, the
// clock moved or the surface was resized. All methods must be called from
// the UI thread.
type Scheduler struct {
	state         *view.State
	renderer      Renderer
	timer         FrameTimer
	surface       Surface
	maxPixelRatio float64

	phase   Phase
	dirty   bool
	lost    bool
	pending bool
	token   TickToken
	last    time.Time
	renders int
	onFatal func(error)
}

func NewScheduler(state *view.State, r Renderer, timer FrameTimer, surface Surface, maxPixelRatio float64) *Scheduler {
	if maxPixelRatio <= 0 {
		maxPixelRatio = 2
	}
	return &Scheduler{
		state:         state,
		renderer:      r,
		timer:         timer,
		surface:       surface,
		maxPixelRatio: maxPixelRatio,
		dirty:         true,
		onFatal:       func(error) {},
	}
}

// OnFatal sets the function told when the loop stops on an error it cannot
// recover from.
func (s *Scheduler) OnFatal(f func(error)) {
	s.onFatal = f
}

func (s *Scheduler) Phase() Phase { return s.phase }
func (s *Scheduler) Dirty() bool  { return s.dirty }
func (s *Scheduler) Renders() int { return s.renders }
func (s *Scheduler) Lost() bool   { return s.lost }

func (s *Scheduler) Start() {
	if s.phase == Active {
		return
	}
	s.phase = Active
	s.dirty = true
	s.last = time.Time{}
	s.request()
}

func (s *Scheduler) Stop() {
	s.phase = Idle
	s.cancel()
}

// Invalidate marks the view as needing a redraw.
func (s *Scheduler) Invalidate() {
	s.dirty = true
}

// DeviceLost stops the loop from requesting frames until DeviceRestored.
func (s *Scheduler) DeviceLost() {
	if s.lost {
		return
	}
	logger.Logger().Warn("graphics device lost")
	s.lost = true
	s.cancel()
}

// DeviceRestored rebuilds the renderer's device resources and resumes the
// loop if it was running.
func (s *Scheduler) DeviceRestored() error {
	if err := s.renderer.Rebuild(); err != nil {
		s.fail(err)
		return err
	}
	logger.Logger().Info("graphics device restored")
	s.lost = false
	s.dirty = true
	s.last = time.Time{}
	if s.phase == Active {
		s.request()
	}
	return nil
}

func (s *Scheduler) request() {
	if s.pending || s.lost || s.phase != Active {
		return
	}
	s.pending = true
	s.token = s.timer.RequestTick(s.Tick)
}

func (s *Scheduler) cancel() {
	if !s.pending {
		return
	}
	s.pending = false
	s.timer.CancelTick(s.token)
}

// PixelRatio is the surface's device pixel ratio, capped.
func (s *Scheduler) PixelRatio() float64 {
	r := s.surface.PixelRatio()
	if !(r > 0) {
		r = 1
	}
	return math.Min(r, s.maxPixelRatio)
}

// resize matches the backing store to logical size times pixel ratio,
// reporting whether it changed.
func (s *Scheduler) resize() bool {
	lw, lh := s.surface.LogicalSize()
	r := s.PixelRatio()
	w := max(1, int(math.Floor(float64(lw)*r)))
	h := max(1, int(math.Floor(float64(lh)*r)))

	if bw, bh := s.surface.BackingSize(); bw == w && bh == h {
		return false
	}
	s.surface.SetBackingSize(w, h)
	logger.Logger().Debug("resized backing store", "width", w, "height", h)
	return true
}

// Tick runs one frame. The frame timer calls it; tests call it directly.
func (s *Scheduler) Tick(now time.Time) {
	s.pending = false
	if s.phase != Active || s.lost {
		return
	}

	if !s.last.IsZero() {
		if s.state.Advance(now.Sub(s.last).Seconds()) {
			s.dirty = true
		}
	}
	s.last = now

	if s.resize() {
		s.dirty = true
	}

	if s.dirty {
		w, h := s.surface.BackingSize()
		err := s.renderer.Render(*s.state, w, h, s.PixelRatio())
		switch {
		case errors.Is(err, ErrDeviceLost):
			s.DeviceLost()
			return
		case err != nil:
			s.fail(err)
			return
		}
		s.dirty = false
		s.renders++
	}

	s.request()
}

func (s *Scheduler) fail(err error) {
	logger.Logger().Error("render loop stopped", "err", err)
	s.Stop()
	s.onFatal(err)
}
