package main

// #cgo pkg-config: gdk-3.0
// #include <gdk/gdk.h>
import "C"

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/artmorph/bridge"
	"github.com/stewi1014/artmorph/config"
	"github.com/stewi1014/artmorph/gldevice"
	"github.com/stewi1014/artmorph/interact"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/render"
	"github.com/stewi1014/artmorph/view"
)

// Smooth scroll deltas are in notches; the controller expects pixel-like
// units.
const scrollUnit = 100

// mouse is the contact id the pointer drives.
const mouse = 0

func NewRenderWindow(
	app *gtk.Application,
	conn *bridge.Conn,
	cfg *config.Config,
	reg *programs.Registry,
	state view.State,
	ctx context.Context,
	quit context.CancelCauseFunc,
) *RenderWindow {
	var err error
	w := &RenderWindow{
		ctx:       ctx,
		quit:      quit,
		conn:      conn,
		state:     &state,
		device:    &glDevice{},
		snapshots: make(chan bridge.Snapshot, 1),
	}

	gens := programs.NewGenerators(cfg.Export.Seed)
	w.renderer = render.NewFrameRenderer(w.device, reg, cfg.Features(), gens)
	w.scheduler = render.NewScheduler(w.state, w.renderer, w, w, cfg.Window.MaxPixelRatio)
	w.scheduler.OnFatal(w.fail)
	w.controller = interact.New(w.state, reg, gens, w, w.changed)

	go w.handleSend()

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(getWindowSize(cfg.Window.Width, cfg.Window.Height))

	w.gla, err = gtk.GLAreaNew()
	if err != nil {
		quit(fmt.Errorf("gtk.GLAreaNew: %w", err))
		return nil
	}

	w.gla.SetRequiredVersion(4, 6)
	w.gla.Connect("realize", w.glaRealize)
	w.gla.Connect("render", w.glaRender)
	w.gla.Connect("unrealize", w.glaUnrealize)

	w.gla.SetEvents(
		int(gdk.BUTTON_PRESS_MASK) |
			int(gdk.BUTTON_RELEASE_MASK) |
			int(gdk.POINTER_MOTION_MASK) |
			int(gdk.SCROLL_MASK) |
			int(gdk.SMOOTH_SCROLL_MASK) |
			int(gdk.TOUCH_MASK),
	)
	w.gla.Connect("resize", w.resize)
	w.gla.Connect("scroll-event", w.scroll)
	w.gla.Connect("button-press-event", w.button)
	w.gla.Connect("button-release-event", w.button)
	w.gla.Connect("motion-notify-event", w.motion)
	w.gla.Connect("touch-event", w.touch)

	w.Add(w.gla)
	w.ShowAll()

	go w.handleReceive()
	w.publish()

	return w
}

// getWindowSize is the configured size, shrunk to fit the primary monitor.
func getWindowSize(configWidth, configHeight int) (width, height int) {
	width, height = configWidth, configHeight

	display, err := gdk.DisplayGetDefault()
	if err != nil {
		return
	}

	monitor, err := display.GetPrimaryMonitor()
	if err != nil {
		return
	}

	width = min(width, int(float32(monitor.GetGeometry().GetWidth())*.9))
	height = min(height, int(float32(monitor.GetGeometry().GetHeight())*.9))
	return
}

// glDevice forwards to the device of the GLArea's current context. It is
// replaced each time the area is realized.
type glDevice struct {
	*gldevice.Device
}

type RenderWindow struct {
	*gtk.ApplicationWindow
	gla *gtk.GLArea

	ctx  context.Context
	quit context.CancelCauseFunc

	conn      *bridge.Conn
	snapshots chan bridge.Snapshot

	state      *view.State
	device     *glDevice
	renderer   *render.FrameRenderer
	scheduler  *render.Scheduler
	controller *interact.Controller

	touches touchContacts

	started  bool
	failed   bool
	tick     func(time.Time)
	token    render.TickToken
	backingW int
	backingH int
}

func (w *RenderWindow) glaRealize(gla *gtk.GLArea) {
	gla.MakeCurrent()

	d, err := gldevice.New(glDebug)
	if err != nil {
		w.fail(fmt.Errorf("OpenGL: %w", err))
		return
	}
	w.device.Device = d

	if !w.started {
		w.started = true
		w.scheduler.Start()
		return
	}
	w.scheduler.DeviceRestored()
}

func (w *RenderWindow) glaUnrealize(gla *gtk.GLArea) {
	if w.device.Device == nil {
		return
	}
	gla.MakeCurrent()
	w.scheduler.DeviceLost()
	w.device.Release()
}

// glaRender runs the pending frame tick. Renders GTK asks for on its own,
// after an expose or a resize, redraw the current view.
func (w *RenderWindow) glaRender(gla *gtk.GLArea) bool {
	if w.failed || w.device.Device == nil {
		return true
	}

	tick := w.tick
	w.tick = nil
	if tick == nil {
		w.scheduler.Invalidate()
		tick = w.scheduler.Tick
	}
	tick(time.Now())
	return true
}

func (w *RenderWindow) RequestTick(f func(time.Time)) render.TickToken {
	w.token++
	w.tick = f
	w.gla.QueueRender()
	return w.token
}

func (w *RenderWindow) CancelTick(t render.TickToken) {
	if t == w.token {
		w.tick = nil
	}
}

func (w *RenderWindow) LogicalSize() (width, height int) {
	return w.gla.GetAllocatedWidth(), w.gla.GetAllocatedHeight()
}

func (w *RenderWindow) PixelRatio() float64 {
	return float64(w.gla.GetScaleFactor())
}

func (w *RenderWindow) BackingSize() (width, height int) {
	return w.backingW, w.backingH
}

// SetBackingSize records the size frames are drawn at. GTK sizes the
// GLArea's buffer itself.
func (w *RenderWindow) SetBackingSize(width, height int) {
	w.backingW, w.backingH = width, height
}

func (w *RenderWindow) resize(gla *gtk.GLArea, width, height int) {
	w.scheduler.Invalidate()
}

// devicePoint converts window coordinates to backing-store pixels.
func (w *RenderWindow) devicePoint(x, y float64) mgl64.Vec2 {
	return mgl64.Vec2{x, y}.Mul(w.scheduler.PixelRatio())
}

func (w *RenderWindow) button(gla *gtk.GLArea, event *gdk.Event) {
	button := gdk.EventButtonNewFromEvent(event)
	if button.ButtonVal() != 1 {
		return
	}
	at := w.devicePoint(button.X(), button.Y())

	switch button.Type() {
	case gdk.EVENT_BUTTON_PRESS:
		w.controller.Press(mouse, at)
	case gdk.EVENT_2BUTTON_PRESS:
		w.controller.DoubleClick(at)
	case gdk.EVENT_BUTTON_RELEASE:
		w.controller.Release(mouse)
	}
}

func (w *RenderWindow) motion(gla *gtk.GLArea, event *gdk.Event) {
	if w.controller.Gesture() == interact.Idle {
		return
	}
	x, y := gdk.EventMotionNewFromEvent(event).MotionVal()
	w.controller.Move(mouse, w.devicePoint(x, y))
}

func (w *RenderWindow) scroll(gla *gtk.GLArea, event *gdk.Event) {
	scroll := gdk.EventScrollNewFromEvent(event)
	at := w.devicePoint(scroll.X(), scroll.Y())

	switch scroll.Direction() {
	case gdk.SCROLL_UP:
		w.controller.Wheel(at, -scrollUnit)
	case gdk.SCROLL_DOWN:
		w.controller.Wheel(at, scrollUnit)
	case gdk.SCROLL_SMOOTH:
		w.controller.Wheel(at, scroll.DeltaY()*scrollUnit)
	}
}

// touch feeds each finger to the controller as its own contact; two fingers
// pinch.
func (w *RenderWindow) touch(gla *gtk.GLArea, event *gdk.Event) bool {
	ev := (*C.GdkEventTouch)(unsafe.Pointer(event.Native()))
	seq := uintptr(unsafe.Pointer(ev.sequence))
	at := w.devicePoint(float64(ev.x), float64(ev.y))

	switch ev._type {
	case C.GDK_TOUCH_BEGIN:
		w.controller.Press(w.touches.begin(seq), at)
	case C.GDK_TOUCH_UPDATE:
		if id, ok := w.touches.id(seq); ok {
			w.controller.Move(id, at)
		}
	case C.GDK_TOUCH_END, C.GDK_TOUCH_CANCEL:
		if id, ok := w.touches.end(seq); ok {
			w.controller.Release(id)
		}
	}
	return true
}

// changed follows every view change made by the controller.
func (w *RenderWindow) changed() {
	w.scheduler.Invalidate()
	w.publish()
}

// publish queues a snapshot for the control panel. Only the newest one is
// kept.
func (w *RenderWindow) publish() {
	select {
	case <-w.snapshots:
	default:
	}
	w.snapshots <- bridge.SnapshotOf(*w.state)
}

func (w *RenderWindow) handleSend() {
	defer CatchPanicToContext(w.quit)

	for {
		select {
		case s := <-w.snapshots:
			if err := w.conn.Send(s); err != nil {
				w.quit(fmt.Errorf("sending view snapshot: %w", err))
				return
			}
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *RenderWindow) handleReceive() {
	defer CatchPanicToContext(w.quit)

	err := w.conn.Receive(w.ctx, func(e bridge.Event) {
		glib.IdleAdd(func() {
			if err := w.controller.Apply(e); err != nil {
				logger.Logger().Warn("control event rejected", "event", e, "err", err)
				w.publish()
			}
		})
	}, nil)
	if err != nil {
		w.quit(err)
	}
}

// fail replaces the GL area with a static message and reports err.
func (w *RenderWindow) fail(err error) {
	if w.failed {
		return
	}
	w.failed = true
	w.scheduler.Stop()
	logger.Logger().Error("renderer stopped", "err", err)

	glib.IdleAdd(func() {
		label, lerr := gtk.LabelNew("The fractal renderer could not start.\n" + err.Error())
		if lerr != nil {
			w.quit(err)
			return
		}
		label.SetLineWrap(true)
		label.SetSelectable(true)

		w.Remove(w.gla)
		w.Add(label)
		label.Show()

		NewErrorDialog(w.ApplicationWindow, err)
	})
}
