package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/artmorph/bridge"
	"github.com/stewi1014/artmorph/export"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/view"
)

// NewConfigWindow builds the control panel. It only talks to the render
// window through conn.
func NewConfigWindow(
	app *gtk.Application,
	conn *bridge.Conn,
	reg *programs.Registry,
	exportOpts export.Options,
	ctx context.Context,
	quit context.CancelCauseFunc,
) *ConfigWindow {
	var err error
	w := &ConfigWindow{
		ctx:        ctx,
		quit:       quit,
		conn:       conn,
		reg:        reg,
		exportOpts: exportOpts,
		events:     make(chan bridge.Event, 64),
	}

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(280, 420)

	if err := w.build(); err != nil {
		quit(err)
		return nil
	}
	w.ShowAll()

	go w.handleSend()
	go w.handleReceive()

	return w
}

type ConfigWindow struct {
	*gtk.ApplicationWindow

	ctx  context.Context
	quit context.CancelCauseFunc

	conn       *bridge.Conn
	events     chan bridge.Event
	reg        *programs.Registry
	exportOpts export.Options

	// syncing is set while widgets are updated from a snapshot, so their
	// change signals are not sent back.
	syncing bool
	last    bridge.Snapshot
	synced  bool

	fractal    *gtk.ComboBoxText
	palette    *gtk.ComboBoxText
	iterations *gtk.SpinButton
	scale      *gtk.SpinButton
	rotation   *gtk.Scale
	speed      *gtk.SpinButton
	play       *gtk.ToggleButton
}

func (w *ConfigWindow) build() error {
	grid, err := gtk.GridNew()
	if err != nil {
		return fmt.Errorf("gtk.GridNew: %w", err)
	}
	grid.SetRowSpacing(6)
	grid.SetColumnSpacing(12)
	grid.SetBorderWidth(12)

	row := 0
	attach := func(name string, widget gtk.IWidget) {
		label, _ := gtk.LabelNew(name)
		label.SetHAlign(gtk.ALIGN_START)
		grid.Attach(label, 0, row, 1, 1)
		grid.Attach(widget, 1, row, 1, 1)
		row++
	}

	if w.fractal, err = gtk.ComboBoxTextNew(); err != nil {
		return fmt.Errorf("fractal selector: %w", err)
	}
	for _, d := range w.reg.Descriptors() {
		w.fractal.Append(strconv.Itoa(d.ID), d.Name)
	}
	w.fractal.Connect("changed", func() {
		id, err := strconv.Atoi(w.fractal.GetActiveID())
		if err == nil {
			w.send(bridge.Fractal(id))
		}
	})
	attach("Fractal", w.fractal)

	if w.palette, err = gtk.ComboBoxTextNew(); err != nil {
		return fmt.Errorf("palette selector: %w", err)
	}
	for p := view.Palette(0); p < view.NumPalettes; p++ {
		w.palette.Append(strconv.Itoa(int(p)), p.String())
	}
	w.palette.Connect("changed", func() {
		p, err := strconv.Atoi(w.palette.GetActiveID())
		if err == nil {
			w.send(bridge.Palette(view.Palette(p)))
		}
	})
	attach("Colour Palette", w.palette)

	if w.iterations, err = gtk.SpinButtonNewWithRange(1, view.MaxIterations, 1); err != nil {
		return fmt.Errorf("iterations: %w", err)
	}
	w.iterations.Connect("value-changed", func() {
		w.send(bridge.Iterations(w.iterations.GetValueAsInt()))
	})
	attach("Iterations", w.iterations)

	if w.scale, err = gtk.SpinButtonNewWithRange(view.MinScale, view.MaxScale, 0.05); err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	w.scale.SetDigits(4)
	w.scale.Connect("value-changed", func() {
		w.send(bridge.Scale(w.scale.GetValue()))
	})
	attach("Scale", w.scale)

	if w.rotation, err = gtk.ScaleNewWithRange(gtk.ORIENTATION_HORIZONTAL, 0, 359, 1); err != nil {
		return fmt.Errorf("rotation: %w", err)
	}
	w.rotation.SetHExpand(true)
	w.rotation.Connect("value-changed", func() {
		w.send(bridge.Rotation(w.rotation.GetValue()))
	})
	attach("Rotation", w.rotation)

	if w.speed, err = gtk.SpinButtonNewWithRange(0.05, 10, 0.05); err != nil {
		return fmt.Errorf("speed: %w", err)
	}
	w.speed.SetDigits(2)
	w.speed.Connect("value-changed", func() {
		w.send(bridge.Speed(w.speed.GetValue()))
	})
	attach("Speed", w.speed)

	if w.play, err = gtk.ToggleButtonNewWithLabel("Play"); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	w.play.Connect("toggled", func() {
		w.send(bridge.Event{Kind: bridge.TogglePlay})
	})

	reset, err := gtk.ButtonNewWithLabel("Reset")
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	reset.Connect("clicked", func() {
		w.send(bridge.Event{Kind: bridge.Reset})
	})

	saveButton, err := gtk.ButtonNewWithLabel("Save Image")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	saveButton.Connect("clicked", w.saveImage)

	grid.Attach(w.play, 0, row, 1, 1)
	grid.Attach(reset, 1, row, 1, 1)
	row++
	grid.Attach(saveButton, 0, row, 2, 1)

	w.Add(grid)
	return nil
}

func (w *ConfigWindow) send(e bridge.Event) {
	if w.syncing {
		return
	}
	select {
	case w.events <- e:
	case <-w.ctx.Done():
	}
}

// sync shows s in the widgets.
func (w *ConfigWindow) sync(s bridge.Snapshot) {
	w.syncing = true
	defer func() { w.syncing = false }()

	w.last, w.synced = s, true
	w.fractal.SetActiveID(strconv.Itoa(s.Fractal))
	w.palette.SetActiveID(strconv.Itoa(s.Palette))
	w.iterations.SetValue(float64(s.Iterations))
	w.scale.SetValue(s.Scale)
	w.rotation.SetValue(s.Rotation)
	w.speed.SetValue(s.Speed)
	w.play.SetActive(s.Playing)
}

func (w *ConfigWindow) saveImage() {
	if !w.synced {
		return
	}
	s, err := w.last.State()
	if err != nil {
		NewErrorDialog(w.ApplicationWindow, err)
		return
	}

	dialog, err := gtk.FileChooserDialogNewWith2Buttons(
		"Save Image", w.ApplicationWindow, gtk.FILE_CHOOSER_ACTION_SAVE,
		"Cancel", gtk.RESPONSE_CANCEL,
		"Save", gtk.RESPONSE_ACCEPT,
	)
	if err != nil {
		NewErrorDialog(w.ApplicationWindow, err)
		return
	}
	dialog.SetDoOverwriteConfirmation(true)
	dialog.SetCurrentName(fmt.Sprintf("%s.png", w.reg.Resolve(s.Fractal()).Name))

	response := dialog.Run()
	name := dialog.GetFilename()
	dialog.Destroy()
	if response != gtk.RESPONSE_ACCEPT || name == "" {
		return
	}

	save(w.ctx, w.ApplicationWindow, SaveOptions{Name: name, Options: w.exportOpts}, w.reg, s)
}

func (w *ConfigWindow) handleSend() {
	defer CatchPanicToContext(w.quit)

	for {
		select {
		case e := <-w.events:
			if err := w.conn.Send(e); err != nil {
				w.quit(fmt.Errorf("sending %v: %w", e, err))
				return
			}
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *ConfigWindow) handleReceive() {
	defer CatchPanicToContext(w.quit)

	err := w.conn.Receive(w.ctx, func(e bridge.Event) {
		logger.Logger().Warn("control panel received an event", "event", e)
	}, func(s bridge.Snapshot) {
		glib.IdleAdd(func() {
			w.sync(s)
		})
	})
	if err != nil {
		w.quit(err)
	}
}
