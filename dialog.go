package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/artmorph/export"
	"github.com/stewi1014/artmorph/logger"
)

func CatchPanicToContext(ctxCancel context.CancelCauseFunc) {
	if v := recover(); v != nil {
		err, ok := v.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", v)
		}
		err = fmt.Errorf("%w\n%v", err, string(debug.Stack()))
		if ctxCancel != nil {
			ctxCancel(err)
		}
	}
}

// WithErrorDialogCancelCause returns a child context whose cancel cause, if
// it is not context.Canceled, is logged and shown in an error dialog over
// parent.
func WithErrorDialogCancelCause(parent *gtk.ApplicationWindow, ctx context.Context) (context.Context, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(ctx)
	context.AfterFunc(ctx, func() {
		err := context.Cause(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Logger().Error("operation failed", "err", err)
		glib.IdleAdd(func() {
			NewErrorDialog(parent, err)
		})
	})
	return ctx, cancel
}

// NewErrorDialog blocks in a modal dialog showing err. The text can be
// selected and copied.
func NewErrorDialog(parent *gtk.ApplicationWindow, err error) {
	summary := "Artmorph ran into a problem"
	if _, file, line, ok := runtime.Caller(1); ok {
		summary = fmt.Sprintf("%s (%s:%v)", summary, filepath.Base(file), line)
	}

	dialog := gtk.MessageDialogNew(
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT|gtk.DIALOG_MODAL,
		gtk.MESSAGE_ERROR,
		gtk.BUTTONS_CLOSE,
		"%s",
		summary,
	)
	dialog.FormatSecondaryText("%s", err.Error())
	dialog.Connect("response", dialog.Destroy)

	if area, aerr := dialog.GetMessageArea(); aerr == nil {
		area.GetChildren().Foreach(func(item interface{}) {
			widget, ok := item.(*gtk.Widget)
			if !ok {
				return
			}
			if label, err := gtk.WidgetToLabel(widget); err == nil {
				label.SetSelectable(true)
			}
		})
	}

	dialog.SetKeepAbove(true)
	dialog.Run()
}

// NewProgressDialog shows the progress of an export until ctx is done or
// Close is called. onCancel runs when the user presses Cancel.
func NewProgressDialog(
	ctx context.Context,
	parent gtk.IWindow,
	title string,
	description string,
	progress *export.Progress,
	onCancel func(),
) (*ProgressDialog, error) {
	var err error
	dialog := &ProgressDialog{
		progress: progress,
		stop:     make(chan struct{}),
	}
	dialog.Dialog, err = gtk.DialogNewWithButtons(
		title,
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		[]interface{}{"Cancel", gtk.RESPONSE_CANCEL},
	)
	if err != nil {
		return nil, fmt.Errorf("gtk.DialogNewWithButtons: %w", err)
	}
	dialog.SetKeepAbove(true)
	dialog.Connect("response", func(_ *gtk.Dialog, response gtk.ResponseType) {
		if response == gtk.RESPONSE_CANCEL && onCancel != nil {
			onCancel()
		}
	})

	content, err := dialog.GetContentArea()
	if err != nil {
		return nil, fmt.Errorf("dialog content area: %w", err)
	}
	content.SetSpacing(8)
	content.SetBorderWidth(12)

	label, err := gtk.LabelNew(description)
	if err != nil {
		return nil, fmt.Errorf("gtk.LabelNew: %w", err)
	}
	content.Add(label)

	if dialog.bar, err = gtk.ProgressBarNew(); err != nil {
		return nil, fmt.Errorf("gtk.ProgressBarNew: %w", err)
	}
	dialog.bar.SetShowText(true)
	dialog.bar.SetSizeRequest(480, -1)
	content.Add(dialog.bar)

	go dialog.update(ctx)
	return dialog, nil
}

type ProgressDialog struct {
	*gtk.Dialog
	bar      *gtk.ProgressBar
	progress *export.Progress

	stop      chan struct{}
	closeOnce sync.Once
}

// Close stops the updates and destroys the dialog. It must be called from
// the UI thread and may be called more than once.
func (dialog *ProgressDialog) Close() {
	dialog.closeOnce.Do(func() {
		close(dialog.stop)
		dialog.Destroy()
	})
}

func (dialog *ProgressDialog) update(ctx context.Context) {
	ticker := time.NewTicker(time.Second / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fraction := dialog.progress.Fraction()
			glib.IdleAdd(func() {
				select {
				case <-dialog.stop:
					return
				default:
				}
				dialog.bar.SetFraction(fraction)
				dialog.bar.SetText(fmt.Sprintf("%.0f%%", fraction*100))
			})
		case <-ctx.Done():
			glib.IdleAdd(dialog.Close)
			return
		case <-dialog.stop:
			return
		}
	}
}

// NewImageDialog shows the image at path scaled to fit, with buttons to keep
// or delete it. Closing the window counts as neither.
func NewImageDialog(
	app *gtk.Application,
	path string,
	responseSave func(),
	responseDelete func(),
) (*ImagePreview, error) {
	w := &ImagePreview{}
	var err error

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		return nil, err
	}
	w.SetTitle("Save Image")

	pixbuf, err := gdk.PixbufNewFromFileAtScale(path, 800, 600, true)
	if err != nil {
		return nil, err
	}

	previewImage, err := gtk.ImageNewFromPixbuf(pixbuf)
	if err != nil {
		return nil, err
	}

	previewImage.SetHExpand(true)
	previewImage.SetVExpand(true)

	deleteButton, _ := gtk.ButtonNewWithLabel("Delete")
	deleteButton.Connect("clicked", func(button *gtk.Button) {
		if responseDelete != nil {
			responseDelete()
		}
		w.Destroy()
	})

	saveButton, _ := gtk.ButtonNewWithLabel("Save")
	saveButton.Connect("clicked", func(button *gtk.Button) {
		if responseSave != nil {
			responseSave()
		}
		w.Destroy()
	})

	grid, _ := gtk.GridNew()
	grid.Attach(previewImage, 0, 0, 5, 1)
	grid.Attach(saveButton, 0, 1, 1, 1)
	grid.Attach(deleteButton, 4, 1, 1, 1)

	w.Add(grid)
	w.ShowAll()

	return w, nil
}

type ImagePreview struct {
	*gtk.ApplicationWindow
}
