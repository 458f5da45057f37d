package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/artmorph/export"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/view"
)

type SaveOptions struct {
	Name string
	export.Options
}

// save exports s to opts.Name in the background. The file is removed unless
// the user keeps it from the preview.
func save(
	ctx context.Context,
	window *gtk.ApplicationWindow,
	opts SaveOptions,
	reg *programs.Registry,
	s view.State,
) {
	var err error
	ctx, cancel := WithErrorDialogCancelCause(window, ctx)
	defer CatchPanicToContext(cancel)

	file, err := os.Create(opts.Name)
	if err != nil {
		cancel(err)
		return
	}
	context.AfterFunc(ctx, func() {
		file.Close()
	})
	keepFile := context.AfterFunc(ctx, func() {
		os.Remove(file.Name())
	})

	var progress export.Progress
	progressDialog, err := NewProgressDialog(
		ctx, window, "Save Image",
		fmt.Sprintf("Saving %v", file.Name()),
		&progress,
		func() { cancel(context.Canceled) },
	)
	if err != nil {
		cancel(err)
		return
	}
	progressDialog.ShowAll()

	go func() {
		defer CatchPanicToContext(cancel)

		img, err := export.Render(ctx, reg, s, opts.Options, &progress)
		if err != nil {
			cancel(err)
			return
		}

		err = export.WritePNG(file, img)
		if err == nil {
			err = file.Sync()
		}
		if err != nil {
			cancel(err)
			return
		}
		logger.Logger().Info("saved image", "file", file.Name())

		glib.IdleAdd(func() {
			progressDialog.Close()

			app, err := window.GetApplication()
			if err != nil {
				cancel(err)
				return
			}

			_, err = NewImageDialog(
				app, file.Name(),
				func() {
					keepFile()
					cancel(nil)
				},
				func() { cancel(context.Canceled) },
			)
			if err != nil {
				cancel(err)
			}
		})
	}()
}
