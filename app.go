package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/spf13/cobra"
	"github.com/stewi1014/artmorph/bridge"
	"github.com/stewi1014/artmorph/export"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/view"
)

const applicationID = "com.github.stewi1014.artmorph"

func runViewer(cmd *cobra.Command, args []string) error {
	mainContext, mainQuit := context.WithCancelCause(cmd.Context())

	go func() {
		mainQuit(gtkMain(mainContext))
	}()

	<-mainContext.Done()
	if err := context.Cause(mainContext); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func gtkMain(ctx context.Context) error {
	runtime.LockOSThread()

	gtk.Init(nil)
	app, err := gtk.ApplicationNew(applicationID, glib.APPLICATION_FLAGS_NONE)
	if err != nil {
		return fmt.Errorf("gtk.ApplicationNew failed: %w", err)
	}

	state, err := initialState(0)
	if err != nil {
		return err
	}
	iconPixbuf := appIcon()

	appContext, appQuit := context.WithCancelCause(ctx)
	app.Connect("activate", func() {
		defer CatchPanicToContext(appQuit)

		client, listener := bridge.NewPipeListener()
		context.AfterFunc(appContext, func() {
			client.Close()
			listener.Close()
		})
		server, err := listener.Accept()
		if err != nil {
			appQuit(err)
			return
		}

		renderWindow := NewRenderWindow(app, bridge.NewConn(server), cfg, reg, state, appContext, appQuit)
		if renderWindow == nil {
			return
		}
		renderWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		renderWindow.SetTitle("Artmorph")
		if iconPixbuf != nil {
			renderWindow.SetIcon(iconPixbuf)
		}

		configWindow := NewConfigWindow(app, bridge.NewConn(client), reg, exportOptions(), appContext, appQuit)
		if configWindow == nil {
			return
		}
		configWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		configWindow.SetTitle("Artmorph Controls")
		if iconPixbuf != nil {
			configWindow.SetIcon(iconPixbuf)
		}
	})

	go func() {
		<-appContext.Done()
		glib.IdleAdd(app.Quit)
	}()
	app.Run(nil)
	return context.Cause(appContext)
}

// appIcon renders a small Julia set for the window icon.
func appIcon() *gdk.Pixbuf {
	img, err := export.Render(context.Background(), reg, view.Default(), export.Options{Width: 64, Height: 64}, nil)
	if err != nil {
		logger.Logger().Warn("rendering icon", "err", err)
		return nil
	}

	var buf bytes.Buffer
	if err := export.WritePNG(&buf, img); err != nil {
		logger.Logger().Warn("encoding icon", "err", err)
		return nil
	}

	pixbuf, err := gdk.PixbufNewFromBytesOnly(buf.Bytes())
	if err != nil {
		logger.Logger().Warn("loading icon", "err", err)
		return nil
	}
	return pixbuf
}
