package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stewi1014/artmorph/config"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/view"
)

func TestSetupFlagOverrides(t *testing.T) {
	t.Cleanup(func() { logger.SetLogger(nil) })

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "")
	cmd.Flags().IntVar(&fractalID, "fractal", 0, "")
	cmd.Flags().StringVar(&paletteName, "palette", "", "")
	cmd.Flags().Float64Var(&rotation, "rotation", 0, "")
	if err := cmd.ParseFlags([]string{"--log-level", "error", "--fractal", "20", "--palette", "gzhel", "--rotation", "-90"}); err != nil {
		t.Fatal(err)
	}

	if err := setup(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("expected log level error, got %q", cfg.LogLevel)
	}

	s, err := initialState(2)
	if err != nil {
		t.Fatal(err)
	}
	if s.Fractal() != 20 || s.Palette() != view.PaletteGzhel {
		t.Errorf("expected mandelbrot in gzhel, got fractal %d palette %v", s.Fractal(), s.Palette())
	}
	if s.Rotation() != 270 {
		t.Errorf("expected rotation 270, got %v", s.Rotation())
	}
	if s.Iterations() != 300 {
		t.Errorf("expected the fractal's own iteration default 300, got %d", s.Iterations())
	}
	if s.Time() != 2 {
		t.Errorf("expected clock at 2s, got %v", s.Time())
	}
}

func TestExportOptions(t *testing.T) {
	cfg = config.DefaultConfig()
	width, height, supersample = 0, 0, 0
	t.Cleanup(func() { width, height, supersample = 0, 0, 0 })

	opts := exportOptions()
	if opts.Width != config.DefaultExportWidth || opts.Height != config.DefaultExportHeight {
		t.Errorf("expected config size, got %dx%d", opts.Width, opts.Height)
	}

	width, height, supersample = 64, 32, 3
	opts = exportOptions()
	if opts.Width != 64 || opts.Height != 32 || opts.Supersample != 3 {
		t.Errorf("expected flag overrides, got %+v", opts)
	}
}
