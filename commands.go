package main

import (
	"fmt"
	"image"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/stewi1014/artmorph/export"
	"github.com/stewi1014/artmorph/gldevice"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/render"
	"github.com/stewi1014/artmorph/view"
)

func listFractals(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tITER\tSCALE\tEXPORT")

	for _, d := range reg.Descriptors() {
		exportable := d.Kind == programs.CPU || d.Pixel != nil
		fmt.Fprintf(w, "%d\t%s\t%v\t%d\t%g\t%v\n",
			d.ID,
			d.Name,
			d.Kind,
			d.Defaults.Iterations,
			d.Defaults.Scale,
			exportable,
		)
	}

	return w.Flush()
}

func printShader(cmd *cobra.Command, args []string) error {
	var c programs.Composer
	_, err := fmt.Fprint(os.Stdout, c.Source(reg, cfg.Features()))
	return err
}

func exportOptions() export.Options {
	opts := export.Options{
		Width:       cfg.Export.Width,
		Height:      cfg.Export.Height,
		Antialias:   cfg.Export.Antialias,
		Supersample: cfg.Export.Supersample,
		Seed:        cfg.Export.Seed,
	}
	if width > 0 {
		opts.Width = width
	}
	if height > 0 {
		opts.Height = height
	}
	if antialias > 0 {
		opts.Antialias = antialias
	}
	if supersample > 0 {
		opts.Supersample = supersample
	}
	if seed != 0 {
		opts.Seed = seed
	}
	return opts
}

func snapshot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s, err := initialState(seconds)
	if err != nil {
		return err
	}
	opts := exportOptions()

	var img image.Image
	if useGPU {
		img, err = renderGPU(s, opts)
	} else {
		img, err = export.Render(ctx, reg, s, opts, nil)
	}
	if err != nil {
		return err
	}

	file, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := export.WritePNG(file, img); err != nil {
		file.Close()
		os.Remove(output)
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	logger.Logger().Info("wrote snapshot", "file", output, "fractal", s.Fractal())
	return nil
}

// renderGPU draws one frame of s with the composed kernel into a hidden
// window's framebuffer.
func renderGPU(s view.State, opts export.Options) (*image.RGBA, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	target, err := gldevice.NewOffscreen(opts.Width, opts.Height, glDebug)
	if err != nil {
		return nil, err
	}

	gens := programs.NewGenerators(opts.Seed)
	r := render.NewFrameRenderer(target, reg, cfg.Features(), gens)
	defer r.Release()

	if err := r.Render(s, opts.Width, opts.Height, 1); err != nil {
		return nil, err
	}
	if r.Fallback() {
		logger.Logger().Warn("snapshot drawn with the fallback kernel")
	}
	return target.Image(), nil
}

func bench(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s, err := initialState(0)
	if err != nil {
		return err
	}
	opts := exportOptions()
	opts.Width, opts.Height = benchWidth, benchHeight
	d := reg.Resolve(s.Fractal())

	fmt.Printf("benchmarking %s at %dx%d\n\n", d.Name, opts.Width, opts.Height)

	var times []float64
	for i := 0; i < benchRuns; i++ {
		start := time.Now()
		if _, err := export.Render(ctx, reg, s, opts, nil); err != nil {
			return err
		}
		times = append(times, float64(time.Since(start).Microseconds())/1000)
		s.Advance(1.0 / 30)
	}
	if len(times) == 0 {
		return nil
	}

	sorted := slices.Sorted(slices.Values(times))
	var total float64
	for _, t := range times {
		total += t
	}

	if len(times) > 1 {
		graph := asciigraph.Plot(times,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("render time (ms)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUNS\tMIN\tMEDIAN\tMAX\tMEAN\tMPIX/SEC")
	mean := total / float64(len(times))
	fmt.Fprintf(w, "%d\t%.2fms\t%.2fms\t%.2fms\t%.2fms\t%.2f\n",
		len(times),
		sorted[0],
		sorted[len(sorted)/2],
		sorted[len(sorted)-1],
		mean,
		float64(opts.Width*opts.Height)/(mean*1000),
	)
	return w.Flush()
}
