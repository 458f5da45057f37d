package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/stewi1014/artmorph/config"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/view"
)

var (
	configFile string
	logLevel   string
	glDebug    bool

	fractalID   int
	paletteName string
	iterations  int
	scale       float64
	rotation    float64
	speed       float64

	output      string
	width       int
	height      int
	antialias   float64
	supersample int
	seconds     float64
	useGPU      bool
	seed        int64

	benchRuns   int
	benchWidth  int
	benchHeight int

	cfg *config.Config
	reg *programs.Registry
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "artmorph",
		Short:             "animated fractal viewer",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runViewer,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (yaml)")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&glDebug, "gl-debug", false, "enable OpenGL debug output")
	flags.IntVar(&fractalID, "fractal", 0, "fractal id")
	flags.StringVar(&paletteName, "palette", "", "palette (khokhloma, gzhel, rainbow)")
	flags.IntVar(&iterations, "iterations", 0, "iteration bound, 1 to "+strconv.Itoa(view.MaxIterations))
	flags.Float64Var(&scale, "scale", 0, "view scale")
	flags.Float64Var(&rotation, "rotation", 0, "view rotation in degrees")
	flags.Float64Var(&speed, "speed", 0, "animation speed")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "open the viewer",
		RunE:  runViewer,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list fractals",
		RunE:  listFractals,
	}

	shaderCmd := &cobra.Command{
		Use:   "shader",
		Short: "print the composed fragment kernel",
		RunE:  printShader,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render one frame to a PNG file",
		RunE:  snapshot,
	}
	snapshotCmd.Flags().StringVarP(&output, "output", "o", "artmorph.png", "output file")
	snapshotCmd.Flags().IntVar(&width, "width", 0, "image width (default from config)")
	snapshotCmd.Flags().IntVar(&height, "height", 0, "image height (default from config)")
	snapshotCmd.Flags().Float64Var(&antialias, "antialias", 0, "9-tap antialias distance in pixels")
	snapshotCmd.Flags().IntVar(&supersample, "supersample", 0, "supersampling factor")
	snapshotCmd.Flags().Float64Var(&seconds, "time", 0, "animation time in seconds")
	snapshotCmd.Flags().Int64Var(&seed, "seed", 0, "seed for stochastic fractals")
	snapshotCmd.Flags().BoolVar(&useGPU, "gpu", false, "render with OpenGL in a hidden window")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time repeated CPU exports",
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&benchRuns, "runs", 10, "number of renders")
	benchCmd.Flags().IntVar(&benchWidth, "width", 320, "image width")
	benchCmd.Flags().IntVar(&benchHeight, "height", 240, "image height")

	rootCmd.AddCommand(runCmd, listCmd, shaderCmd, snapshotCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config, lets flags override it and installs the logger
// and the fractal registry.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg = config.DefaultConfig()
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("fractal") {
		cfg.View.Fractal = fractalID
	}
	if f.Changed("palette") {
		cfg.View.Palette = paletteName
	}
	if f.Changed("iterations") {
		cfg.View.Iterations = iterations
	}
	if f.Changed("scale") {
		cfg.View.Scale = scale
	}
	if f.Changed("rotation") {
		cfg.View.Rotation = &rotation
	}
	if f.Changed("speed") {
		cfg.View.Speed = speed
	}

	logger.SetLogger(logger.New(os.Stderr, cfg.LogLevel))

	reg, err = programs.Builtin()
	return err
}

// initialState is the configured opening view, with the clock moved to t
// seconds.
func initialState(t float64) (view.State, error) {
	s, err := cfg.InitialState(reg)
	if err != nil {
		return s, err
	}
	if t > 0 {
		playing := s.Playing()
		s.SetPlaying(true)
		s.Advance(t)
		s.SetPlaying(playing)
	}
	return s, nil
}
