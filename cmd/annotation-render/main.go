// Command annotation-render renders one library entry through the viewport
// controller without a window, for scripted previews and regression images.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"annotation-browser/internal/config"
	"annotation-browser/internal/library"
	"annotation-browser/internal/logging"
	"annotation-browser/internal/render"
	"annotation-browser/internal/version"
	"annotation-browser/internal/viewport"
	"annotation-browser/pkg/colorutil"
	"annotation-browser/pkg/geometry"
)

// maxFrames bounds the animation so a bad clock cannot spin forever.
const maxFrames = 10000

type options struct {
	cfgPath string
	dataDir string
	library string
	entry   int
	width   int
	height  int
	zoom    int
	at      string
	pan     string
	outline float64
	out     string
	verbose bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:          "annotation-render --library NAME --out FILE",
		Short:        "Render a library entry after scripted zoom and pan input",
		Version:      version.String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if o.verbose {
				level = charmlog.DebugLevel
			}
			return run(cmd.Context(), o, logging.New(os.Stderr, level))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.cfgPath, "config", "c", "config.yaml", "path to the YAML config file")
	f.StringVarP(&o.dataDir, "data", "d", "", "data directory (overrides data_dir)")
	f.StringVarP(&o.library, "library", "l", "", "library name")
	f.IntVarP(&o.entry, "entry", "e", 0, "entry index")
	f.IntVar(&o.width, "width", 800, "viewport width in pixels")
	f.IntVar(&o.height, "height", 600, "viewport height in pixels")
	f.IntVarP(&o.zoom, "zoom", "z", 0, "wheel notches; positive zooms in, negative zooms out")
	f.StringVar(&o.at, "at", "", "zoom cursor as x,y (default viewport center)")
	f.StringVar(&o.pan, "pan", "", "drag by dx,dy after zooming")
	f.Float64Var(&o.outline, "outline", 0, "box outline width in pixels (default from config)")
	f.StringVarP(&o.out, "out", "o", "", "output image path; format from extension")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose logging")
	_ = cmd.MarkFlagRequired("library")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func run(ctx context.Context, o options, logger *charmlog.Logger) error {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	renderOpts, err := cfg.Render.Options()
	if err != nil {
		return err
	}

	src := library.NewDirSource(cfg.DataDir, logging.Component(logger, "library"))
	entry, err := src.Entry(ctx, o.library, o.entry)
	if err != nil {
		return err
	}

	colors := colorutil.NewCategoryColors()
	for _, b := range entry.BoundingBoxes {
		colors.Assign(b.Meta)
	}
	r := render.NewRenderer(entry, colors, renderOptions(renderOpts, o.outline)...)

	view := geometry.NewSize(float64(o.width), float64(o.height))
	t, err := drive(r.Size(), view, cfg.FrameRate, o, logger)
	if err != nil {
		return err
	}

	img := r.RenderImage(view, t)
	if err := imaging.Save(img, o.out); err != nil {
		return fmt.Errorf("failed to write %s: %w", o.out, err)
	}
	logger.Info("rendered", "entry", entry.Key, "boxes", len(r.Boxes()), "outline", r.Options().OutlineWidth, "transform", t, "out", o.out)
	return nil
}

// renderOptions layers command line overrides on the configured options.
func renderOptions(base render.Options, outline float64) []render.Option {
	return []render.Option{render.WithOptions(base), render.WithOutlineWidth(outline)}
}

// drive replays the scripted input through a controller and returns the
// settled transform.
func drive(imageSize, view geometry.Size, fps int, o options, logger *charmlog.Logger) (viewport.Transform, error) {
	sched := newStepScheduler(fps)
	ctrl, err := viewport.NewController(imageSize, view, sched,
		viewport.WithClock(sched.Now),
		viewport.WithLogger(logger),
	)
	if err != nil {
		return viewport.Transform{}, err
	}
	defer ctrl.Destroy()

	cursor := r2.Vec{X: view.Width / 2, Y: view.Height / 2}
	if o.at != "" {
		if cursor, err = parseVec(o.at); err != nil {
			return viewport.Transform{}, fmt.Errorf("--at: %w", err)
		}
	}

	notches, delta := o.zoom, -1.0
	if notches < 0 {
		notches, delta = -notches, 1.0
	}
	for i := 0; i < notches; i++ {
		ctrl.Wheel(delta, cursor)
	}
	frames := sched.Drain(maxFrames)
	logger.Debug("zoom settled", "frames", frames, "transform", ctrl.Transform())

	if o.pan != "" {
		d, err := parseVec(o.pan)
		if err != nil {
			return viewport.Transform{}, fmt.Errorf("--pan: %w", err)
		}
		ctrl.PointerDown(cursor)
		ctrl.PointerMove(r2.Add(cursor, d))
		sched.Drain(maxFrames)
		ctrl.PointerUp(r2.Add(cursor, d))
	}

	if sched.Pending() > 0 || ctrl.Zoom().InProgress || ctrl.Pan().InProgress() {
		return viewport.Transform{}, errors.New("animation did not settle")
	}
	return ctrl.Transform(), nil
}

func parseVec(s string) (r2.Vec, error) {
	var v r2.Vec
	if _, err := fmt.Sscanf(s, "%g,%g", &v.X, &v.Y); err != nil {
		return r2.Vec{}, fmt.Errorf("want x,y, got %q", s)
	}
	return v, nil
}
