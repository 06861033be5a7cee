package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/gospectrum/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/render/raster"
	"github.com/tejashwikalptaru/gospectrum/internal/app"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/spectrum"
)

type snapshotOptions struct {
	out    string
	frames int
	width  int
	height int
	source string
	seed   uint64
	mock   bool
}

var snapshotOpts snapshotOptions

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render frames headless and save the last one as PNG",
	Long: `Render a number of frames off screen with the raster backend and write the
last one as a PNG. With the demo source and a fixed --seed the output is
the same on every run.

Example:
  gospectrum snapshot --frames 60 --out spectrum.png`,
	RunE: runSnapshot,
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVarP(&snapshotOpts.out, "out", "o", "spectrum.png", "PNG file to write")
	f.IntVarP(&snapshotOpts.frames, "frames", "n", 30, "frames to render before saving")
	f.IntVar(&snapshotOpts.width, "width", 0, "image width (default window.width)")
	f.IntVar(&snapshotOpts.height, "height", 0, "image height (default window.height)")
	f.StringVar(&snapshotOpts.source, "source", string(domain.SourceDemo), "source kind: system, microphone or demo")
	f.Uint64Var(&snapshotOpts.seed, "seed", 1, "seed for the soft-zone dither")
	f.BoolVar(&snapshotOpts.mock, "mock", false, "use constant mock sources instead of capture")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Create(snapshotOpts.out)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	if err := snapshot(cmd.Context(), cfg, snapshotOpts, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", snapshotOpts.out)
	return f.Close()
}

// snapshot renders opts.frames frames and encodes the last one to out.
// Live sources are paced at window.fps so the smoother sees real time.
func snapshot(ctx context.Context, cfg config.Config, opts snapshotOptions, out io.Writer) error {
	if opts.frames <= 0 {
		return domain.NewValidationError("frames", opts.frames, "must be positive")
	}
	width, height := opts.width, opts.height
	if width <= 0 {
		width = cfg.Window.Width
	}
	if height <= 0 {
		height = cfg.Window.Height
	}

	kind, err := domain.ParseSourceKind(opts.source)
	if err != nil {
		return err
	}
	if kind == domain.SourceFile || kind == domain.SourceDevice {
		return domain.NewValidationError("source", opts.source, "must be system, microphone or demo")
	}

	log := app.NewLogger(cfg.Log, nil)
	bus := eventbus.NewSyncEventBus()
	defer bus.Close()

	sources, err := app.NewSourceService(&cfg, log, bus, nil, opts.mock)
	if err != nil {
		return err
	}
	defer sources.Shutdown()

	// The demo signal follows a synthetic clock that advances one frame
	// interval per frame, which keeps demo snapshots reproducible.
	interval := time.Second / time.Duration(cfg.Window.FPS)
	var frame int
	clock := func() time.Time {
		return time.Unix(0, 0).Add(time.Duration(frame) * interval)
	}

	var pace time.Duration
	if kind != domain.SourceDemo {
		if err := sources.Switch(ctx, domain.SourceRequest{Kind: kind}); err != nil {
			return err
		}
		pace = interval
	}

	surface := raster.NewImageSurface(width, height)
	renderer := spectrum.NewRenderer(cfg.Visualizer, raster.New(surface), sources,
		spectrum.WithRandom(spectrum.NewRandomSource(opts.seed)),
		spectrum.WithClock(clock))
	renderer.SetLogger(log)

	for i := 0; i < opts.frames; i++ {
		frame = i
		if err := renderer.AdvanceFrame(); err != nil {
			return err
		}
		if pace > 0 && i < opts.frames-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pace):
			}
		}
	}

	if err := png.Encode(out, surface.Image()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
