package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/gospectrum/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/render/raster"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/ui/tui"
	"github.com/tejashwikalptaru/gospectrum/internal/app"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/spectrum"
)

var (
	previewLogFile string
	previewMock    bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the spectrum in the terminal",
	Long: `Run the full pipeline in the terminal, drawing each frame with half-block
characters. Useful over SSH or to check a configuration without a display.

Logs go to --log-file, or nowhere, so they do not tear the screen.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewLogFile, "log-file", "", "write logs to this file")
	previewCmd.Flags().BoolVar(&previewMock, "mock", false, "use constant mock sources instead of capture")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if previewLogFile != "" {
		f, err := os.OpenFile(previewLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := app.NewLogger(cfg.Log, logOut)

	bus := eventbus.NewSyncEventBus()
	bus.SetLogger(log.With(slog.String("component", "eventbus")))
	defer bus.Close()

	sources, err := app.NewSourceService(&cfg, log, bus, nil, previewMock)
	if err != nil {
		return err
	}
	defer sources.Shutdown()

	surface := tui.NewSurface(0, 0)
	renderer := spectrum.NewRenderer(cfg.Visualizer, raster.New(surface), sources)
	renderer.SetLogger(log)

	model := tui.NewModel(tui.Options{
		Step:    renderer.AdvanceFrame,
		Surface: surface,
		Sources: sources,
		Bus:     bus,
		Backend: string(domain.RendererRaster),
		FPS:     cfg.Window.FPS,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(c)
		close(c)
	}()
	go func() {
		if _, ok := <-c; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run preview: %w", err)
	}
	return nil
}
