package main

import (
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/gospectrum/internal/app"
)

var runMock bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the overlay window",
	Long: `Open the overlay window and start the configured audio source.

Double-click the window or press Ctrl+H to show or hide the controls.`,
	RunE: runWindow,
}

func init() {
	runCmd.Flags().BoolVar(&runMock, "mock", false, "use constant mock sources instead of capture")
	rootCmd.AddCommand(runCmd)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	appCfg := app.DefaultConfig()
	appCfg.Spectrum = cfg
	appCfg.UseMockSources = runMock

	application, err := app.NewApplication(appCfg)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	// Blocks until the window is closed
	return application.Run()
}
