package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/gospectrum/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gospectrum",
	Short: "A dot-matrix audio spectrum overlay",
	Long: `gospectrum draws the spectrum of system audio, a microphone or a file as
columns of rainbow dots on a black background, ready to be chroma keyed in OBS.

Without a subcommand it opens the overlay window.`,
	SilenceUsage: true,
	RunE:         runWindow,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
}

// loadConfig reads --config over the built-in defaults.
func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
