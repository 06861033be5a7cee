package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/gospectrum/internal/adapter/source"
	"github.com/tejashwikalptaru/gospectrum/internal/app"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

var devicesTimeout time.Duration

var (
	deviceIDStyle      = lipgloss.NewStyle().Bold(true)
	recommendedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD787"))
	deviceCommentStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio capture devices",
	Long: `List the capture devices ffmpeg can record from.

Devices marked "system audio" are loopback or monitor inputs; pass one as
source.device with source.kind = "device" to capture it directly.`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().DurationVar(&devicesTimeout, "timeout", 10*time.Second, "give up probing after this long")
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
	router := source.NewDefaultRouter(&cfg, log)

	ctx, cancel := context.WithTimeout(cmd.Context(), devicesTimeout)
	defer cancel()
	return printDevices(ctx, cmd.OutOrStdout(), router)
}

func printDevices(ctx context.Context, out io.Writer, lister ports.DeviceLister) error {
	devices, err := lister.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	if len(devices) == 0 {
		fmt.Fprintln(out, deviceCommentStyle.Render("no capture devices found"))
		return nil
	}

	for _, d := range devices {
		line := deviceIDStyle.Render(d.ID)
		if d.Label != "" && d.Label != d.ID {
			line += "  " + d.Label
		}
		switch d.Class {
		case domain.DeviceVirtual:
			line += "  " + recommendedStyle.Render("system audio")
		case domain.DeviceMicrophone:
			line += "  " + deviceCommentStyle.Render("microphone")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
