package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectrum/internal/adapter/source/mock"
	"github.com/tejashwikalptaru/gospectrum/internal/app"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
)

func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Log.Level = "error"
	return cfg
}

func demoSnapshot(t *testing.T, seed uint64) []byte {
	t.Helper()
	var buf bytes.Buffer
	opts := snapshotOptions{frames: 5, width: 320, height: 120, source: "demo", seed: seed}
	require.NoError(t, snapshot(context.Background(), quietConfig(), opts, &buf))
	return buf.Bytes()
}

// TestSnapshot_Reproducible tests that demo snapshots depend only on the seed.
func TestSnapshot_Reproducible(t *testing.T) {
	first := demoSnapshot(t, 3)
	assert.Equal(t, first, demoSnapshot(t, 3))

	img, err := png.Decode(bytes.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())
}

// TestSnapshot_LiveSource tests pacing frames from a live source.
func TestSnapshot_LiveSource(t *testing.T) {
	var buf bytes.Buffer
	opts := snapshotOptions{frames: 2, width: 100, height: 60, source: "system", seed: 1, mock: true}
	require.NoError(t, snapshot(context.Background(), quietConfig(), opts, &buf))
	assert.NotZero(t, buf.Len())
}

// TestSnapshot_RejectsBadOptions tests option validation.
func TestSnapshot_RejectsBadOptions(t *testing.T) {
	cfg := quietConfig()

	err := snapshot(context.Background(), cfg, snapshotOptions{frames: 0, source: "demo"}, &bytes.Buffer{})
	assert.Error(t, err)

	err = snapshot(context.Background(), cfg, snapshotOptions{frames: 1, source: "radio"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrUnknownSourceKind)

	err = snapshot(context.Background(), cfg, snapshotOptions{frames: 1, source: "file"}, &bytes.Buffer{})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

// TestPrintDevices tests the device listing output.
func TestPrintDevices(t *testing.T) {
	lister := mock.NewOpener(0)
	lister.SetDevices([]domain.DeviceInfo{
		{ID: "monitor", Label: "Speakers Monitor", Class: domain.DeviceVirtual},
		{ID: "mic", Label: "USB Mic", Class: domain.DeviceMicrophone},
	})

	var out bytes.Buffer
	require.NoError(t, printDevices(context.Background(), &out, lister))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "monitor")
	assert.Contains(t, lines[0], "Speakers Monitor")
	assert.Contains(t, lines[0], "system audio")
	assert.Contains(t, lines[1], "microphone")

	lister.SetFailList(true)
	assert.Error(t, printDevices(context.Background(), &out, lister))
}

// TestPrintDevices_Empty tests the message for no devices.
func TestPrintDevices_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printDevices(context.Background(), &out, mock.NewOpener(0)))
	assert.Contains(t, out.String(), "no capture devices found")
}

// TestVersionCommand tests the version subcommand.
func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, app.GetVersionInfo().FullString()+"\n", out.String())
}

// TestLoadConfig tests that --config is read over the defaults.
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gospectrum.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nfps = 60\n"), 0o644))

	configPath = path
	t.Cleanup(func() { configPath = "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Window.FPS)
	assert.Equal(t, config.Default().Visualizer, cfg.Visualizer)
}
