package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  domain.DeviceClass
	}{
		{"CABLE Output (VB-Audio Virtual Cable)", domain.DeviceVirtual},
		{"Stereo Mix (Realtek Audio)", domain.DeviceVirtual},
		{"VoiceMeeter Output", domain.DeviceVirtual},
		{"alsa_output.pci-0000_00_1f.3.analog-stereo.monitor", domain.DeviceVirtual},
		{"BlackHole 2ch", domain.DeviceVirtual},
		{"Microphone (USB Audio)", domain.DeviceMicrophone},
		{"MacBook Pro Mic", domain.DeviceMicrophone},
		{"alsa_input.usb-headset", domain.DeviceOther},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.label))
		})
	}
}

func TestParsePactl(t *testing.T) {
	out := []byte("0\talsa_output.pci.analog-stereo.monitor\tmodule-alsa-card.c\ts16le 2ch 44100Hz\tSUSPENDED\n" +
		"1\talsa_input.pci.analog-stereo\tmodule-alsa-card.c\ts16le 2ch 44100Hz\tRUNNING\n" +
		"\n")

	devices := parsePactl(out)
	require.Len(t, devices, 2)
	assert.Equal(t, "alsa_output.pci.analog-stereo.monitor", devices[0].ID)
	assert.True(t, devices[0].Recommended())
	assert.False(t, devices[1].Recommended())
}

func TestParseAVFoundation(t *testing.T) {
	out := []byte(`[AVFoundation indev @ 0x7f8] AVFoundation video devices:
[AVFoundation indev @ 0x7f8] [0] FaceTime HD Camera
[AVFoundation indev @ 0x7f8] AVFoundation audio devices:
[AVFoundation indev @ 0x7f8] [0] MacBook Pro Microphone
[AVFoundation indev @ 0x7f8] [1] BlackHole 2ch
: Input/output error
`)

	devices := parseAVFoundation(out)
	require.Len(t, devices, 2)
	assert.Equal(t, domain.DeviceInfo{ID: "0", Label: "MacBook Pro Microphone", Class: domain.DeviceMicrophone}, devices[0])
	assert.Equal(t, domain.DeviceInfo{ID: "1", Label: "BlackHole 2ch", Class: domain.DeviceVirtual}, devices[1])
}

func TestParseDShow(t *testing.T) {
	out := []byte(`[dshow @ 000001] "Integrated Webcam" (video)
[dshow @ 000001]   Alternative name "@device_pnp_abc"
[dshow @ 000001] "Microphone Array (Realtek)" (audio)
[dshow @ 000001] "CABLE Output (VB-Audio Virtual Cable)" (audio)
dummy: Immediate exit requested
`)

	devices := parseDShow(out)
	require.Len(t, devices, 2)
	assert.Equal(t, domain.DeviceMicrophone, devices[0].Class)
	assert.Equal(t, "CABLE Output (VB-Audio Virtual Cable)", devices[1].ID)
	assert.True(t, devices[1].Recommended())
}

// TestOpener_ListDevices tests platform dispatch and failure wrapping.
func TestOpener_ListDevices(t *testing.T) {
	o := newTestOpener("stream")
	o.runList = func(_ context.Context, name string, _ ...string) ([]byte, error) {
		assert.Equal(t, "pactl", name)
		return []byte("3\tfoo.monitor\tm\tf\tIDLE\n"), nil
	}

	devices, err := o.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "foo.monitor", devices[0].ID)

	o.runList = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("pactl: not found")
	}
	_, err = o.ListDevices(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

// TestOpener_SystemPicksRecommendedDevice tests default device resolution off Linux.
func TestOpener_SystemPicksRecommendedDevice(t *testing.T) {
	o := newTestOpener("stream")
	o.goos = "windows"
	o.runList = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`[dshow @ 1] "Microphone (USB)" (audio)
[dshow @ 1] "Stereo Mix (Realtek)" (audio)
`), nil
	}

	dev, err := o.defaultDevice(context.Background(), "ffmpeg", domain.SourceSystem)
	require.NoError(t, err)
	assert.Equal(t, "Stereo Mix (Realtek)", dev)

	dev, err = o.defaultDevice(context.Background(), "ffmpeg", domain.SourceMicrophone)
	require.NoError(t, err)
	assert.Equal(t, "Microphone (USB)", dev)

	o.runList = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`[dshow @ 1] "Microphone (USB)" (audio)`), nil
	}
	_, err = o.defaultDevice(context.Background(), "ffmpeg", domain.SourceSystem)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}
