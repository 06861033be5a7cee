package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/logger"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
	"github.com/tejashwikalptaru/gospectrum/internal/testutil"
)

// TestHelperProcess stands in for ffmpeg. It is not a real test.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	chunk := make([]byte, 1024*4)
	for i := 0; i < 1024; i++ {
		v := int16(12000 * math.Sin(2*math.Pi*float64(i)*440/44100))
		binary.LittleEndian.PutUint16(chunk[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(chunk[i*4+2:], uint16(v))
	}
	switch os.Getenv("HELPER_MODE") {
	case "burst":
		for i := 0; i < 4; i++ {
			_, _ = os.Stdout.Write(chunk)
			time.Sleep(5 * time.Millisecond)
		}
	case "stream":
		for {
			if _, err := os.Stdout.Write(chunk); err != nil {
				os.Exit(0)
			}
			time.Sleep(5 * time.Millisecond)
		}
	case "fail":
		fmt.Fprint(os.Stderr, "Connection refused")
		os.Exit(1)
	case "hang":
		time.Sleep(time.Minute)
	}
	os.Exit(0)
}

func helperCommand(mode string) commandFunc {
	return func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess", "--")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HELPER_MODE="+mode)
		return cmd
	}
}

func newTestOpener(mode string) *Opener {
	o := NewOpener(config.Source{FFmpegPath: "ffmpeg", SampleRate: 44100}, config.DefaultVisualizer())
	o.SetLogger(logger.NewTestLogger())
	o.goos = "linux"
	o.lookPath = func(string) (string, error) { return "/usr/bin/ffmpeg", nil }
	o.command = helperCommand(mode)
	return o
}

// TestOpener_OpenStreams tests that a running capture yields non-zero magnitudes.
func TestOpener_OpenStreams(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	o := newTestOpener("stream")
	src, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceSystem})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceSystem, src.Kind())
	assert.Equal(t, 2, src.Channels())
	assert.Equal(t, "@DEFAULT_MONITOR@", src.Label())

	left := make([]byte, 512)
	right := make([]byte, 512)
	assert.Eventually(t, func() bool {
		if err := src.ReadFrequencyData(left, right); err != nil {
			return false
		}
		for _, v := range left {
			if v > 0 {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
	assert.ErrorIs(t, src.ReadFrequencyData(left, right), domain.ErrClosed)
}

// TestSource_ExitAfterStart tests that a capture whose process exits after it
// started closes Done and fails its reads.
func TestSource_ExitAfterStart(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	o := newTestOpener("burst")
	src, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceSystem})
	require.NoError(t, err)
	defer src.Close()

	ending, ok := src.(ports.EndingSource)
	require.True(t, ok)
	select {
	case <-ending.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("capture did not end")
	}

	left := make([]byte, 512)
	right := make([]byte, 512)
	err = src.ReadFrequencyData(left, right)
	assert.ErrorIs(t, err, domain.ErrMalformedStream)
	var srcErr *domain.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, domain.SourceSystem, srcErr.Kind)
}

// TestOpener_MicrophoneIsMono tests the channel count for microphone capture.
func TestOpener_MicrophoneIsMono(t *testing.T) {
	o := newTestOpener("stream")
	src, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceMicrophone})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 1, src.Channels())
	assert.Equal(t, "@DEFAULT_SOURCE@", src.Label())
}

// TestOpener_FFmpegMissing tests that a missing binary is a source-unavailable failure.
func TestOpener_FFmpegMissing(t *testing.T) {
	o := newTestOpener("stream")
	o.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	_, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceSystem})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

	var srcErr *domain.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, domain.SourceSystem, srcErr.Kind)
}

// TestOpener_ProcessFails tests that a failing ffmpeg is reported with its stderr.
func TestOpener_ProcessFails(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	o := newTestOpener("fail")
	_, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceDevice, DeviceID: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "Connection refused")
}

// TestOpener_NoAudio tests that a clean exit without data is a malformed stream.
func TestOpener_NoAudio(t *testing.T) {
	o := newTestOpener("silent")
	_, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceSystem})
	assert.ErrorIs(t, err, domain.ErrMalformedStream)
}

// TestOpener_StartTimeout tests that a silent process is stopped after the start timeout.
func TestOpener_StartTimeout(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	o := newTestOpener("hang")
	o.SetStartTimeout(50 * time.Millisecond)

	_, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceSystem})
	assert.ErrorIs(t, err, domain.ErrMalformedStream)
}

// TestOpener_ContextCancelled tests that cancellation aborts Open.
func TestOpener_ContextCancelled(t *testing.T) {
	o := newTestOpener("hang")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := o.Open(ctx, domain.SourceRequest{Kind: domain.SourceSystem})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

// TestOpener_RejectsNonCaptureKinds tests that file and demo requests are refused.
func TestOpener_RejectsNonCaptureKinds(t *testing.T) {
	o := newTestOpener("stream")
	_, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceFile})
	assert.ErrorIs(t, err, domain.ErrUnknownSourceKind)
}

func TestInputArgs(t *testing.T) {
	tests := []struct {
		goos   string
		device string
		want   []string
	}{
		{"linux", "x.monitor", []string{"-f", "pulse", "-i", "x.monitor"}},
		{"darwin", "1", []string{"-f", "avfoundation", "-i", ":1"}},
		{"windows", "CABLE Output", []string{"-f", "dshow", "-i", "audio=CABLE Output"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got, err := inputArgs(tt.goos, tt.device)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := inputArgs("plan9", "x")
	assert.Error(t, err)
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{max: 4}
	_, _ = b.Write([]byte("abc"))
	_, _ = b.Write([]byte("defg"))
	assert.Equal(t, "defg", b.String())
}
