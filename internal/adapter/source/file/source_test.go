package file

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/logger"
)

// fakePlayer drains its reader like an output device would, up to limit bytes.
type fakePlayer struct {
	r      io.Reader
	limit  int64
	played atomic.Int64
	eof    atomic.Bool
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (p *fakePlayer) Play() {
	go func() {
		defer close(p.done)
		buf := make([]byte, 2048)
		for {
			if p.limit > 0 && p.played.Load() >= p.limit {
				<-p.stop
				return
			}
			select {
			case <-p.stop:
				return
			default:
			}
			n, err := p.r.Read(buf)
			p.played.Add(int64(n))
			if err != nil {
				p.eof.Store(true)
				<-p.stop
				return
			}
		}
	}()
}

func (p *fakePlayer) Close() error {
	p.once.Do(func() { close(p.stop) })
	<-p.done
	return nil
}

func newTestOpener(limit int64) (*Opener, *[]*fakePlayer) {
	o := NewOpener(config.Source{SampleRate: 44100}, config.DefaultVisualizer())
	o.SetLogger(logger.NewTestLogger())
	players := &[]*fakePlayer{}
	o.newPlayer = func(r io.Reader, _ int) (player, error) {
		p := &fakePlayer{r: r, limit: limit, stop: make(chan struct{}), done: make(chan struct{})}
		*players = append(*players, p)
		return p, nil
	}
	return o, players
}

func writeWAV(t *testing.T, name string, rate, channels int, samples []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	if len(samples) > 0 {
		buf := &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
			Data:           samples,
			SourceBitDepth: 16,
		}
		require.NoError(t, enc.Write(buf))
	}
	_ = enc.Close()
	require.NoError(t, f.Close())
	return path
}

func sine(freq float64, rate, frames int) []int {
	out := make([]int, frames)
	for i := range out {
		out[i] = int(16000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

// TestOpener_PlaysAndAnalyses tests that played samples reach the analyzers.
func TestOpener_PlaysAndAnalyses(t *testing.T) {
	path := writeWAV(t, "tone.wav", 44100, 1, sine(1000, 44100, 44100))
	o, players := newTestOpener(16384)

	src, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceFile, Path: path})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, domain.SourceFile, src.Kind())
	assert.Equal(t, "tone", src.Label())
	assert.Equal(t, 2, src.Channels())

	p := (*players)[0]
	require.Eventually(t, func() bool { return p.played.Load() >= 16384 }, time.Second, 5*time.Millisecond)

	left := make([]byte, 512)
	right := make([]byte, 512)
	require.NoError(t, src.ReadFrequencyData(left, right))

	// 1 kHz at 44.1 kHz with a 1024-point FFT lands near bin 23.
	assert.Greater(t, int(left[23]), 100)
	assert.Equal(t, left, right)
	assert.Less(t, int(left[200]), int(left[23]))
}

// TestOpener_FinishedPlaybackFallsSilent tests that the bars drop once the file ends.
func TestOpener_FinishedPlaybackFallsSilent(t *testing.T) {
	path := writeWAV(t, "short.wav", 22050, 2, sine(440, 22050, 4096))
	o, players := newTestOpener(0)

	src, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceFile, Path: path})
	require.NoError(t, err)
	defer src.Close()

	p := (*players)[0]
	require.Eventually(t, p.eof.Load, time.Second, 5*time.Millisecond)

	left := make([]byte, 512)
	right := make([]byte, 512)
	require.NoError(t, src.ReadFrequencyData(left, right))
	assert.Equal(t, make([]byte, 512), left)
	assert.Equal(t, make([]byte, 512), right)
}

// TestOpener_Close tests that Close stops the player and later reads fail.
func TestOpener_Close(t *testing.T) {
	path := writeWAV(t, "tone.wav", 44100, 1, sine(1000, 44100, 8192))
	o, players := newTestOpener(4096)

	src, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceFile, Path: path})
	require.NoError(t, err)

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	select {
	case <-(*players)[0].done:
	default:
		t.Fatal("player still running after Close")
	}
	assert.ErrorIs(t, src.ReadFrequencyData(make([]byte, 4), make([]byte, 4)), domain.ErrClosed)
}

// TestOpener_Failures tests the failure classes reported by Open.
func TestOpener_Failures(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not RIFF data"), 0o600))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o600))
	empty := writeWAV(t, "empty.wav", 44100, 2, nil)

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "missing.mp3"), domain.ErrSourceUnavailable},
		{"unsupported extension", text, domain.ErrUnsupportedFormat},
		{"corrupt header", garbage, domain.ErrMalformedStream},
		{"no audio frames", empty, domain.ErrMalformedStream},
	}

	o, players := newTestOpener(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceFile, Path: tt.path})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var srcErr *domain.SourceError
			require.ErrorAs(t, err, &srcErr)
			assert.Equal(t, tt.path, srcErr.Device)
		})
	}
	assert.Empty(t, *players)
}

// TestOpener_RejectsOtherKinds tests that only file requests are accepted.
func TestOpener_RejectsOtherKinds(t *testing.T) {
	o, _ := newTestOpener(0)
	_, err := o.Open(context.Background(), domain.SourceRequest{Kind: domain.SourceSystem})
	assert.ErrorIs(t, err, domain.ErrUnknownSourceKind)
}

func TestReadTitle_FallsBackToFileName(t *testing.T) {
	path := writeWAV(t, "My Song.wav", 8000, 1, []int{1, 2, 3})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "My Song", readTitle(f, path))
}
