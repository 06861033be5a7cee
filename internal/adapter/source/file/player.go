package file

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// player is the playback side of a file source.
type player interface {
	Play()
	Close() error
}

// playerFactory starts playback of stereo s16le PCM at sampleRate.
type playerFactory func(r io.Reader, sampleRate int) (player, error)

var (
	globalOtoCtx  *oto.Context
	globalOtoRate int
	otoOnce       sync.Once
	otoInitErr    error
)

// initOto creates the process-wide oto context. oto allows one context per
// process, so later calls get the first context regardless of sampleRate.
func initOto(sampleRate int) (*oto.Context, int, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			globalOtoRate = sampleRate
		}
	})
	return globalOtoCtx, globalOtoRate, otoInitErr
}

func newOtoPlayer(r io.Reader, sampleRate int) (player, error) {
	ctx, rate, err := initOto(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("initialising audio output: %w", err)
	}
	if rate != sampleRate {
		return nil, fmt.Errorf("audio output already running at %d Hz", rate)
	}
	return ctx.NewPlayer(r), nil
}
