package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
)

func TestComposer_Compose(t *testing.T) {
	cfg := config.DefaultVisualizer()
	cfg.SoftZoneProbability = 0
	c := NewComposer(cfg, nil)

	left := make([]float64, 512)
	right := make([]float64, 512)
	for i := range left {
		left[i] = 125
	}

	var frame domain.Frame
	c.Compose(&frame, 640, 480, [2][]float64{left, right})

	require.Len(t, frame.Bars, 40)
	bottom := frame.Bars[0]
	assert.Equal(t, domain.ChannelLeft, bottom.Channel)
	assert.Equal(t, 2, bottom.FrequencyBin)
	assert.Equal(t, 4, bottom.LitDots)
	assert.InDelta(t, 70+0.4*30, bottom.Color.S, 1e-9)

	top := frame.Bars[19]
	assert.Equal(t, 200, top.FrequencyBin)

	silent := frame.Bars[20]
	assert.Equal(t, domain.ChannelRight, silent.Channel)
	assert.Zero(t, silent.LitDots)
	assert.InDelta(t, 180.0, silent.Color.H, 1e-9)

	lit := 0
	for _, d := range frame.Dots[:cfg.DotsPerBar] {
		if d.Lit {
			lit++
		}
	}
	assert.Equal(t, 4, lit)
}

func TestComposer_ReusesFrame(t *testing.T) {
	c := NewComposer(config.DefaultVisualizer(), NewRandomSource(1))
	data := make([]float64, 512)

	var frame domain.Frame
	c.Compose(&frame, 640, 480, [2][]float64{data, data})
	first := len(frame.Dots)
	c.Compose(&frame, 640, 480, [2][]float64{data, data})

	assert.Equal(t, first, len(frame.Dots))
	assert.Equal(t, 640, frame.Width)
}
