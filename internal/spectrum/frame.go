package spectrum

import (
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
)

// Composer lays out bars and dots for one frame from the smoothed channels.
type Composer struct {
	cfg         config.Visualizer
	mapper      Mapper
	discretizer Discretizer
	palette     Palette
}

// NewComposer creates a composer. rnd drives soft-zone decisions and may be
// nil when SoftZoneProbability is zero.
func NewComposer(cfg config.Visualizer, rnd RandomSource) *Composer {
	return &Composer{
		cfg:    cfg,
		mapper: Mapper{MinBin: cfg.MinBin, MaxBin: cfg.MaxBin},
		discretizer: Discretizer{
			DotsPerBar:          cfg.DotsPerBar,
			SoftZoneProbability: cfg.SoftZoneProbability,
			Rand:                rnd,
		},
		palette: Palette{
			BaseHue:         cfg.RainbowBaseHue,
			HueRange:        cfg.RainbowRange,
			MinSaturation:   cfg.MinSaturation,
			MaxSaturation:   cfg.MaxSaturation,
			MinLightness:    cfg.MinLightness,
			MaxLightness:    cfg.MaxLightness,
			UnlitDotOpacity: cfg.UnlitDotOpacity,
			MaxDots:         cfg.DotsPerBar,
		},
	}
}

// Compose rebuilds frame for a width x height surface. smoothed holds the
// left and right smoothed arrays; right is ignored in mono mode.
//
// Bars stack upward from the bottom edge. The left channel grows rightward
// from the left edge; in stereo the right channel mirrors it from the right edge.
func (c *Composer) Compose(frame *domain.Frame, width, height int, smoothed [2][]float64) {
	frame.Reset(width, height)

	numBars := NumBars(height, c.cfg.BarHeight, c.cfg.BarGap, len(smoothed[0]))
	if numBars == 0 {
		return
	}

	pitchY := float64(c.cfg.BarHeight + c.cfg.BarGap)
	pitchX := float64(c.cfg.DotSize + c.cfg.DotGap)
	margin := float64(c.cfg.EdgeMargin)

	for ch := 0; ch < c.cfg.Channels(); ch++ {
		channel := domain.Channel(ch)
		mirrored := c.cfg.Stereo && channel == domain.ChannelRight
		hueOffset := c.cfg.HueOffset(channel)

		for i := 0; i < numBars; i++ {
			bin, level := c.mapper.Map(i, numBars, smoothed[ch])
			lit := c.discretizer.LitDots(level, Position(i, numBars))
			barColor := c.palette.BarColor(i, numBars, lit, hueOffset)

			frame.Bars = append(frame.Bars, domain.Bar{
				Channel:      channel,
				Index:        i,
				FrequencyBin: bin,
				AudioLevel:   level,
				LitDots:      lit,
				Color:        barColor,
			})

			y := float64(height) - float64(i+1)*pitchY
			for d := 0; d < c.cfg.DotsPerBar; d++ {
				x := margin + float64(d)*pitchX
				if mirrored {
					x = float64(width) - margin - float64(d+1)*pitchX
				}

				color, alpha := c.palette.DotColor(barColor, d, lit)
				frame.Dots = append(frame.Dots, domain.Dot{
					X:      x,
					Y:      y,
					Width:  float64(c.cfg.DotSize),
					Height: float64(c.cfg.BarHeight),
					Lit:    d < lit,
					Color:  color,
					Alpha:  alpha,
					RGBA:   ToRGBA(color, alpha),
				})
			}
		}
	}
}
