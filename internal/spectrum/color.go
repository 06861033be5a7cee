package spectrum

import (
	"math"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
)

const (
	// activityHueShift is the hue shift in degrees of a fully lit bar.
	activityHueShift = 60.0
	// dimFactor scales saturation and lightness of unlit dots and idle bars.
	dimFactor = 0.3
)

// Palette derives bar and dot colors.
type Palette struct {
	BaseHue         float64
	HueRange        float64
	MinSaturation   float64
	MaxSaturation   float64
	MinLightness    float64
	MaxLightness    float64
	UnlitDotOpacity float64
	MaxDots         int
}

// BarColor returns the base color of a bar from its position and activity.
func (p Palette) BarColor(barIndex, numBars, litDots int, hueOffset float64) domain.HSL {
	activity := 0.0
	if p.MaxDots > 0 {
		activity = float64(litDots) / float64(p.MaxDots)
	}

	freqHue := Position(barIndex, numBars) * p.HueRange
	hue := normalizeHue(p.BaseHue + freqHue + activity*activityHueShift + hueOffset)

	lightness := p.MinLightness * dimFactor
	if litDots > 0 {
		lightness = p.MinLightness + activity*(p.MaxLightness-p.MinLightness)
	}

	return domain.HSL{
		H: hue,
		S: p.MinSaturation + activity*(p.MaxSaturation-p.MinSaturation),
		L: lightness,
	}
}

// DotColor returns the color and alpha of dot dotIndex in a bar.
// Lit dots brighten toward the end of the lit run; unlit dots are dimmed
// and translucent.
func (p Palette) DotColor(bar domain.HSL, dotIndex, litDots int) (domain.HSL, float64) {
	if dotIndex < litDots {
		intensity := float64(dotIndex+1) / float64(litDots)
		return domain.HSL{
			H: bar.H,
			S: bar.S,
			L: math.Min(bar.L*(0.6+0.4*intensity), p.MaxLightness),
		}, 1
	}

	return domain.HSL{
		H: bar.H,
		S: bar.S * dimFactor,
		L: p.MinLightness * dimFactor,
	}, p.UnlitDotOpacity
}

// ToRGBA converts an HSL color in degrees and percent to float RGBA.
func ToRGBA(c domain.HSL, alpha float64) domain.RGBA {
	r, g, b := HSLToRGB(c.H/360, c.S/100, c.L/100)
	return domain.RGBA{R: r, G: g, B: b, A: alpha}
}

// HSLToRGB maps a color that ToRGBA has already normalized (hue as a
// fraction of a turn, saturation and lightness as fractions of 100%) onto
// float RGB channels. Zero saturation yields the lightness as gray.
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}

	hi := l + s - l*s
	if l < 0.5 {
		hi = l * (1 + s)
	}
	lo := 2*l - hi

	return hueChannel(lo, hi, h+1.0/3.0), hueChannel(lo, hi, h), hueChannel(lo, hi, h-1.0/3.0)
}

// hueChannel reads one channel off the hue ramp. t is a hue offset in turns;
// red and blue sit a third of a turn either side of green, so t may fall
// just outside 0..1 and is wrapped first.
func hueChannel(lo, hi, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return lo + (hi-lo)*6*t
	case t < 0.5:
		return hi
	case t < 2.0/3.0:
		return lo + (hi-lo)*(2.0/3.0-t)*6
	default:
		return lo
	}
}
