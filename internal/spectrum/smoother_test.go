package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmooth_AttackAndDecay(t *testing.T) {
	// Rising: 0.4*s + 0.6*r
	assert.InDelta(t, 0.4*100+0.6*200, Smooth(100, 200, 0.4, 0.6), 1e-9)

	// Falling: 0.24*s + 0.76*r
	assert.InDelta(t, 0.24*200+0.76*100, Smooth(200, 100, 0.4, 0.6), 1e-9)

	// Equal input is a fixed point
	assert.Equal(t, 128.0, Smooth(128, 128, 0.4, 0.6))
}

func TestSmooth_StaysBetweenPreviousAndRaw(t *testing.T) {
	for prev := 0.0; prev <= 255; prev += 17 {
		for raw := 0; raw <= 255; raw += 15 {
			next := Smooth(prev, byte(raw), 0.4, 0.6)
			lo, hi := min(prev, float64(raw)), max(prev, float64(raw))
			assert.GreaterOrEqual(t, next, lo)
			assert.LessOrEqual(t, next, hi)
		}
	}
}

func TestSmooth_ConvergesWithoutOvershoot(t *testing.T) {
	for _, target := range []byte{0, 90, 255} {
		for _, start := range []float64{0, 120, 255} {
			s := start
			prevDist := abs(s - float64(target))
			for i := 0; i < 60; i++ {
				s = Smooth(s, target, 0.4, 0.6)
				dist := abs(s - float64(target))
				assert.LessOrEqual(t, dist, prevDist+1e-9)
				if start <= float64(target) {
					assert.LessOrEqual(t, s, float64(target)+1e-9)
				} else {
					assert.GreaterOrEqual(t, s, float64(target)-1e-9)
				}
				prevDist = dist
			}
			assert.InDelta(t, float64(target), s, 1e-6)
		}
	}
}

func TestSmoother_Apply(t *testing.T) {
	smoothed := []float64{0, 100, 50}
	raw := []byte{100, 0, 50, 255} // longer than smoothed

	Smoother{Alpha: 0.4, Decay: 0.6}.Apply(smoothed, raw)

	assert.InDelta(t, 60.0, smoothed[0], 1e-9)
	assert.InDelta(t, 24.0, smoothed[1], 1e-9)
	assert.InDelta(t, 50.0, smoothed[2], 1e-9)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
