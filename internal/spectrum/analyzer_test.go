package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sine(n, cycles int, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*float64(cycles)*float64(i)/float64(n))
	}
	return out
}

func TestAnalyzer_Silence(t *testing.T) {
	a := NewAnalyzer(1024, 0.3, -100, -30)
	out := make([]byte, a.BinCount())

	a.ByteFrequencyData(make([]float64, 1024), out)

	for k, v := range out {
		assert.Zero(t, v, "bin %d", k)
	}
}

func TestAnalyzer_SinePeak(t *testing.T) {
	a := NewAnalyzer(1024, 0.3, -100, -30)
	out := make([]byte, a.BinCount())

	a.ByteFrequencyData(sine(1024, 32, 1), out)

	assert.Equal(t, 512, a.BinCount())
	assert.Equal(t, byte(255), out[32])
	assert.Less(t, out[300], out[32])

	peak := 0
	for k := range out {
		if out[k] > out[peak] {
			peak = k
		}
	}
	assert.InDelta(t, 32, peak, 3)
}

func TestAnalyzer_QuietSineScalesDown(t *testing.T) {
	loud := NewAnalyzer(1024, 0, -100, -30)
	quiet := NewAnalyzer(1024, 0, -100, -30)
	outLoud := make([]byte, 512)
	outQuiet := make([]byte, 512)

	loud.ByteFrequencyData(sine(1024, 64, 0.01), outLoud)
	quiet.ByteFrequencyData(sine(1024, 64, 0.0001), outQuiet)

	assert.Greater(t, outLoud[64], outQuiet[64])
	assert.Greater(t, outQuiet[64], byte(0))
}

func TestAnalyzer_TimeSmoothing(t *testing.T) {
	a := NewAnalyzer(256, 0.8, -100, -30)
	out := make([]byte, a.BinCount())
	signal := sine(256, 16, 0.001)

	a.ByteFrequencyData(signal, out)
	first := out[16]

	a.ByteFrequencyData(signal, out)
	second := out[16]

	// The smoothed magnitude climbs toward the steady value
	assert.Greater(t, second, first)

	a.Reset()
	a.ByteFrequencyData(signal, out)
	assert.Equal(t, first, out[16])
}

func TestAnalyzer_ShortInputIsPadded(t *testing.T) {
	a := NewAnalyzer(512, 0, -100, -30)
	out := make([]byte, a.BinCount())

	assert.NotPanics(t, func() {
		a.ByteFrequencyData(sine(100, 5, 0.5), out)
		a.ByteFrequencyData(sine(2048, 5, 0.5), out)
	})
	assert.Equal(t, 512, a.Size())
}
