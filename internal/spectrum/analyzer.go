// Package spectrum implements the signal-to-visual pipeline: spectral analysis,
// temporal smoothing, bar mapping, threshold discretization and color synthesis,
// plus the per-frame orchestration that ties them together.
package spectrum

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Analyzer turns time-domain samples into byte magnitudes per frequency bin.
//
// The output follows the browser AnalyserNode byte spectrum: a Blackman
// window, magnitudes normalised by the FFT size, exponential smoothing over
// time, then a decibel range mapped linearly onto 0..255.
//
// An Analyzer keeps smoothing state and is not safe for concurrent use.
type Analyzer struct {
	size      int
	smoothing float64
	minDb     float64
	maxDb     float64

	window   []float64
	frame    []float64
	smoothed []float64
}

// NewAnalyzer creates an analyzer for fftSize samples (a power of two).
func NewAnalyzer(fftSize int, smoothing, minDb, maxDb float64) *Analyzer {
	return &Analyzer{
		size:      fftSize,
		smoothing: smoothing,
		minDb:     minDb,
		maxDb:     maxDb,
		window:    window.Blackman(fftSize),
		frame:     make([]float64, fftSize),
		smoothed:  make([]float64, fftSize/2),
	}
}

// Size returns the FFT size.
func (a *Analyzer) Size() int {
	return a.size
}

// BinCount returns the number of bins written by ByteFrequencyData.
func (a *Analyzer) BinCount() int {
	return a.size / 2
}

// ByteFrequencyData analyses the most recent samples and writes one byte per
// bin into out. Fewer than Size samples are zero padded at the front; extra
// samples at the front are ignored.
func (a *Analyzer) ByteFrequencyData(samples []float64, out []byte) {
	if len(samples) > a.size {
		samples = samples[len(samples)-a.size:]
	}
	pad := a.size - len(samples)
	for i := range a.frame {
		if i < pad {
			a.frame[i] = 0
			continue
		}
		a.frame[i] = samples[i-pad] * a.window[i]
	}

	coeffs := fft.FFTReal(a.frame)

	scale := 255 / (a.maxDb - a.minDb)
	n := float64(a.size)
	for k := 0; k < len(a.smoothed) && k < len(out); k++ {
		mag := cmplx.Abs(coeffs[k]) / n
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag

		if a.smoothed[k] <= 0 {
			out[k] = 0
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		out[k] = byte(clamp(scale*(db-a.minDb), 0, 255))
	}
}

// Reset clears the smoothing history.
func (a *Analyzer) Reset() {
	clear(a.smoothed)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
