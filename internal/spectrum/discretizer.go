package spectrum

import (
	"math/rand/v2"
)

// Band is the frequency band a bar belongs to.
type Band int

// Bands, ordered from the bottom of the screen upward.
const (
	BandLow Band = iota
	BandMid
	BandHigh
)

// String returns the band name.
func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMid:
		return "mid"
	default:
		return "high"
	}
}

const (
	lowBandEnd = 0.3
	midBandEnd = 0.7

	// softZoneFraction is the width of the soft zone below a threshold.
	softZoneFraction = 0.15
)

// Level thresholds per band. Bass needs more energy per dot, treble less.
var bandThresholds = [...][10]float64{
	BandLow:  {20, 45, 80, 125, 180, 245, 320, 405, 500, 610},
	BandMid:  {15, 35, 60, 90, 130, 180, 240, 310, 390, 480},
	BandHigh: {10, 22, 38, 58, 85, 120, 165, 220, 285, 360},
}

// BandFor returns the band for a normalised bar position.
func BandFor(position float64) Band {
	switch {
	case position < lowBandEnd:
		return BandLow
	case position < midBandEnd:
		return BandMid
	default:
		return BandHigh
	}
}

// Thresholds returns a copy of the threshold table for a band.
func Thresholds(b Band) [10]float64 {
	return bandThresholds[b]
}

// RandomSource yields uniform values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a seeded source for soft-zone decisions.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Discretizer converts a bar's audio level into a lit dot count.
type Discretizer struct {
	DotsPerBar int

	// SoftZoneProbability scales the chance that a level just under a
	// threshold still lights that dot. Zero makes the result deterministic.
	SoftZoneProbability float64

	Rand RandomSource
}

// LitDots returns the number of lit dots in [0, DotsPerBar].
//
// Thresholds are walked in order. The first unmet threshold may still count
// when the level falls inside its soft zone; the walk stops there either way.
func (d Discretizer) LitDots(level, position float64) int {
	thresholds := &bandThresholds[BandFor(position)]

	lit := 0
	for t, threshold := range thresholds {
		if level >= threshold {
			lit = t + 1
			continue
		}

		softZone := threshold * softZoneFraction
		if d.SoftZoneProbability > 0 && d.Rand != nil && level >= threshold-softZone {
			probability := (level - (threshold - softZone)) / softZone
			if d.Rand.Float64() < probability*d.SoftZoneProbability {
				lit = t + 1
			}
		}
		break
	}

	return min(lit, d.DotsPerBar)
}
