package spectrum

import "math"

const (
	// mapperCurve bends bar positions toward low bins.
	mapperCurve = 0.8
	// mapperBoost is the extra gain reached by the top bar.
	mapperBoost = 0.2
)

// NumBars returns how many bars fit in height, capped at half the bin count.
func NumBars(height, barHeight, barGap, binCount int) int {
	pitch := barHeight + barGap
	if pitch <= 0 || height <= 0 {
		return 0
	}
	return max(0, min(height/pitch, binCount/2))
}

// Position returns the normalised position of a bar in [0, 1].
// A single bar sits at 0.
func Position(barIndex, numBars int) float64 {
	if numBars <= 1 {
		return 0
	}
	return float64(barIndex) / float64(numBars-1)
}

// Mapper selects the frequency bin that feeds each bar.
type Mapper struct {
	MinBin int
	MaxBin int
}

// Map returns the bin index and boosted level for barIndex of numBars.
func (m Mapper) Map(barIndex, numBars int, smoothed []float64) (int, float64) {
	if len(smoothed) == 0 || numBars <= 0 {
		return 0, 0
	}

	maxBin := max(min(m.MaxBin, len(smoothed)-1), 0)
	minBin := min(max(m.MinBin, 0), maxBin)

	t := math.Pow(Position(barIndex, numBars), mapperCurve)
	bin := int(math.Floor(float64(minBin) + t*float64(maxBin-minBin)))

	boost := 1 + (float64(barIndex)/float64(numBars))*mapperBoost
	return bin, smoothed[bin] * boost
}
