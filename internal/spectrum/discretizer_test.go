package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixedRandom returns the same value on every draw.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func TestBandFor(t *testing.T) {
	assert.Equal(t, BandLow, BandFor(0))
	assert.Equal(t, BandLow, BandFor(0.29))
	assert.Equal(t, BandMid, BandFor(0.3))
	assert.Equal(t, BandMid, BandFor(0.69))
	assert.Equal(t, BandHigh, BandFor(0.7))
	assert.Equal(t, BandHigh, BandFor(1))
	assert.Equal(t, "mid", BandMid.String())
}

func TestDiscretizer_LowBandLevel125(t *testing.T) {
	d := Discretizer{DotsPerBar: 10}
	assert.Equal(t, 4, d.LitDots(125, 0))
}

func TestDiscretizer_ExactThresholds(t *testing.T) {
	d := Discretizer{DotsPerBar: 10}

	for _, band := range []Band{BandLow, BandMid, BandHigh} {
		pos := map[Band]float64{BandLow: 0.1, BandMid: 0.5, BandHigh: 0.9}[band]
		for i, th := range Thresholds(band) {
			assert.Equal(t, i+1, d.LitDots(th, pos), "band %s threshold %v", band, th)
			assert.Equal(t, i, d.LitDots(th-0.001, pos), "band %s just under %v", band, th)
		}
	}
}

func TestDiscretizer_Bounds(t *testing.T) {
	d := Discretizer{DotsPerBar: 10}
	assert.Equal(t, 0, d.LitDots(0, 0.5))
	assert.Equal(t, 0, d.LitDots(-3, 0.5))
	assert.Equal(t, 10, d.LitDots(10_000, 0))

	// Fewer dots than thresholds caps the count
	d.DotsPerBar = 6
	assert.Equal(t, 6, d.LitDots(10_000, 0))

	// Taller bars light at most one dot per threshold
	d.DotsPerBar = 12
	assert.Equal(t, 10, d.LitDots(10_000, 0))
}

func TestDiscretizer_MonotoneWithoutSoftZone(t *testing.T) {
	d := Discretizer{DotsPerBar: 10, SoftZoneProbability: 0, Rand: fixedRandom(0)}

	for _, pos := range []float64{0, 0.5, 1} {
		prev := 0
		for level := 0.0; level <= 700; level += 0.5 {
			lit := d.LitDots(level, pos)
			assert.GreaterOrEqual(t, lit, prev, "level %v pos %v", level, pos)
			prev = lit
		}
	}
}

func TestDiscretizer_SoftZone(t *testing.T) {
	// Low band, first unmet threshold 125, soft zone [106.25, 125)
	level := 120.0
	probability := (level - 106.25) / 18.75

	lucky := Discretizer{DotsPerBar: 10, SoftZoneProbability: 0.3, Rand: fixedRandom(probability*0.3 - 0.01)}
	assert.Equal(t, 4, lucky.LitDots(level, 0))

	unlucky := Discretizer{DotsPerBar: 10, SoftZoneProbability: 0.3, Rand: fixedRandom(probability*0.3 + 0.01)}
	assert.Equal(t, 3, unlucky.LitDots(level, 0))

	// Below the soft zone the draw never matters
	assert.Equal(t, 3, lucky.LitDots(100, 0))
}

func TestDiscretizer_SoftZoneStopsAtFirstUnmet(t *testing.T) {
	// Even a certain draw only lights the first unmet threshold
	d := Discretizer{DotsPerBar: 10, SoftZoneProbability: 1, Rand: fixedRandom(0)}
	assert.Equal(t, 4, d.LitDots(124, 0))
}

func TestDiscretizer_SeededSourceIsReproducible(t *testing.T) {
	a := Discretizer{DotsPerBar: 10, SoftZoneProbability: 0.3, Rand: NewRandomSource(7)}
	b := Discretizer{DotsPerBar: 10, SoftZoneProbability: 0.3, Rand: NewRandomSource(7)}

	for i := 0; i < 200; i++ {
		assert.Equal(t, a.LitDots(123, 0), b.LitDots(123, 0))
	}
}
