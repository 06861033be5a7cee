package spectrum

import "math"

// DemoGenerator synthesises spectrum bytes from layered sinusoids over bin
// position and time. The right channel uses different rates and phases so
// the two sides move independently.
type DemoGenerator struct{}

type demoWave struct {
	rate, spread, phase, amp, bias float64
}

var (
	demoLeft = [3]demoWave{
		{rate: 2, spread: 10, amp: 127, bias: 128},
		{rate: 3, spread: 15, amp: 64, bias: 64},
		{rate: 1.5, spread: 8, amp: 32, bias: 32},
	}
	demoRight = [3]demoWave{
		{rate: 2.2, spread: 12, phase: math.Pi * 0.3, amp: 127, bias: 128},
		{rate: 2.8, spread: 18, phase: math.Pi * 0.5, amp: 64, bias: 64},
		{rate: 1.8, spread: 9, phase: math.Pi * 0.7, amp: 32, bias: 32},
	}
)

// Generate fills left and right for time t in seconds.
func (DemoGenerator) Generate(t float64, left, right []byte) {
	fillDemo(t, demoLeft, left)
	fillDemo(t, demoRight, right)
}

func fillDemo(t float64, waves [3]demoWave, out []byte) {
	n := float64(len(out))
	for i := range out {
		f := float64(i) / n
		v := 0.0
		for _, w := range waves {
			v += math.Sin(t*w.rate+f*w.spread+w.phase)*w.amp + w.bias
		}
		out[i] = byte(clamp(v, 0, 255))
	}
}
