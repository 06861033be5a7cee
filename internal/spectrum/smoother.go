package spectrum

// Smooth returns the next smoothed value for one bin.
//
// Rising input (attack) blends with weight alpha on the previous value;
// falling or equal input (decay) uses the smaller weight alpha*decay, so the
// value follows drops faster than it would with alpha alone.
func Smooth(prev float64, raw byte, alpha, decay float64) float64 {
	r := float64(raw)
	if r > prev {
		return prev*alpha + r*(1-alpha)
	}
	w := alpha * decay
	return prev*w + r*(1-w)
}

// Smoother applies Smooth across a whole channel.
type Smoother struct {
	Alpha float64
	Decay float64
}

// Apply updates smoothed in place from raw. Both slices are walked up to the
// shorter length.
func (s Smoother) Apply(smoothed []float64, raw []byte) {
	n := min(len(smoothed), len(raw))
	for i := 0; i < n; i++ {
		smoothed[i] = Smooth(smoothed[i], raw[i], s.Alpha, s.Decay)
	}
}

// ChannelState is the per-channel pipeline state. Raw is overwritten every
// frame; Smoothed persists for the lifetime of the renderer.
type ChannelState struct {
	Raw      []byte
	Smoothed []float64
}

// NewChannelState allocates state for binCount bins.
func NewChannelState(binCount int) ChannelState {
	return ChannelState{
		Raw:      make([]byte, binCount),
		Smoothed: make([]float64, binCount),
	}
}
