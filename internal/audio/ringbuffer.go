// Package audio holds the PCM plumbing shared by live sources: sample ring
// buffers, a playback tap and the per-channel analysis stream.
package audio

import "sync"

// RingBuffer is a thread-safe circular buffer of mono samples.
type RingBuffer struct {
	buf  []float64
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

// NewRingBuffer creates a ring buffer holding size samples.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		buf:  make([]float64, size),
		size: size,
	}
}

// Write appends samples, overwriting the oldest when full.
func (rb *RingBuffer) Write(p []float64) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if len(p) >= rb.size {
		copy(rb.buf, p[len(p)-rb.size:])
		rb.w = 0
		rb.len = rb.size
		return
	}

	n := copy(rb.buf[rb.w:], p)
	if n < len(p) {
		copy(rb.buf, p[n:])
	}
	rb.w = (rb.w + len(p)) % rb.size
	rb.len = min(rb.len+len(p), rb.size)
}

// Latest copies the most recent samples into dst, oldest first, and returns
// how many were copied. When fewer samples exist than len(dst), only the
// tail of dst is written.
func (rb *RingBuffer) Latest(dst []float64) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := min(len(dst), rb.len)
	if n == 0 {
		return 0
	}

	out := dst[len(dst)-n:]
	start := (rb.w - n + rb.size) % rb.size
	first := copy(out, rb.buf[start:min(start+n, rb.size)])
	copy(out[first:], rb.buf[:n-first])
	return n
}

// Len returns the number of buffered samples.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.len
}

// Clear resets the buffer.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.w = 0
	rb.len = 0
}
