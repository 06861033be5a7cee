package file

import (
	"encoding/binary"
	"io"
	"math"
)

const convertChunk = 4096

// converter turns decoder PCM into interleaved stereo s16le at outRate.
// Mono is duplicated, channels beyond the second are dropped, and the rate is
// changed by linear interpolation between neighbouring frames.
type converter struct {
	src      io.Reader
	channels int
	step     float64

	raw     []byte
	buf     []byte
	pending [][2]int16
	srcErr  error

	cur, next [2]int16
	pos       float64
	primed    bool
	last      bool
}

func newConverter(dec pcmDecoder, outRate int) *converter {
	return &converter{
		src:      dec,
		channels: dec.Channels(),
		step:     float64(dec.SampleRate()) / float64(outRate),
		buf:      make([]byte, convertChunk),
	}
}

// Read implements io.Reader. p is filled with whole output frames.
func (c *converter) Read(p []byte) (int, error) {
	if len(p) < 4 {
		return 0, io.ErrShortBuffer
	}
	if !c.primed {
		var ok bool
		if c.cur, ok = c.pull(); !ok {
			return 0, c.endErr()
		}
		if c.next, ok = c.pull(); !ok {
			c.next = c.cur
			c.last = true
		}
		c.primed = true
	}

	n := 0
	for n+4 <= len(p) {
		for c.pos >= 1 {
			if c.last {
				if n > 0 {
					return n, nil
				}
				return 0, c.endErr()
			}
			c.cur = c.next
			f, ok := c.pull()
			if ok {
				c.next = f
			} else {
				c.next = c.cur
				c.last = true
			}
			c.pos--
		}
		for ch := 0; ch < 2; ch++ {
			a, b := float64(c.cur[ch]), float64(c.next[ch])
			v := math.Round(a + (b-a)*c.pos)
			binary.LittleEndian.PutUint16(p[n+ch*2:], uint16(clampInt16(int(v))))
		}
		n += 4
		c.pos += c.step
	}
	return n, nil
}

// pull returns the next source frame as a stereo pair.
func (c *converter) pull() ([2]int16, bool) {
	for len(c.pending) == 0 {
		if c.srcErr != nil {
			return [2]int16{}, false
		}
		c.fill()
	}
	f := c.pending[0]
	c.pending = c.pending[1:]
	return f, true
}

func (c *converter) fill() {
	n, err := c.src.Read(c.buf)
	c.raw = append(c.raw, c.buf[:n]...)

	frame := 2 * c.channels
	whole := len(c.raw) / frame
	for i := 0; i < whole; i++ {
		off := i * frame
		l := int16(binary.LittleEndian.Uint16(c.raw[off:]))
		r := l
		if c.channels > 1 {
			r = int16(binary.LittleEndian.Uint16(c.raw[off+2:]))
		}
		c.pending = append(c.pending, [2]int16{l, r})
	}
	c.raw = append(c.raw[:0], c.raw[whole*frame:]...)

	if err != nil {
		c.srcErr = err
	}
}

func (c *converter) endErr() error {
	if c.srcErr == nil || c.srcErr == io.EOF {
		return io.EOF
	}
	return c.srcErr
}
