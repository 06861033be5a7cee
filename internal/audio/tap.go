package audio

import "io"

// Tap passes s16le PCM through from a reader while copying every chunk into
// a Stream. The player drains the Tap and the visualizer sees exactly what
// was handed to the output device.
type Tap struct {
	r        io.Reader
	stream   *Stream
	channels int
	carry    []byte
}

// NewTap wraps r, whose PCM has the given channel count.
func NewTap(r io.Reader, stream *Stream, channels int) *Tap {
	return &Tap{r: r, stream: stream, channels: channels}
}

// Read implements io.Reader.
func (t *Tap) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.feed(p[:n])
	}
	return n, err
}

// feed forwards whole frames and carries a split frame over to the next read.
func (t *Tap) feed(chunk []byte) {
	frame := 2 * t.channels
	if len(t.carry) > 0 {
		chunk = append(t.carry, chunk...)
		t.carry = nil
	}
	whole := len(chunk) - len(chunk)%frame
	if whole > 0 {
		t.stream.WriteS16LE(chunk[:whole], t.channels)
	}
	if whole < len(chunk) {
		t.carry = append([]byte(nil), chunk[whole:]...)
	}
}
