package file

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawDecoder struct {
	io.Reader
	rate     int
	channels int
}

func (d rawDecoder) SampleRate() int { return d.rate }
func (d rawDecoder) Channels() int   { return d.channels }

func pcm(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func frames(t *testing.T, b []byte) [][2]int16 {
	t.Helper()
	require.Zero(t, len(b)%4)
	out := make([][2]int16, len(b)/4)
	for i := range out {
		out[i][0] = int16(binary.LittleEndian.Uint16(b[i*4:]))
		out[i][1] = int16(binary.LittleEndian.Uint16(b[i*4+2:]))
	}
	return out
}

func TestConverter_SameRateStereo(t *testing.T) {
	dec := rawDecoder{Reader: bytes.NewReader(pcm(1, -1, 2, -2, 3, -3)), rate: 44100, channels: 2}
	out, err := io.ReadAll(newConverter(dec, 44100))
	require.NoError(t, err)
	assert.Equal(t, [][2]int16{{1, -1}, {2, -2}, {3, -3}}, frames(t, out))
}

func TestConverter_MonoIsDuplicated(t *testing.T) {
	dec := rawDecoder{Reader: bytes.NewReader(pcm(100, 200)), rate: 44100, channels: 1}
	out, err := io.ReadAll(newConverter(dec, 44100))
	require.NoError(t, err)
	assert.Equal(t, [][2]int16{{100, 100}, {200, 200}}, frames(t, out))
}

func TestConverter_Upsamples(t *testing.T) {
	dec := rawDecoder{Reader: bytes.NewReader(pcm(0, 100, 200)), rate: 22050, channels: 1}
	out, err := io.ReadAll(newConverter(dec, 44100))
	require.NoError(t, err)

	got := frames(t, out)
	require.Len(t, got, 6)
	assert.Equal(t, int16(0), got[0][0])
	assert.Equal(t, int16(50), got[1][0])
	assert.Equal(t, int16(100), got[2][0])
	assert.Equal(t, int16(150), got[3][0])
	assert.Equal(t, int16(200), got[4][0])
	assert.Equal(t, int16(200), got[5][0])
}

func TestConverter_Downsamples(t *testing.T) {
	dec := rawDecoder{Reader: bytes.NewReader(pcm(0, 10, 20, 30, 40, 50, 60, 70)), rate: 88200, channels: 1}
	out, err := io.ReadAll(newConverter(dec, 44100))
	require.NoError(t, err)

	got := frames(t, out)
	require.Len(t, got, 4)
	assert.Equal(t, [][2]int16{{0, 0}, {20, 20}, {40, 40}, {60, 60}}, got)
}

func TestConverter_ExtraChannelsDropped(t *testing.T) {
	dec := rawDecoder{Reader: bytes.NewReader(pcm(1, 2, 3, 4, 5, 6)), rate: 44100, channels: 3}
	out, err := io.ReadAll(newConverter(dec, 44100))
	require.NoError(t, err)
	assert.Equal(t, [][2]int16{{1, 2}, {4, 5}}, frames(t, out))
}

func TestConverter_Empty(t *testing.T) {
	dec := rawDecoder{Reader: bytes.NewReader(nil), rate: 44100, channels: 2}
	n, err := newConverter(dec, 44100).Read(make([]byte, 64))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewDecoder_Unsupported(t *testing.T) {
	_, err := newDecoder("track.aiff", bytes.NewReader(nil))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "aiff")
}
