package file

import (
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
)

// pcmDecoder yields interleaved signed 16-bit little-endian PCM at the file's
// native rate and channel count.
type pcmDecoder interface {
	io.Reader
	SampleRate() int
	Channels() int
}

// SupportedExtensions lists the extensions Open accepts.
var SupportedExtensions = []string{".wav", ".mp3", ".ogg", ".flac"}

// newDecoder picks a decoder by file extension.
func newDecoder(name string, r io.ReadSeeker) (pcmDecoder, error) {
	ext := strings.ToLower(filepath.Ext(name))
	var (
		dec pcmDecoder
		err error
	)
	switch ext {
	case ".mp3":
		dec, err = newMP3Decoder(r)
	case ".wav":
		dec, err = newWAVDecoder(r)
	case ".flac":
		dec, err = newFLACDecoder(r)
	case ".ogg":
		dec, err = newOGGDecoder(r)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, domain.Malformed(err)
	}
	if dec.Channels() <= 0 || dec.SampleRate() <= 0 {
		return nil, domain.Malformed(fmt.Errorf("%d channels at %d Hz", dec.Channels(), dec.SampleRate()))
	}
	return dec, nil
}

// --- MP3 ---

type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(r io.Reader) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) SampleRate() int            { return d.dec.SampleRate() }
func (d *mp3Decoder) Channels() int              { return 2 }

// --- WAV ---

type wavDecoder struct {
	r          io.Reader
	buf        []byte
	sampleRate int
	channels   int
	bitDepth   int
}

func newWAVDecoder(r io.ReadSeeker) (*wavDecoder, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", dec.BitDepth)
	}
	return &wavDecoder{
		r:          io.LimitReader(r, dec.PCMLen()),
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	width := d.bitDepth / 8
	count := max(len(p)/2, 1)
	src := make([]byte, count*width)
	n, err := io.ReadFull(d.r, src)
	samples := n / width
	if samples == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		off := i * width
		var s int
		switch d.bitDepth {
		case 8:
			s = (int(src[off]) - 128) << 8
		case 16:
			s = int(int16(binary.LittleEndian.Uint16(src[off:])))
		case 24:
			v := int32(src[off]) | int32(src[off+1])<<8 | int32(src[off+2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			s = int(v >> 8)
		case 32:
			s = int(int32(binary.LittleEndian.Uint32(src[off:])) >> 16)
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(clampInt16(s)))
	}

	written := copy(p, raw)
	if written < len(raw) {
		d.buf = raw[written:]
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return written, err
}

func (d *wavDecoder) SampleRate() int { return d.sampleRate }
func (d *wavDecoder) Channels() int   { return d.channels }

// --- FLAC ---

type flacDecoder struct {
	stream     *flac.Stream
	buf        []byte
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(r io.Reader) (*flacDecoder, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(stream.Info.SampleRate),
		channels:   int(stream.Info.NChannels),
		bps:        int(stream.Info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	samples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, samples*d.channels*2)
	for i := 0; i < samples; i++ {
		for ch := 0; ch < d.channels; ch++ {
			s := int(frame.Subframes[ch].Samples[i])
			switch {
			case d.bps > 16:
				s >>= d.bps - 16
			case d.bps < 16:
				s <<= 16 - d.bps
			}
			off := (i*d.channels + ch) * 2
			binary.LittleEndian.PutUint16(raw[off:], uint16(clampInt16(s)))
		}
	}

	written := copy(p, raw)
	if written < len(raw) {
		d.buf = raw[written:]
	}
	return written, nil
}

func (d *flacDecoder) SampleRate() int { return d.sampleRate }
func (d *flacDecoder) Channels() int   { return d.channels }

// --- Ogg Vorbis ---

type oggDecoder struct {
	reader *oggvorbis.Reader
	buf    []byte
}

func newOGGDecoder(r io.Reader) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{reader: reader}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	samples := make([]float32, max(len(p)/2, 1))
	n, err := d.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i, s := range samples[:n] {
		s = min(max(s, -1), 1)
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(s*32767)))
	}

	written := copy(p, raw)
	if written < len(raw) {
		d.buf = raw[written:]
	}
	return written, err
}

func (d *oggDecoder) SampleRate() int { return d.reader.SampleRate() }
func (d *oggDecoder) Channels() int   { return d.reader.Channels() }

func clampInt16(s int) int16 {
	return int16(min(max(s, -32768), 32767))
}
