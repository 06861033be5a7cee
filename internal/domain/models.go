// Package domain defines the core domain models for the spectrum visualizer.
// These models are pure data structures with no external dependencies.
package domain

import (
	"fmt"
	"strings"
)

// SourceKind identifies where audio comes from.
type SourceKind string

// Supported source kinds.
const (
	SourceSystem     SourceKind = "system"     // desktop/system audio (loopback or virtual device)
	SourceMicrophone SourceKind = "microphone" // default capture device
	SourceDevice     SourceKind = "device"     // a specific capture device by ID
	SourceFile       SourceKind = "file"       // a local audio file played back while analyzed
	SourceDemo       SourceKind = "demo"       // synthetic signal, always available
)

// ParseSourceKind converts a string to a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch k := SourceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case SourceSystem, SourceMicrophone, SourceDevice, SourceFile, SourceDemo:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSourceKind, s)
	}
}

// IsLive reports whether the kind reads a real audio stream.
func (k SourceKind) IsLive() bool {
	return k != SourceDemo && k != ""
}

// SourceRequest describes which source to acquire.
type SourceRequest struct {
	Kind     SourceKind
	DeviceID string // capture device identifier (SourceDevice, optional for SourceSystem)
	Path     string // file path (SourceFile)
}

// String returns a compact description for logs and status text.
func (r SourceRequest) String() string {
	switch {
	case r.Path != "":
		return fmt.Sprintf("%s:%s", r.Kind, r.Path)
	case r.DeviceID != "":
		return fmt.Sprintf("%s:%s", r.Kind, r.DeviceID)
	default:
		return string(r.Kind)
	}
}

// DeviceClass classifies a capture device.
type DeviceClass int

// Device classes.
const (
	DeviceOther      DeviceClass = iota
	DeviceMicrophone             // physical microphone input
	DeviceVirtual                // loopback/virtual cable or monitor of an output
)

// DeviceInfo describes an audio capture device.
type DeviceInfo struct {
	ID    string
	Label string
	Class DeviceClass
}

// Recommended reports whether the device is a good system-audio candidate.
func (d DeviceInfo) Recommended() bool {
	return d.Class == DeviceVirtual
}

// DisplayLabel returns the label used in device pickers.
func (d DeviceInfo) DisplayLabel() string {
	label := d.Label
	if label == "" {
		label = d.ID
	}
	switch d.Class {
	case DeviceVirtual:
		return "🔊 " + label + " (recommended)"
	case DeviceMicrophone:
		return "🎤 " + label
	default:
		return "🔉 " + label
	}
}

// Channel identifies a stereo channel.
type Channel int

// Channels.
const (
	ChannelLeft Channel = iota
	ChannelRight
)

// String returns the channel name.
func (c Channel) String() string {
	if c == ChannelRight {
		return "right"
	}
	return "left"
}

// HSL is a color in hue (degrees, [0,360)), saturation and lightness (percent, [0,100]).
type HSL struct {
	H float64
	S float64
	L float64
}

// RGBA is a color with float channels in [0,1].
type RGBA struct {
	R, G, B, A float64
}

// Bar is the per-frame descriptor of one bar of one channel.
type Bar struct {
	Channel      Channel
	Index        int
	FrequencyBin int
	AudioLevel   float64
	LitDots      int
	Color        HSL
}

// Dot is one rendered cell of a bar.
type Dot struct {
	X, Y          float64
	Width, Height float64
	Lit           bool
	Color         HSL
	Alpha         float64
	RGBA          RGBA
}

// Frame is everything a render backend needs to draw one frame.
// It is rebuilt from scratch every frame.
type Frame struct {
	Number int64
	Width  int
	Height int
	Bars   []Bar
	Dots   []Dot
}

// Reset clears the frame for reuse without releasing its buffers.
func (f *Frame) Reset(width, height int) {
	f.Width = width
	f.Height = height
	f.Bars = f.Bars[:0]
	f.Dots = f.Dots[:0]
}

// RendererKind selects a render backend.
type RendererKind string

// Renderer kinds.
const (
	RendererAuto   RendererKind = "auto"
	RendererGPU    RendererKind = "gpu"
	RendererRaster RendererKind = "raster"
)
