// Package config holds the visualizer configuration and its TOML loader.
//
// Configuration is read once at startup: built-in defaults, overlaid by an
// optional TOML file, then validated. Nothing mutates it afterwards.
package config

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
)

// Visualizer configures the signal-to-visual pipeline.
type Visualizer struct {
	// Analysis
	FFTSize           int     `toml:"fft_size"`
	AnalyzerSmoothing float64 `toml:"analyzer_smoothing"`
	MinDecibels       float64 `toml:"min_decibels"`
	MaxDecibels       float64 `toml:"max_decibels"`

	// Temporal smoothing
	SmoothingFactor float64 `toml:"smoothing_factor"`
	DecayMultiplier float64 `toml:"decay_multiplier"`

	// Bar mapping
	MinBin int `toml:"min_bin"`
	MaxBin int `toml:"max_bin"`

	// Discretization
	SoftZoneProbability float64 `toml:"soft_zone_probability"`

	// Geometry (pixels)
	DotSize    int  `toml:"dot_size"`
	DotGap     int  `toml:"dot_gap"`
	DotsPerBar int  `toml:"dots_per_bar"`
	BarHeight  int  `toml:"bar_height"`
	BarGap     int  `toml:"bar_gap"`
	EdgeMargin int  `toml:"edge_margin"`
	Stereo     bool `toml:"stereo"`

	// Color
	RainbowBaseHue  float64 `toml:"rainbow_base_hue"`
	RainbowRange    float64 `toml:"rainbow_range"`
	MinSaturation   float64 `toml:"min_saturation"`
	MaxSaturation   float64 `toml:"max_saturation"`
	MinLightness    float64 `toml:"min_lightness"`
	MaxLightness    float64 `toml:"max_lightness"`
	LeftHueOffset   float64 `toml:"left_hue_offset"`
	RightHueOffset  float64 `toml:"right_hue_offset"`
	UnlitDotOpacity float64 `toml:"unlit_dot_opacity"`
}

// BinCount returns the number of frequency bins the analyzer produces.
func (v Visualizer) BinCount() int {
	return v.FFTSize / 2
}

// HueOffset returns the hue offset for a channel.
func (v Visualizer) HueOffset(ch domain.Channel) float64 {
	if ch == domain.ChannelRight {
		return v.RightHueOffset
	}
	return v.LeftHueOffset
}

// Channels returns how many channels are drawn.
func (v Visualizer) Channels() int {
	if v.Stereo {
		return 2
	}
	return 1
}

// Window configures the host surface.
type Window struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	FPS      int    `toml:"fps"`
	Renderer string `toml:"renderer"` // auto, gpu or raster
}

// Source configures which audio source is tried first.
type Source struct {
	Kind       string `toml:"kind"`
	Device     string `toml:"device"`
	File       string `toml:"file"`
	SampleRate int    `toml:"sample_rate"`
	FFmpegPath string `toml:"ffmpeg_path"`
}

// Request returns the source to try first when nothing was remembered.
func (s Source) Request() (domain.SourceRequest, error) {
	kind, err := domain.ParseSourceKind(s.Kind)
	if err != nil {
		return domain.SourceRequest{}, err
	}
	return domain.SourceRequest{Kind: kind, DeviceID: s.Device, Path: s.File}, nil
}

// Log configures logging. Empty values defer to the environment.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the complete configuration document.
type Config struct {
	Visualizer Visualizer `toml:"visualizer"`
	Window     Window     `toml:"window"`
	Source     Source     `toml:"source"`
	Log        Log        `toml:"log"`
}

// DefaultVisualizer returns the stock pipeline configuration.
func DefaultVisualizer() Visualizer {
	return Visualizer{
		FFTSize:           1024,
		AnalyzerSmoothing: 0.3,
		MinDecibels:       -100,
		MaxDecibels:       -30,

		SmoothingFactor: 0.4,
		DecayMultiplier: 0.6,

		MinBin: 2,
		MaxBin: 200,

		SoftZoneProbability: 0.3,

		DotSize:    16,
		DotGap:     4,
		DotsPerBar: 10,
		BarHeight:  20,
		BarGap:     4,
		EdgeMargin: 10,
		Stereo:     true,

		RainbowBaseHue:  0,
		RainbowRange:    360,
		MinSaturation:   70,
		MaxSaturation:   100,
		MinLightness:    15,
		MaxLightness:    85,
		LeftHueOffset:   0,
		RightHueOffset:  180,
		UnlitDotOpacity: 0.5,
	}
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Visualizer: DefaultVisualizer(),
		Window: Window{
			Width:    1280,
			Height:   720,
			FPS:      60,
			Renderer: string(domain.RendererAuto),
		},
		Source: Source{
			Kind:       string(domain.SourceSystem),
			SampleRate: 44100,
			FFmpegPath: "ffmpeg",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, domain.NewValidationError("config", strings.Join(keys, ", "), "unknown keys")
	}

	return cfg, cfg.Validate()
}

// Validate checks the whole document.
func (c Config) Validate() error {
	if err := c.Visualizer.Validate(); err != nil {
		return err
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return domain.NewValidationError("window.size", fmt.Sprintf("%dx%d", c.Window.Width, c.Window.Height), "must be positive")
	}
	if c.Window.FPS <= 0 || c.Window.FPS > 240 {
		return domain.NewValidationError("window.fps", c.Window.FPS, "must be in (0, 240]")
	}
	switch domain.RendererKind(c.Window.Renderer) {
	case domain.RendererAuto, domain.RendererGPU, domain.RendererRaster:
	default:
		return domain.NewValidationError("window.renderer", c.Window.Renderer, "must be auto, gpu or raster")
	}

	if _, err := domain.ParseSourceKind(c.Source.Kind); err != nil {
		return domain.NewValidationError("source.kind", c.Source.Kind, err.Error())
	}
	if c.Source.Kind == string(domain.SourceFile) && c.Source.File == "" {
		return domain.NewValidationError("source.file", c.Source.File, "required when source.kind is file")
	}
	if c.Source.Kind == string(domain.SourceDevice) && c.Source.Device == "" {
		return domain.NewValidationError("source.device", c.Source.Device, "required when source.kind is device")
	}
	if c.Source.SampleRate < 8000 || c.Source.SampleRate > 192000 {
		return domain.NewValidationError("source.sample_rate", c.Source.SampleRate, "must be in [8000, 192000]")
	}
	return nil
}

// Validate checks the pipeline configuration.
func (v Visualizer) Validate() error {
	if v.FFTSize < 32 || v.FFTSize > 32768 || bits.OnesCount(uint(v.FFTSize)) != 1 {
		return domain.NewValidationError("fft_size", v.FFTSize, "must be a power of two in [32, 32768]")
	}
	if v.AnalyzerSmoothing < 0 || v.AnalyzerSmoothing >= 1 {
		return domain.NewValidationError("analyzer_smoothing", v.AnalyzerSmoothing, "must be in [0, 1)")
	}
	if v.MinDecibels >= v.MaxDecibels {
		return domain.NewValidationError("min_decibels", v.MinDecibels, "must be below max_decibels")
	}
	if v.SmoothingFactor < 0 || v.SmoothingFactor > 1 {
		return domain.NewValidationError("smoothing_factor", v.SmoothingFactor, "must be in [0, 1]")
	}
	if v.DecayMultiplier < 0 || v.SmoothingFactor*v.DecayMultiplier > 1 {
		return domain.NewValidationError("decay_multiplier", v.DecayMultiplier, "smoothing_factor * decay_multiplier must be in [0, 1]")
	}
	if v.MinBin < 0 || v.MaxBin < v.MinBin {
		return domain.NewValidationError("min_bin", v.MinBin, "must be non-negative and not above max_bin")
	}
	if v.MinBin >= v.BinCount() {
		return domain.NewValidationError("min_bin", v.MinBin, "must be below the bin count")
	}
	if v.SoftZoneProbability < 0 || v.SoftZoneProbability > 1 {
		return domain.NewValidationError("soft_zone_probability", v.SoftZoneProbability, "must be in [0, 1]")
	}
	if v.DotSize <= 0 || v.BarHeight <= 0 {
		return domain.NewValidationError("dot_size", v.DotSize, "dot_size and bar_height must be positive")
	}
	if v.DotGap < 0 || v.BarGap < 0 || v.EdgeMargin < 0 {
		return domain.NewValidationError("dot_gap", v.DotGap, "gaps and margins must not be negative")
	}
	// Threshold tables stop at ten dots; taller bars keep the rest unlit.
	if v.DotsPerBar < 1 {
		return domain.NewValidationError("dots_per_bar", v.DotsPerBar, "must be positive")
	}
	if v.RainbowRange < 0 || v.RainbowRange > 360 {
		return domain.NewValidationError("rainbow_range", v.RainbowRange, "must be in [0, 360]")
	}
	if v.MinSaturation < 0 || v.MaxSaturation > 100 || v.MinSaturation > v.MaxSaturation {
		return domain.NewValidationError("saturation", fmt.Sprintf("%v..%v", v.MinSaturation, v.MaxSaturation), "must satisfy 0 <= min <= max <= 100")
	}
	if v.MinLightness < 0 || v.MaxLightness > 100 || v.MinLightness > v.MaxLightness {
		return domain.NewValidationError("lightness", fmt.Sprintf("%v..%v", v.MinLightness, v.MaxLightness), "must satisfy 0 <= min <= max <= 100")
	}
	if v.UnlitDotOpacity < 0 || v.UnlitDotOpacity > 1 {
		return domain.NewValidationError("unlit_dot_opacity", v.UnlitDotOpacity, "must be in [0, 1]")
	}
	return nil
}
