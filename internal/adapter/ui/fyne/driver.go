package fyne

import (
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
)

// errorLogInterval bounds how often a repeating frame error is logged.
const errorLogInterval = 5 * time.Second

// FrameDriver advances the spectrum renderer from fyne's animation runner,
// which fires once per display refresh on the UI goroutine. Ticks that come
// faster than the configured frame rate are skipped.
type FrameDriver struct {
	// Dependencies
	logger *slog.Logger
	step   func() error
	clock  func() time.Time

	// State
	interval   time.Duration
	anim       *fyneapp.Animation
	last       time.Time
	running    bool
	failures   int
	lastLogged time.Time

	// Concurrency control
	mu sync.Mutex
}

// NewFrameDriver creates a driver calling step at most fps times per second.
// A non-positive fps disables throttling.
func NewFrameDriver(step func() error, fps int) *FrameDriver {
	var interval time.Duration
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}
	d := &FrameDriver{
		logger:   slog.Default(),
		step:     step,
		clock:    time.Now,
		interval: interval,
	}
	d.anim = fyneapp.NewAnimation(time.Second, func(float32) { d.Tick() })
	d.anim.RepeatCount = fyneapp.AnimationRepeatForever
	d.anim.Curve = fyneapp.AnimationLinear
	return d
}

// SetLogger sets the logger for this driver.
func (d *FrameDriver) SetLogger(logger *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = logger
}

// Start begins driving frames. Calling Start twice is a no-op.
func (d *FrameDriver) Start() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.anim.Start()
}

// Stop halts the animation. The renderer is left as it is.
func (d *FrameDriver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.anim.Stop()
}

// Running reports whether the driver is started.
func (d *FrameDriver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Tick renders a frame unless the previous one was less than a frame
// interval ago. It reports whether a frame was rendered.
func (d *FrameDriver) Tick() bool {
	d.mu.Lock()
	now := d.clock()
	// A quarter interval of slack keeps a 60 Hz display from dropping every
	// other frame at 60 fps because of vsync jitter.
	if !d.last.IsZero() && now.Sub(d.last) < d.interval-d.interval/4 {
		d.mu.Unlock()
		return false
	}
	d.last = now
	d.mu.Unlock()

	err := d.step()

	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		if d.failures > 0 {
			d.logger.Info("frames rendering again", slog.Int("failed_frames", d.failures))
		}
		d.failures = 0
		return true
	}

	d.failures++
	if d.failures == 1 || now.Sub(d.lastLogged) >= errorLogInterval {
		d.logger.Error("frame failed", slog.Int("failed_frames", d.failures), slog.Any("error", err))
		d.lastLogged = now
	}
	return true
}
