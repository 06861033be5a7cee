// Package source routes source requests to the adapter for each source kind.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/gospectrum/internal/adapter/source/capture"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/source/demo"
	"github.com/tejashwikalptaru/gospectrum/internal/adapter/source/file"
	"github.com/tejashwikalptaru/gospectrum/internal/config"
	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// Router is a SourceOpener that dispatches on SourceRequest.Kind.
type Router struct {
	openers map[domain.SourceKind]ports.SourceOpener
	lister  ports.DeviceLister
	mu      sync.RWMutex
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{openers: make(map[domain.SourceKind]ports.SourceOpener)}
}

// NewDefaultRouter wires ffmpeg capture, file playback and the demo source.
func NewDefaultRouter(cfg *config.Config, logger *slog.Logger) *Router {
	live := capture.NewOpener(cfg.Source, cfg.Visualizer)
	files := file.NewOpener(cfg.Source, cfg.Visualizer)
	if logger != nil {
		live.SetLogger(logger)
		files.SetLogger(logger)
	}

	r := NewRouter()
	r.Register(domain.SourceSystem, live)
	r.Register(domain.SourceMicrophone, live)
	r.Register(domain.SourceDevice, live)
	r.Register(domain.SourceFile, files)
	r.Register(domain.SourceDemo, demo.Opener{})
	r.SetDeviceLister(live)
	return r
}

// Register routes kind to opener, replacing any earlier registration.
func (r *Router) Register(kind domain.SourceKind, opener ports.SourceOpener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[kind] = opener
}

// SetDeviceLister sets the lister used by ListDevices.
func (r *Router) SetDeviceLister(lister ports.DeviceLister) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lister = lister
}

// Open forwards request to the opener registered for its kind.
func (r *Router) Open(ctx context.Context, request domain.SourceRequest) (ports.SpectrumSource, error) {
	r.mu.RLock()
	opener, ok := r.openers[request.Kind]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.NewSourceError("open", request.Kind, "",
			domain.Unavailable(fmt.Errorf("%w: %q", domain.ErrUnknownSourceKind, request.Kind)))
	}
	return opener.Open(ctx, request)
}

// ListDevices forwards to the configured lister.
func (r *Router) ListDevices(ctx context.Context) ([]domain.DeviceInfo, error) {
	r.mu.RLock()
	lister := r.lister
	r.mu.RUnlock()

	if lister == nil {
		return nil, nil
	}
	return lister.ListDevices(ctx)
}

var (
	_ ports.SourceOpener = (*Router)(nil)
	_ ports.DeviceLister = (*Router)(nil)
)
