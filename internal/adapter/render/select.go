// Package render picks the render backend for the current environment.
package render

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

// BackendFactory builds a backend, or fails when its surface is unavailable.
type BackendFactory func() (ports.RenderBackend, error)

// Selection is the outcome of Select.
type Selection struct {
	Backend ports.RenderBackend
	Reason  string
}

// Select resolves kind to a backend. Auto prefers the GPU batch backend and
// drops to raster when LIBGL_ALWAYS_SOFTWARE is set or the GPU surface fails.
// Explicit kinds never fall back.
func Select(kind domain.RendererKind, gpu, raster BackendFactory) (Selection, error) {
	switch kind {
	case domain.RendererGPU:
		return build(gpu, "requested")
	case domain.RendererRaster:
		return build(raster, "requested")
	case domain.RendererAuto, "":
		if softwareGL() {
			return build(raster, "LIBGL_ALWAYS_SOFTWARE is set")
		}
		sel, err := build(gpu, "auto")
		if err == nil {
			return sel, nil
		}
		fallback, rerr := build(raster, fmt.Sprintf("gpu unavailable: %v", err))
		if rerr != nil {
			return Selection{}, errors.Join(err, rerr)
		}
		return fallback, nil
	default:
		return Selection{}, domain.NewValidationError("window.renderer", kind, "must be auto, gpu or raster")
	}
}

func build(factory BackendFactory, reason string) (Selection, error) {
	if factory == nil {
		return Selection{}, domain.ErrNoRenderSurface
	}
	backend, err := factory()
	if err != nil {
		return Selection{}, err
	}
	if backend == nil {
		return Selection{}, domain.ErrNoRenderSurface
	}
	return Selection{Backend: backend, Reason: reason}, nil
}

func softwareGL() bool {
	v := strings.TrimSpace(os.Getenv("LIBGL_ALWAYS_SOFTWARE"))
	return v != "" && v != "0" && !strings.EqualFold(v, "false")
}
