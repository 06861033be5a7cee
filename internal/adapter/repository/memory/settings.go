package memory

import (
	"encoding/json"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/gospectrum/internal/domain"
	"github.com/tejashwikalptaru/gospectrum/internal/ports"
)

const (
	keyLastSource      = "settings.last_source"
	keyControlsVisible = "settings.controls_visible"
)

// SettingsRepository implements ports.SettingsRepository using Fyne preferences.
//
// Thread-safe: All operations protected by sync.RWMutex.
type SettingsRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// storedSource is the persisted form of a domain.SourceRequest.
type storedSource struct {
	Kind     string `json:"kind"`
	DeviceID string `json:"device_id,omitempty"`
	Path     string `json:"path,omitempty"`
}

// NewSettingsRepository creates a settings repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewSettingsRepository(prefs fyne.Preferences) *SettingsRepository {
	return &SettingsRepository{
		prefs: prefs,
	}
}

// SaveLastSource persists the last source that started successfully.
func (r *SettingsRepository) SaveLastSource(request domain.SourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(storedSource{
		Kind:     string(request.Kind),
		DeviceID: request.DeviceID,
		Path:     request.Path,
	})
	if err != nil {
		return domain.NewServiceError("SettingsRepository", "SaveLastSource", "failed to marshal source", err)
	}

	r.prefs.SetString(keyLastSource, string(data))
	return nil
}

// LoadLastSource retrieves the remembered source.
func (r *SettingsRepository) LoadLastSource() (domain.SourceRequest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := r.prefs.String(keyLastSource)
	if data == "" {
		return domain.SourceRequest{}, false, nil
	}

	var stored storedSource
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return domain.SourceRequest{}, false, domain.NewServiceError("SettingsRepository", "LoadLastSource", "failed to unmarshal source", err)
	}
	kind, err := domain.ParseSourceKind(stored.Kind)
	if err != nil {
		return domain.SourceRequest{}, false, domain.NewServiceError("SettingsRepository", "LoadLastSource", "stored source is invalid", err)
	}

	return domain.SourceRequest{Kind: kind, DeviceID: stored.DeviceID, Path: stored.Path}, true, nil
}

// SaveControlsVisible persists whether the control overlay stays open.
func (r *SettingsRepository) SaveControlsVisible(visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetBool(keyControlsVisible, visible)
	return nil
}

// LoadControlsVisible retrieves the overlay state.
func (r *SettingsRepository) LoadControlsVisible() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.BoolWithFallback(keyControlsVisible, false), nil
}

// Clear removes all saved settings.
func (r *SettingsRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyLastSource)
	r.prefs.RemoveValue(keyControlsVisible)

	return nil
}

// Verify interface implementation
var _ ports.SettingsRepository = (*SettingsRepository)(nil)
