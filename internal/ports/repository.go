package ports

import "github.com/tejashwikalptaru/gospectrum/internal/domain"

// SettingsRepository persists what the user picked between runs.
//
// Thread-safety: Implementations must be thread-safe.
type SettingsRepository interface {
	// SaveLastSource remembers the last source that started successfully.
	SaveLastSource(request domain.SourceRequest) error

	// LoadLastSource returns the remembered source, or ok=false if none.
	LoadLastSource() (request domain.SourceRequest, ok bool, err error)

	// SaveControlsVisible remembers whether the control overlay was pinned open.
	SaveControlsVisible(visible bool) error

	// LoadControlsVisible returns the pinned state (default false).
	LoadControlsVisible() (bool, error)

	// Clear removes every saved setting.
	Clear() error
}
