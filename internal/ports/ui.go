package ports

import "github.com/tejashwikalptaru/gospectrum/internal/domain"

// StatusView is the presentation surface a host exposes to the presenter.
// The presenter translates domain events into these calls.
//
// Thread-safety: Implementations marshal onto their own UI thread; the
// presenter may call from any goroutine.
type StatusView interface {
	// SetStatus shows a one line status message.
	SetStatus(message string)

	// SetActiveSource highlights the control for the active source kind.
	SetActiveSource(kind domain.SourceKind)

	// SetDevices replaces the device picker contents.
	SetDevices(devices []domain.DeviceInfo)

	// SetRenderer shows which render backend is in use.
	SetRenderer(name string)
}
