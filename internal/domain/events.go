// Package domain defines events for the event-driven architecture.
// Events decouple the source service from the hosts that show status to the user.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Source events
	EventSourceChanged EventType = "source.changed"
	EventSourceFailed  EventType = "source.failed"
	EventSourceStopped EventType = "source.stopped"

	// Device events
	EventDevicesListed EventType = "devices.listed"

	// Presentation events
	EventStatusChanged    EventType = "status.changed"
	EventRendererSelected EventType = "renderer.selected"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// SourceChangedEvent is published when a new source becomes active.
type SourceChangedEvent struct {
	baseEvent
	Kind      SourceKind
	Label     string
	Requested SourceKind // what the caller asked for; differs from Kind after a fallback
}

// Type returns the event type.
func (e SourceChangedEvent) Type() EventType {
	return EventSourceChanged
}

// Fallback reports whether the active source differs from the requested one.
func (e SourceChangedEvent) Fallback() bool {
	return e.Kind != e.Requested
}

// NewSourceChangedEvent creates a new SourceChangedEvent.
func NewSourceChangedEvent(kind SourceKind, label string, requested SourceKind) SourceChangedEvent {
	return SourceChangedEvent{
		baseEvent: newBaseEvent(),
		Kind:      kind,
		Label:     label,
		Requested: requested,
	}
}

// SourceFailedEvent is published when acquiring a source fails.
type SourceFailedEvent struct {
	baseEvent
	Request SourceRequest
	Err     error
}

// Type returns the event type.
func (e SourceFailedEvent) Type() EventType {
	return EventSourceFailed
}

// NewSourceFailedEvent creates a new SourceFailedEvent.
func NewSourceFailedEvent(request SourceRequest, err error) SourceFailedEvent {
	return SourceFailedEvent{
		baseEvent: newBaseEvent(),
		Request:   request,
		Err:       err,
	}
}

// SourceStoppedEvent is published after the active source has been closed.
type SourceStoppedEvent struct {
	baseEvent
	Kind SourceKind
}

// Type returns the event type.
func (e SourceStoppedEvent) Type() EventType {
	return EventSourceStopped
}

// NewSourceStoppedEvent creates a new SourceStoppedEvent.
func NewSourceStoppedEvent(kind SourceKind) SourceStoppedEvent {
	return SourceStoppedEvent{
		baseEvent: newBaseEvent(),
		Kind:      kind,
	}
}

// DevicesListedEvent is published after capture devices were enumerated.
type DevicesListedEvent struct {
	baseEvent
	Devices []DeviceInfo
}

// Type returns the event type.
func (e DevicesListedEvent) Type() EventType {
	return EventDevicesListed
}

// NewDevicesListedEvent creates a new DevicesListedEvent.
func NewDevicesListedEvent(devices []DeviceInfo) DevicesListedEvent {
	return DevicesListedEvent{
		baseEvent: newBaseEvent(),
		Devices:   devices,
	}
}

// StatusChangedEvent carries a human readable status line.
type StatusChangedEvent struct {
	baseEvent
	Message string
}

// Type returns the event type.
func (e StatusChangedEvent) Type() EventType {
	return EventStatusChanged
}

// NewStatusChangedEvent creates a new StatusChangedEvent.
func NewStatusChangedEvent(message string) StatusChangedEvent {
	return StatusChangedEvent{
		baseEvent: newBaseEvent(),
		Message:   message,
	}
}

// RendererSelectedEvent is published once the render backend has been chosen.
type RendererSelectedEvent struct {
	baseEvent
	Backend string
	Reason  string
}

// Type returns the event type.
func (e RendererSelectedEvent) Type() EventType {
	return EventRendererSelected
}

// NewRendererSelectedEvent creates a new RendererSelectedEvent.
func NewRendererSelectedEvent(backend, reason string) RendererSelectedEvent {
	return RendererSelectedEvent{
		baseEvent: newBaseEvent(),
		Backend:   backend,
		Reason:    reason,
	}
}
