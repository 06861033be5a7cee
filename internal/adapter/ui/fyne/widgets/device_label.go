package widgets

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// DeviceLabel is a list cell that activates its row on double tap.
// A single tap only selects the row, so browsing the list never switches
// the capture device by accident.
type DeviceLabel struct {
	widget.Label

	index      int
	onActivate func(index int)
}

// NewDeviceLabel creates a label calling onActivate with its row index.
func NewDeviceLabel(onActivate func(index int)) *DeviceLabel {
	label := &DeviceLabel{onActivate: onActivate}
	label.Truncation = fyneapp.TextTruncateEllipsis
	label.ExtendBaseWidget(label)
	return label
}

// Bind points the label at a row.
func (l *DeviceLabel) Bind(index int, text string) {
	l.index = index
	l.SetText(text)
}

// Index returns the row the label shows.
func (l *DeviceLabel) Index() int {
	return l.index
}

// DoubleTapped implements fyne.DoubleTappable.
func (l *DeviceLabel) DoubleTapped(*fyneapp.PointEvent) {
	if l.onActivate != nil {
		l.onActivate(l.index)
	}
}

var _ fyneapp.DoubleTappable = (*DeviceLabel)(nil)
