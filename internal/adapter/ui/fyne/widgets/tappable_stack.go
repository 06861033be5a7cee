package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// TappableStack stacks the spectrum surface under the control overlay and
// turns gestures on the empty area into callbacks: double tap toggles the
// controls, right click opens the source menu, moving the mouse wakes the
// controls up.
type TappableStack struct {
	widget.BaseWidget

	stack *fyne.Container

	// Callbacks
	OnDoubleTapped  func()
	OnSecondaryTap  func(*fyne.PointEvent)
	OnMouseActivity func()
}

// NewTappableStack creates a stack of objects, first one at the bottom.
func NewTappableStack(objects ...fyne.CanvasObject) *TappableStack {
	t := &TappableStack{
		stack: container.NewStack(objects...),
	}
	t.ExtendBaseWidget(t)
	return t
}

// CreateRenderer implements fyne.Widget.
func (t *TappableStack) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.stack)
}

// Tapped implements fyne.Tappable. Single taps fall through to nothing so a
// stray click on the overlay does not change anything.
func (t *TappableStack) Tapped(*fyne.PointEvent) {}

// DoubleTapped implements fyne.DoubleTappable.
func (t *TappableStack) DoubleTapped(*fyne.PointEvent) {
	if t.OnDoubleTapped != nil {
		t.OnDoubleTapped()
	}
}

// TappedSecondary implements fyne.SecondaryTappable (right-click).
func (t *TappableStack) TappedSecondary(pe *fyne.PointEvent) {
	if t.OnSecondaryTap != nil {
		t.OnSecondaryTap(pe)
	}
}

// MouseIn implements desktop.Hoverable.
func (t *TappableStack) MouseIn(*desktop.MouseEvent) {
	t.activity()
}

// MouseMoved implements desktop.Hoverable.
func (t *TappableStack) MouseMoved(*desktop.MouseEvent) {
	t.activity()
}

// MouseOut implements desktop.Hoverable.
func (t *TappableStack) MouseOut() {}

func (t *TappableStack) activity() {
	if t.OnMouseActivity != nil {
		t.OnMouseActivity()
	}
}

var _ fyne.Tappable = (*TappableStack)(nil)
var _ fyne.DoubleTappable = (*TappableStack)(nil)
var _ fyne.SecondaryTappable = (*TappableStack)(nil)
var _ desktop.Hoverable = (*TappableStack)(nil)
