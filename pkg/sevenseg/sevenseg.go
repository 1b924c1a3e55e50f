// Package sevenseg renders the panel's two four-digit LED rows as a
// Fyne widget. The widget doubles as a display.Driver, so the render
// pipeline writes to it exactly as it writes to the hardware chip.
package sevenseg

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/Hunter522/AtxPsuDmm/pkg/display"
)

var _ display.Driver = (*Widget)(nil)

// Widget shows the eight-digit bank. The driver methods only latch
// state; the owner refreshes the widget from the UI thread, typically
// inside fyne.Do() from a measurement callback.
type Widget struct {
	widget.BaseWidget

	bank *display.Sim
}

// New creates a blank bank.
func New() *Widget {
	w := &Widget{bank: display.NewSim()}
	w.ExtendBaseWidget(w)
	return w
}

// Bank returns the latched display state backing the widget.
func (w *Widget) Bank() *display.Sim {
	return w.bank
}

// SetDigit latches one digit.
func (w *Widget) SetDigit(pos, value uint8, decimal bool) error {
	return w.bank.SetDigit(pos, value, decimal)
}

// Clear blanks the whole bank.
func (w *Widget) Clear() error {
	return w.bank.Clear()
}

// SetIntensity sets the brightness of lit segments.
func (w *Widget) SetIntensity(level uint8) error {
	return w.bank.SetIntensity(level)
}

// Shutdown darkens the bank while keeping the latched digits.
func (w *Widget) Shutdown(enable bool) error {
	return w.bank.Shutdown(enable)
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 12, G: 8, B: 8, A: 255})
	return &bankRenderer{
		widget:     w,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}
