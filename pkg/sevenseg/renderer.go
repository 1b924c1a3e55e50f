package sevenseg

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/Hunter522/AtxPsuDmm/pkg/display"
)

// digitSegments maps a digit value to its lit segments, bits ordered
// a through g from bit 0.
var digitSegments = [10]uint8{
	0x3F, // 0: abcdef
	0x06, // 1: bc
	0x5B, // 2: abdeg
	0x4F, // 3: abcdg
	0x66, // 4: bcfg
	0x6D, // 5: acdfg
	0x7D, // 6: acdefg
	0x07, // 7: abc
	0x7F, // 8: abcdefg
	0x6F, // 9: abcdfg
}

// ghostColor is the faint trace an unlit LED segment leaves.
var ghostColor = color.RGBA{R: 38, G: 22, B: 22, A: 255}

// bankRenderer renders the digit bank.
type bankRenderer struct {
	widget *Widget

	// Background
	background *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *bankRenderer) MinSize() fyne.Size {
	return fyne.NewSize(240, 130)
}

// Layout arranges the widget components.
func (r *bankRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		r.widget.BaseWidget.Refresh()
	}
}

// Refresh redraws the bank from the latched state.
func (r *bankRenderer) Refresh() {
	size := r.widget.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	bank := r.widget.bank
	shutdown := bank.IsShutdown()
	lit := litColor(bank.Intensity())

	// Rebuild all segment objects (but keep the background)
	r.objects = []fyne.CanvasObject{r.background}

	cellW := size.Width / 4
	cellH := size.Height / 2
	for row := 0; row < display.BankSize/4; row++ {
		for col := 0; col < 4; col++ {
			// Most significant digit of each row sits leftmost
			pos := uint8(row*4 + 3 - col)
			value, decimal, on := bank.Digit(pos)

			x := float32(col)*cellW + cellW*0.14
			y := float32(row)*cellH + cellH*0.12
			w := cellW * 0.55
			h := cellH * 0.76

			ghost := shutdown || !on
			r.drawDigit(x, y, w, h, value, decimal, ghost, lit)
		}
	}
}

// drawDigit draws one digit cell with its decimal dot.
func (r *bankRenderer) drawDigit(x, y, w, h float32, value uint8, decimal, ghost bool, lit color.RGBA) {
	t := w * 0.18       // segment thickness
	vh := (h - 3*t) / 2 // vertical segment span

	segs := [7]struct{ x, y, w, h float32 }{
		{x + t, y, w - 2*t, t},           // a
		{x + w - t, y + t, t, vh},        // b
		{x + w - t, y + 2*t + vh, t, vh}, // c
		{x + t, y + h - t, w - 2*t, t},   // d
		{x, y + 2*t + vh, t, vh},         // e
		{x, y + t, t, vh},                // f
		{x + t, y + t + vh, w - 2*t, t},  // g
	}

	mask := uint8(0)
	if value < uint8(len(digitSegments)) {
		mask = digitSegments[value]
	}

	for i, seg := range segs {
		col := ghostColor
		if !ghost && mask&(1<<i) != 0 {
			col = lit
		}
		rect := canvas.NewRectangle(col)
		rect.Move(fyne.NewPos(seg.x, seg.y))
		rect.Resize(fyne.NewSize(seg.w, seg.h))
		r.objects = append(r.objects, rect)
	}

	// Decimal dot to the lower right of the digit
	dotCol := ghostColor
	if !ghost && decimal {
		dotCol = lit
	}
	dot := canvas.NewRectangle(dotCol)
	dot.Move(fyne.NewPos(x+w+t*0.6, y+h-t))
	dot.Resize(fyne.NewSize(t, t))
	r.objects = append(r.objects, dot)
}

// Objects returns all canvas objects for rendering.
func (r *bankRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *bankRenderer) Destroy() {
	// Cleanup handled by Fyne
}

// litColor scales the lit segment color with the chip intensity level.
func litColor(intensity uint8) color.RGBA {
	if intensity > 15 {
		intensity = 15
	}
	return color.RGBA{R: 140 + intensity*7, G: 40, B: 40, A: 255}
}
