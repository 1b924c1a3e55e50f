package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/Hunter522/AtxPsuDmm/pkg/sample"
)

// Trace and axis colors.
var (
	colorGridLine = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	colorAxisText = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	colorVolts    = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	colorAmps     = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
	colorReadout  = color.RGBA{R: 200, G: 200, B: 200, A: 255} // Light gray
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Grid lines and axis labels
	gridLines []*canvas.Line
	gridTexts []*canvas.Text

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	// Background fills entire widget
	r.grid.Resize(size)

	// Check if size changed
	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		// Size changed, trigger widget refresh to redraw with new dimensions
		// Use BaseWidget.Refresh() to properly trigger Fyne's refresh cycle
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	measurements := r.scope.displayMeasurements
	latest := r.scope.latest
	haveLatest := r.scope.haveLatest
	voltsMin := r.scope.voltsMin
	voltsMax := r.scope.voltsMax
	ampsMin := r.scope.ampsMin
	ampsMax := r.scope.ampsMax
	xMin := r.scope.xMin
	xMax := r.scope.xMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	// Clear old objects (but keep grid)
	r.objects = []fyne.CanvasObject{r.grid}
	r.gridLines = r.gridLines[:0]
	r.gridTexts = r.gridTexts[:0]

	// Calculate margins; both side margins carry axis labels
	marginLeft := float32(60.0)
	marginRight := float32(60.0)
	marginTop := float32(20.0)
	marginBottom := float32(40.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	// Draw grid with volts labels on the left, amps on the right
	r.drawGrid(plotX, plotY, plotWidth, plotHeight, voltsMin, voltsMax, ampsMin, ampsMax, xMin, xMax)

	// Draw traces
	if len(measurements) > 1 {
		r.drawTrace(plotX, plotY, plotWidth, plotHeight, measurements, xMin, xMax, voltsMin, voltsMax,
			func(m sample.Measurement) float32 { return m.Volts }, colorVolts, 1.5)
		r.drawTrace(plotX, plotY, plotWidth, plotHeight, measurements, xMin, xMax, ampsMin, ampsMax,
			func(m sample.Measurement) float32 { return m.Amps }, colorAmps, 2.5)
	}

	// Draw the latest readout in the corner
	if haveLatest {
		r.drawReadout(plotX, plotY, latest)
	}
}

// drawGrid draws the oscilloscope-style grid.
func (r *scopeRenderer) drawGrid(plotX, plotY, plotWidth, plotHeight float32, voltsMin, voltsMax, ampsMin, ampsMax float32, xMin, xMax time.Time) {
	// Horizontal grid lines with a voltage label left and a current
	// label right
	numHLines := 8
	for i := 0; i < numHLines+1; i++ {
		y := plotY + float32(i)*plotHeight/float32(numHLines)
		line := canvas.NewLine(colorGridLine)
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotWidth, y)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		volts := voltsMax - float32(i)*(voltsMax-voltsMin)/float32(numHLines)
		left := canvas.NewText(formatVolts(volts), colorAxisText)
		left.TextSize = 10
		left.Alignment = fyne.TextAlignTrailing
		left.Move(fyne.NewPos(plotX-5, y-6))
		r.gridTexts = append(r.gridTexts, left)
		r.objects = append(r.objects, left)

		amps := ampsMax - float32(i)*(ampsMax-ampsMin)/float32(numHLines)
		right := canvas.NewText(formatAmps(amps), colorAxisText)
		right.TextSize = 10
		right.Alignment = fyne.TextAlignLeading
		right.Move(fyne.NewPos(plotX+plotWidth+5, y-6))
		r.gridTexts = append(r.gridTexts, right)
		r.objects = append(r.objects, right)
	}

	// Vertical grid lines (time)
	numVLines := 10
	for i := 0; i < numVLines+1; i++ {
		x := plotX + float32(i)*plotWidth/float32(numVLines)
		line := canvas.NewLine(colorGridLine)
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		// X-axis label
		timeOffset := float64(i) * xMax.Sub(xMin).Seconds() / float64(numVLines)
		text := canvas.NewText(formatSeconds(time.Duration(timeOffset*float64(time.Second))), colorAxisText)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, plotY+plotHeight+5))
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, text)
	}
}

// drawTrace draws one measurement curve, normalized to its own axis.
func (r *scopeRenderer) drawTrace(plotX, plotY, plotWidth, plotHeight float32, measurements []sample.Measurement, xMin, xMax time.Time, yMin, yMax float32, value func(sample.Measurement) float32, col color.RGBA, stroke float32) {
	if len(measurements) < 2 {
		return
	}

	span := xMax.Sub(xMin).Seconds()
	points := make([]fyne.Position, 0, len(measurements))
	for _, m := range measurements {
		x := plotX + float32(m.Timestamp.Sub(xMin).Seconds()/span)*plotWidth
		y := plotY + plotHeight - (value(m)-yMin)/(yMax-yMin)*plotHeight
		points = append(points, fyne.NewPos(x, y))
	}

	// Draw connected line segments
	for i := 0; i < len(points)-1; i++ {
		line := canvas.NewLine(col)
		line.Position1 = points[i]
		line.Position2 = points[i+1]
		line.StrokeWidth = stroke
		r.objects = append(r.objects, line)
	}
}

// drawReadout draws the latest measurement pair in the corner.
func (r *scopeRenderer) drawReadout(plotX, plotY float32, latest sample.Measurement) {
	text := canvas.NewText(formatVolts(latest.Volts)+"  "+formatAmps(latest.Amps), colorReadout)
	text.TextSize = 11
	text.Alignment = fyne.TextAlignLeading
	text.Move(fyne.NewPos(plotX+10, plotY+10))
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

// Helper functions for formatting

func formatVolts(v float32) string {
	return fmt.Sprintf("%.2fV", v)
}

func formatAmps(a float32) string {
	return fmt.Sprintf("%.3fA", a)
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
