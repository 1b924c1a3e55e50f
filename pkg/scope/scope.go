// Package scope draws a scrolling oscillogram of the measurement
// history: one trace for bus voltage and one for load current, each
// auto-scaled to its own axis.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/Hunter522/AtxPsuDmm/pkg/config"
	"github.com/Hunter522/AtxPsuDmm/pkg/sample"
)

// ScopeWidget is a custom Fyne widget that displays the voltage and
// current traces oscilloscope-style.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu           sync.RWMutex
	latest       sample.Measurement
	haveLatest   bool
	measurements []sample.Measurement

	// Display buffer (reused for downsampling)
	displayMeasurements []sample.Measurement

	// Auto-scaling, one axis per trace
	voltsMin, voltsMax float32
	ampsMin, ampsMax   float32
	xMin, xMax         time.Time

	// Display settings
	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:                 cfg,
		measurements:        make([]sample.Measurement, 0),
		displayMeasurements: make([]sample.Measurement, 0, 1000),
		maxDisplayPoints:    1000, // Limit points for efficient rendering
	}
	if cfg.History.MaxPoints > 0 {
		s.maxDisplayPoints = cfg.History.MaxPoints
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display empty scope
	s.Refresh()
	return s
}

// UpdateData updates the widget with new measurement data.
// This should be called from the measurement callback using fyne.Do().
func (s *ScopeWidget) UpdateData(latest sample.Measurement, history []sample.Measurement) {
	s.mu.Lock()

	// Downsample for display (reuse buffer)
	s.displayMeasurements = sample.DownsampleMeasurements(s.displayMeasurements, history, s.maxDisplayPoints)

	// Store full data
	s.latest = latest
	s.haveLatest = true
	s.measurements = history

	// Calculate auto-scaling
	s.updateAutoScale()

	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// updateAutoScale calculates the axis ranges from current data.
func (s *ScopeWidget) updateAutoScale() {
	if len(s.displayMeasurements) == 0 {
		s.voltsMin, s.voltsMax = 0, 1
		s.ampsMin, s.ampsMax = 0, 1
		s.xMin = time.Now()
		s.xMax = time.Now().Add(10 * time.Second)
		return
	}

	first := s.displayMeasurements[0]
	s.voltsMin, s.voltsMax = first.Volts, first.Volts
	s.ampsMin, s.ampsMax = first.Amps, first.Amps
	for _, m := range s.displayMeasurements {
		if m.Volts < s.voltsMin {
			s.voltsMin = m.Volts
		}
		if m.Volts > s.voltsMax {
			s.voltsMax = m.Volts
		}
		if m.Amps < s.ampsMin {
			s.ampsMin = m.Amps
		}
		if m.Amps > s.ampsMax {
			s.ampsMax = m.Amps
		}
	}

	// Add 10% margin to each axis
	s.voltsMin, s.voltsMax = widen(s.voltsMin, s.voltsMax)
	s.ampsMin, s.ampsMax = widen(s.ampsMin, s.ampsMax)

	// Time range
	s.xMin = s.displayMeasurements[0].Timestamp
	s.xMax = s.displayMeasurements[len(s.displayMeasurements)-1].Timestamp
	// Ensure minimum window
	windowDur := time.Duration(s.cfg.History.WindowSeconds) * time.Second
	if windowDur <= 0 {
		windowDur = 10 * time.Second
	}
	if s.xMax.Sub(s.xMin) < windowDur {
		s.xMax = s.xMin.Add(windowDur)
	}
}

// widen pads an axis range by 10%, opening up flat traces.
func widen(lo, hi float32) (float32, float32) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	return lo - margin, hi + margin
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:    s,
		grid:     grid,
		objects:  []fyne.CanvasObject{grid},
		lastSize: fyne.Size{Width: 0, Height: 0},
	}
}
