// Package meter drives the measurement pipeline. A Meter polls the
// analog front-end through a filtering sampler, converts the estimates
// to physical units, and keeps a time-windowed history of measurements
// for display widgets. It can also ingest readings mirrored from the
// panel's debug stream instead of sampling locally.
package meter

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Hunter522/AtxPsuDmm/pkg/config"
	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
	"github.com/Hunter522/AtxPsuDmm/pkg/sample"
	"github.com/Hunter522/AtxPsuDmm/pkg/telemetry"
)

var _ Source = (*Meter)(nil)

// Display renders one measurement onto a panel. Satisfied by
// render.Renderer.
type Display interface {
	Refresh(m sample.Measurement) error
}

// Source provides measurements to display widgets.
type Source interface {
	Measurements() []sample.Measurement                                     // Get current history (FIFO, ordered first to last)
	Latest() (sample.Measurement, bool)                                     // Get the newest measurement, if any
	OnUpdate(func(latest sample.Measurement, history []sample.Measurement)) // Register callback for updates
}

// Meter implements Source.
type Meter struct {
	sampler sample.Sampler
	scale   sample.Scale

	// History
	// measurements is a FIFO buffer that maintains order:
	// - Oldest measurement is at index 0
	// - Latest measurement is at the end
	// Removal is based on timestamp (time window), not number of entries.
	measurements []sample.Measurement

	// Thread safety
	mu sync.RWMutex

	// Update callbacks
	// Callbacks receive the latest measurement and the current history.
	callbacks []func(latest sample.Measurement, history []sample.Measurement)
	cbMu      sync.RWMutex

	// Configuration
	windowDuration time.Duration
	interval       time.Duration

	// Shutdown control
	shutdown bool // Set to true when an input channel closes, prevents further callbacks
}

// New creates a Meter sampling the given front-end with the filter,
// window size, and scaling named by the config.
func New(cfg *config.Config, adc psu.ADC) (*Meter, error) {
	sampler, err := samplerFor(cfg, adc)
	if err != nil {
		return nil, err
	}

	interval := cfg.Sampling.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	windowDuration := time.Duration(cfg.History.WindowSeconds * float64(time.Second))
	if windowDuration <= 0 {
		windowDuration = time.Minute
	}

	return &Meter{
		sampler:        sampler,
		scale:          cfg.FrontEndScale(),
		measurements:   make([]sample.Measurement, 0),
		callbacks:      make([]func(latest sample.Measurement, history []sample.Measurement), 0),
		windowDuration: windowDuration,
		interval:       interval,
	}, nil
}

// samplerFor builds the filtering sampler named by the config. An empty
// name falls back to the median filter.
func samplerFor(cfg *config.Config, adc psu.ADC) (sample.Sampler, error) {
	switch cfg.Sampling.Filter {
	case config.FilterMedian, "":
		return sample.NewMedian(adc, cfg.Sampling.WindowSize), nil
	case config.FilterMean:
		return sample.NewMean(adc, cfg.Sampling.WindowSize), nil
	case config.FilterCarry:
		return sample.NewCarry(adc, cfg.Sampling.WindowSize), nil
	default:
		return nil, fmt.Errorf("unknown filter %q", cfg.Sampling.Filter)
	}
}

// Acquire runs one sampling pass over both channels and records the
// converted measurement. ok is false while a carry-over filter is still
// accumulating; nothing is recorded then and the display keeps its
// previous values.
func (m *Meter) Acquire() (sample.Measurement, bool) {
	voltEst, voltOK := m.sampler.Sample(psu.ChannelVolts)
	ampEst, ampOK := m.sampler.Sample(psu.ChannelAmps)
	if !voltOK || !ampOK {
		return sample.Measurement{}, false
	}

	meas := m.scale.Measure(time.Now(), voltEst, ampEst)
	m.record(meas)
	return meas, true
}

// Run polls the front-end at the configured interval until ctx is
// cancelled, refreshing disp with each completed measurement. disp may
// be nil for headless acquisition.
func (m *Meter) Run(ctx context.Context, disp Display) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			meas, ok := m.Acquire()
			if !ok || disp == nil {
				continue
			}
			if err := disp.Refresh(meas); err != nil {
				log.Printf("Display refresh failed: %v", err)
			}
		}
	}
}

// ProcessReadings records panel stream readings from the input channel.
// Estimates arrive in raw counts and are converted with the configured
// scale. When the input channel closes, it sets the shutdown flag to
// prevent further callbacks.
func (m *Meter) ProcessReadings(input <-chan telemetry.Reading) {
	for r := range input {
		m.record(m.scale.Measure(r.Timestamp, r.VoltEst, r.AmpEst))
	}
	// Channel closed - mark as shutdown to prevent further callbacks
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// record appends a measurement to the history, prunes entries outside
// the time window, and notifies callbacks.
func (m *Meter) record(meas sample.Measurement) {
	m.mu.Lock()

	m.measurements = append(m.measurements, meas)

	// Remove measurements outside the time window (based on timestamp,
	// not count). The entry just appended is always inside.
	cutoff := meas.Timestamp.Add(-m.windowDuration)
	cutoffIndex := 0
	for i, old := range m.measurements {
		if old.Timestamp.After(cutoff) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex > 0 {
		m.measurements = m.measurements[cutoffIndex:]
	}

	// Check shutdown flag while holding the lock, notify after
	// releasing it; notifyCallbacks takes the read lock itself.
	shouldNotify := !m.shutdown
	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks(meas)
	}
}

// Measurements returns a copy of the current history, oldest first.
func (m *Meter) Measurements() []sample.Measurement {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sample.Measurement, len(m.measurements))
	copy(result, m.measurements)
	return result
}

// Latest returns the newest measurement, if any.
func (m *Meter) Latest() (sample.Measurement, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.measurements) == 0 {
		return sample.Measurement{}, false
	}
	return m.measurements[len(m.measurements)-1], true
}

// OnUpdate registers a callback function that will be called after each
// recorded measurement. The callback receives the latest measurement
// and the current history directly. The callback should copy data
// quickly and return as fast as possible.
func (m *Meter) OnUpdate(callback func(latest sample.Measurement, history []sample.Measurement)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks to be sent
// again. This should be called before attaching a new reading stream.
func (m *Meter) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with current data.
// Makes a copy of the history while holding the read lock, then calls
// callbacks without holding any lock.
func (m *Meter) notifyCallbacks(latest sample.Measurement) {
	m.mu.RLock()
	history := make([]sample.Measurement, len(m.measurements))
	copy(history, m.measurements)
	m.mu.RUnlock()

	m.cbMu.RLock()
	callbacks := make([]func(latest sample.Measurement, history []sample.Measurement), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(latest, history)
		}
	}
}
