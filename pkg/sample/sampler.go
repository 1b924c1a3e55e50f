package sample

import (
	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
)

const (
	// DefaultWindowSize is the number of raw reads folded into one
	// estimate by the stock samplers.
	DefaultWindowSize = 250

	// averagingSpan is how many sorted ranks around the middle the
	// median sampler averages over.
	averagingSpan = 10
)

// Sampler produces one filtered estimate of a channel's raw level.
type Sampler interface {
	// Sample reads the channel and returns a filtered estimate in raw
	// converter counts. ok is false when the strategy has not folded
	// enough reads yet and the caller should keep its previous value.
	Sample(ch psu.Channel) (estimate float32, ok bool)
}

// Ensure the samplers implement Sampler.
var (
	_ Sampler = (*Median)(nil)
	_ Sampler = (*Mean)(nil)
	_ Sampler = (*Carry)(nil)
)

// Median estimates a channel by reading a full window of raw samples
// and averaging the ten sorted ranks straddling the middle. Outliers
// sort to the window ends and never touch the estimate.
type Median struct {
	adc    psu.ADC
	window *Window
}

// NewMedian creates a median sampler reading windowSize samples per
// estimate. Windows smaller than the averaging span are raised to it.
func NewMedian(adc psu.ADC, windowSize int) *Median {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if windowSize < averagingSpan {
		windowSize = averagingSpan
	}
	return &Median{
		adc:    adc,
		window: NewWindow(windowSize),
	}
}

// Sample fills the window from the channel and returns the estimate.
// ok is always true; the whole window is read in one call.
func (m *Median) Sample(ch psu.Channel) (float32, bool) {
	m.window.Reset()
	for i := 0; i < m.window.Cap(); i++ {
		m.window.Insert(m.adc.ReadRaw(ch))
	}

	mid := m.window.Cap() / 2
	var sum float32
	for i := mid - averagingSpan/2; i < mid+averagingSpan/2; i++ {
		sum += float32(m.window.At(i))
	}
	return sum / averagingSpan, true
}

// Mean estimates a channel with a plain average over count reads.
type Mean struct {
	adc   psu.ADC
	count int
}

// NewMean creates a mean sampler reading count samples per estimate.
func NewMean(adc psu.ADC, count int) *Mean {
	if count <= 0 {
		count = DefaultWindowSize
	}
	return &Mean{
		adc:   adc,
		count: count,
	}
}

// Sample reads count samples and returns their average. ok is always
// true.
func (m *Mean) Sample(ch psu.Channel) (float32, bool) {
	var sum uint32
	for i := 0; i < m.count; i++ {
		sum += uint32(m.adc.ReadRaw(ch))
	}
	return float32(sum) / float32(m.count), true
}
