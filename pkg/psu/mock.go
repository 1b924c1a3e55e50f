package psu

import (
	"sync"
	"time"

	"github.com/chewxy/math32"
)

// MockConfig tunes the simulated supply front-end.
type MockConfig struct {
	VoltCode   uint16  // steady raw code on the volts channel
	AmpCode    uint16  // steady raw code on the amps channel
	Noise      float32 // peak ripple amplitude in raw counts
	SpikeEvery int     // emit a rail-to-rail outlier every N reads, 0 disables
}

// Mock simulates the analog front-end of a bench supply for development
// and tests. Reads return the channel's target code with ripple on top;
// when SpikeEvery is set, every N-th read of a channel returns a
// rail-to-rail outlier instead, alternating between the two rails.
type Mock struct {
	mu     sync.Mutex
	target [ChannelCount]float32
	reads  [ChannelCount]uint32

	noise      float32
	spikeEvery int
	start      time.Time
}

// Ensure Mock implements ADC.
var _ ADC = (*Mock)(nil)

// NewMock creates a simulated front-end. A nil config gets a 12 V rail
// at 1.5 A with mild ripple and an occasional outlier.
func NewMock(cfg *MockConfig) *Mock {
	if cfg == nil {
		cfg = &MockConfig{
			VoltCode:   205, // ~12 V against the stock 60 V divider
			AmpCode:    150, // ~1.5 A against the stock shunt chain
			Noise:      4,
			SpikeEvery: 50,
		}
	}

	m := &Mock{
		noise:      cfg.Noise,
		spikeEvery: cfg.SpikeEvery,
		start:      time.Now(),
	}
	m.target[ChannelVolts] = float32(cfg.VoltCode)
	m.target[ChannelAmps] = float32(cfg.AmpCode)
	return m
}

// SetTarget moves the steady code of one channel, clamped to full scale.
func (m *Mock) SetTarget(ch Channel, code uint16) {
	if ch >= ChannelCount {
		return
	}
	if code > FullScale {
		code = FullScale
	}

	m.mu.Lock()
	m.target[ch] = float32(code)
	m.mu.Unlock()
}

// Target returns the steady code currently configured for a channel.
func (m *Mock) Target(ch Channel) uint16 {
	if ch >= ChannelCount {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return uint16(m.target[ch])
}

// ReadRaw returns one simulated conversion.
func (m *Mock) ReadRaw(ch Channel) uint16 {
	if ch >= ChannelCount {
		return 0
	}

	m.mu.Lock()
	target := m.target[ch]
	m.reads[ch]++
	n := m.reads[ch]
	m.mu.Unlock()

	if m.spikeEvery > 0 && n%uint32(m.spikeEvery) == 0 {
		if n%(2*uint32(m.spikeEvery)) == 0 {
			return FullScale
		}
		return 0
	}

	t := float32(time.Since(m.start).Nanoseconds())
	ripple := (math32.Sin(t*0.001) + math32.Cos(t*0.0013)) * m.noise * 0.5

	code := target + ripple
	if code < 0 {
		code = 0
	}
	if code > FullScale {
		code = FullScale
	}
	return uint16(code + 0.5)
}
