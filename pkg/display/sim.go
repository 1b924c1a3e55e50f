package display

import (
	"strings"
	"sync"
)

// Sim is an in-memory display bank for tests and the host simulator.
// It latches exactly what a chip would: a digit value and decimal flag
// per position, the intensity level and the shutdown state. Safe for
// concurrent use; the GUI reads it while the meter loop writes.
type Sim struct {
	mu        sync.RWMutex
	lit       [BankSize]bool
	value     [BankSize]uint8
	decimal   [BankSize]bool
	intensity uint8
	shutdown  bool
}

// Ensure Sim implements Driver.
var _ Driver = (*Sim)(nil)

// NewSim creates a blank simulated bank.
func NewSim() *Sim {
	return &Sim{}
}

// SetDigit lights one digit. Out-of-range positions are ignored.
func (s *Sim) SetDigit(pos, value uint8, decimal bool) error {
	if pos >= BankSize {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lit[pos] = true
	s.value[pos] = value
	s.decimal[pos] = decimal
	return nil
}

// Clear blanks the whole bank.
func (s *Sim) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lit {
		s.lit[i] = false
		s.value[i] = 0
		s.decimal[i] = false
	}
	return nil
}

// SetIntensity records the brightness level.
func (s *Sim) SetIntensity(level uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intensity = level
	return nil
}

// Shutdown blanks the rendering while keeping the latched digits, the
// way the chip's low-power mode does.
func (s *Sim) Shutdown(enable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = enable
	return nil
}

// Digit reports the latched state of one position.
func (s *Sim) Digit(pos uint8) (value uint8, decimal bool, lit bool) {
	if pos >= BankSize {
		return 0, false, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value[pos], s.decimal[pos], s.lit[pos]
}

// Intensity returns the last brightness level written.
func (s *Sim) Intensity() uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intensity
}

// IsShutdown reports whether the bank is in shutdown mode.
func (s *Sim) IsShutdown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shutdown
}

// String renders the bank the way the panel reads: two four-digit rows,
// most significant digit first, decimal points folded in after their
// digit. Unlit positions show as spaces; a bank in shutdown renders
// fully blank.
func (s *Sim) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	for row := 0; row < BankSize/4; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for i := 3; i >= 0; i-- {
			pos := row*4 + i
			if s.shutdown || !s.lit[pos] {
				b.WriteByte(' ')
				continue
			}
			if s.value[pos] <= 9 {
				b.WriteByte('0' + s.value[pos])
			} else {
				b.WriteByte('?')
			}
			if s.decimal[pos] {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
