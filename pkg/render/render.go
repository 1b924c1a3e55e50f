package render

import (
	"fmt"
	"strconv"

	"github.com/Hunter522/AtxPsuDmm/pkg/display"
	"github.com/Hunter522/AtxPsuDmm/pkg/sample"
	"github.com/chewxy/math32"
)

// maxChars is the widest formatted value one four-digit row can carry:
// four digits plus the decimal point.
const maxChars = 5

// Digit is one display assignment produced by the encoder.
type Digit struct {
	Position uint8 // bank position, 0 is the rightmost digit of row one
	Value    uint8 // 0..9
	Decimal  bool  // light this digit's decimal point
}

// Encode lays a value out as fixed-point digit assignments.
//
// The value is formatted with two decimals and walked right to left
// from startOffset, so readings of different magnitude stay
// right-justified on the decimal point. The '.' consumes no position;
// it is folded into the following digit as a flag. Values that format
// wider than five characters, are not finite, or carry a sign encode to
// nothing, leaving the display in its last-known state.
func Encode(value float32, startOffset uint8) []Digit {
	if math32.IsNaN(value) || math32.IsInf(value, 0) {
		return nil
	}

	s := strconv.FormatFloat(float64(value), 'f', 2, 32)
	if len(s) > maxChars {
		return nil
	}

	digits := make([]Digit, 0, maxChars-1)
	pos := startOffset
	decimal := false
	for i := len(s) - 1; i >= 0; i-- {
		switch c := s[i]; {
		case c == '.':
			decimal = true
		case c >= '0' && c <= '9':
			digits = append(digits, Digit{Position: pos, Value: c - '0', Decimal: decimal})
			pos++
			decimal = false
		default:
			return nil
		}
	}
	return digits
}

// Renderer drives one display bank from converted measurements, volts
// on the first row and amps on the second.
type Renderer struct {
	driver     display.Driver
	voltOffset uint8
	ampOffset  uint8
}

// New creates a renderer writing through driver at the two row offsets.
func New(driver display.Driver, voltOffset, ampOffset uint8) *Renderer {
	return &Renderer{
		driver:     driver,
		voltOffset: voltOffset,
		ampOffset:  ampOffset,
	}
}

// Show writes one value right-justified at the given row offset.
// Values that do not encode leave the row untouched.
func (r *Renderer) Show(value float32, offset uint8) error {
	for _, d := range Encode(value, offset) {
		if err := r.driver.SetDigit(d.Position, d.Value, d.Decimal); err != nil {
			return fmt.Errorf("set digit %d: %w", d.Position, err)
		}
	}
	return nil
}

// Refresh redraws the bank for one measurement: clear the whole bank,
// then both rows. A row whose value does not encode stays blank until
// the reading comes back into range.
func (r *Renderer) Refresh(m sample.Measurement) error {
	if err := r.driver.Clear(); err != nil {
		return fmt.Errorf("clear display: %w", err)
	}
	if err := r.Show(m.Volts, r.voltOffset); err != nil {
		return fmt.Errorf("show volts: %w", err)
	}
	if err := r.Show(m.Amps, r.ampOffset); err != nil {
		return fmt.Errorf("show amps: %w", err)
	}
	return nil
}
