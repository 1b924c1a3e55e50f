package display

// BankSize is the number of digit positions one driver addresses.
const BankSize = 8

// Driver is a bank of seven-segment digits behind a display bus. One
// driver value speaks to one chip; the chip address is bound at
// construction. Writes to positions outside the bank are ignored, the
// way the display chip ignores out-of-range digit registers.
type Driver interface {
	// SetDigit lights one digit, optionally with its decimal point.
	// value is a plain digit in [0, 9].
	SetDigit(pos, value uint8, decimal bool) error
	// Clear blanks the whole bank.
	Clear() error
	// SetIntensity sets the brightness level, 0 (dim) through 15.
	SetIntensity(level uint8) error
	// Shutdown enters or leaves the chip's low-power blank mode. The
	// digit registers survive shutdown; waking restores the content.
	Shutdown(enable bool) error
}

// Ensure Sim implements Driver.
var _ Driver = (*Sim)(nil)
