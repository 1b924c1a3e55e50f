//go:build tinygo

package display

import (
	"tinygo.org/x/drivers/max72xx"
)

// Code-B digit data: the low nibble selects the glyph (0-9, 0x0F is
// blank) and bit 7 lights the decimal point.
const (
	blankCode  = 0x0F
	decimalBit = 0x80
	glyphMask  = 0x0F
)

// MAX72xx adapts the MAX7219/7221 chip driver to the Driver interface,
// running the chip in Code-B decode on all eight digits. The caller
// owns SPI and load-pin setup; the constructor only programs the
// display registers.
type MAX72xx struct {
	dev *max72xx.Device
}

// Ensure MAX72xx implements Driver.
var _ Driver = (*MAX72xx)(nil)

// NewMAX72xx wraps a configured chip and programs it for seven-segment
// duty: display test off, Code-B decode everywhere, all digits scanned.
// The chip boots in shutdown; callers wake it with Shutdown(false) once
// they have set intensity, mirroring the panel's power-up order.
func NewMAX72xx(dev *max72xx.Device) *MAX72xx {
	dev.StopDisplayTest()
	dev.SetDecodeMode(8)
	dev.SetScanLimit(8)
	return &MAX72xx{dev: dev}
}

// SetDigit writes one digit register. Out-of-range positions are
// ignored.
func (d *MAX72xx) SetDigit(pos, value uint8, decimal bool) error {
	if pos >= BankSize {
		return nil
	}

	data := value & glyphMask
	if decimal {
		data |= decimalBit
	}
	d.dev.WriteCommand(byte(max72xx.REG_DIGIT0)+pos, data)
	return nil
}

// Clear writes the blank pattern to every digit register.
func (d *MAX72xx) Clear() error {
	for pos := uint8(0); pos < BankSize; pos++ {
		d.dev.WriteCommand(byte(max72xx.REG_DIGIT0)+pos, blankCode)
	}
	return nil
}

// SetIntensity sets the chip brightness, 0 through 15.
func (d *MAX72xx) SetIntensity(level uint8) error {
	d.dev.SetIntensity(level)
	return nil
}

// Shutdown toggles the chip's low-power blank mode.
func (d *MAX72xx) Shutdown(enable bool) error {
	if enable {
		d.dev.StartShutdownMode()
	} else {
		d.dev.StopShutdownMode()
	}
	return nil
}
