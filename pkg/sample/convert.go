package sample

import (
	"time"

	"github.com/chewxy/math32"
)

// Scale holds the analog front-end constants that map raw converter
// codes to physical units. All conversions are pure float32 arithmetic
// with no clamping; an out-of-range estimate scales to an out-of-range
// physical value.
type Scale struct {
	VoltScale    float32 // full-scale bus voltage behind the divider (V)
	CurrentScale float32 // shunt volts at full amplifier swing (V)
	OpAmpGain    float32 // amplifier gain ahead of the amps channel
	ShuntOhms    float32 // shunt resistance (ohm)
	ADCFullScale float32 // largest raw code the converter produces
}

// DefaultScale returns the constants of the reference front-end: a 60 V
// divider on the volts channel and a gain-5 amplifier over a 0.1 ohm
// shunt on the amps channel, both read by a 10-bit converter.
func DefaultScale() Scale {
	return Scale{
		VoltScale:    60.0,
		CurrentScale: 0.20,
		OpAmpGain:    5.0,
		ShuntOhms:    0.1,
		ADCFullScale: 1023.0,
	}
}

// BusVolts converts a filtered volts-channel estimate to bus volts.
func (s Scale) BusVolts(estimate float32) float32 {
	return s.VoltScale * (estimate / s.ADCFullScale)
}

// ShuntAmps converts a filtered amps-channel estimate to load amps
// through Ohm's law on the amplified shunt voltage.
func (s Scale) ShuntAmps(estimate float32) float32 {
	return (s.CurrentScale * (s.OpAmpGain * (estimate / s.ADCFullScale))) / s.ShuntOhms
}

// VoltCode returns the raw code that converts back to the given bus
// voltage, rounded to nearest and clamped to the converter range.
func (s Scale) VoltCode(volts float32) uint16 {
	return s.clampCode(volts / s.VoltScale * s.ADCFullScale)
}

// AmpCode returns the raw code that converts back to the given load
// current, rounded to nearest and clamped to the converter range.
func (s Scale) AmpCode(amps float32) uint16 {
	return s.clampCode(amps * s.ShuntOhms / (s.CurrentScale * s.OpAmpGain) * s.ADCFullScale)
}

func (s Scale) clampCode(code float32) uint16 {
	if code <= 0 || math32.IsNaN(code) {
		return 0
	}
	if code >= s.ADCFullScale {
		return uint16(s.ADCFullScale)
	}
	return uint16(math32.Round(code))
}

// Measurement is one converted reading pair from the panel.
type Measurement struct {
	Timestamp time.Time
	Volts     float32
	Amps      float32
}

// Measure converts one pair of filtered estimates into a measurement.
func (s Scale) Measure(t time.Time, voltEstimate, ampEstimate float32) Measurement {
	return Measurement{
		Timestamp: t,
		Volts:     s.BusVolts(voltEstimate),
		Amps:      s.ShuntAmps(ampEstimate),
	}
}
