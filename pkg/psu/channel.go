package psu

// FullScale is the largest raw code the 10-bit converter produces.
const FullScale = 1023

// Channel identifies one analog input of the supply front-end.
type Channel uint8

const (
	// ChannelVolts reads the bus voltage behind the resistor divider.
	ChannelVolts Channel = iota
	// ChannelAmps reads the amplified voltage across the current shunt.
	ChannelAmps

	// ChannelCount is the number of front-end inputs.
	ChannelCount
)

// String returns the channel label used in logs and telemetry.
func (c Channel) String() string {
	switch c {
	case ChannelVolts:
		return "volts"
	case ChannelAmps:
		return "amps"
	default:
		return "unknown"
	}
}
