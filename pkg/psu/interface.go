package psu

// ADC reads raw converter codes from the supply front-end.
//
// Reads are assumed in range and always successful; there is no error
// path on the acquisition side. A hardware fault shows up as a frozen
// or nonsense reading, never as an error value.
type ADC interface {
	// ReadRaw performs one blocking conversion and returns the raw
	// code in [0, FullScale].
	ReadRaw(ch Channel) uint16
}

// Ensure Mock implements ADC.
var _ ADC = (*Mock)(nil)
