package sample

// DownsampleMeasurements decimates a measurement history to at most
// maxPoints entries for plotting. Destination-based: reuses dst when it
// has sufficient capacity, otherwise allocates. When the history
// already fits it is copied through unchanged.
func DownsampleMeasurements(dst []Measurement, measurements []Measurement, maxPoints int) []Measurement {
	if len(measurements) <= maxPoints {
		if cap(dst) >= len(measurements) {
			dst = dst[:len(measurements)]
			copy(dst, measurements)
			return dst
		}
		result := make([]Measurement, len(measurements))
		copy(result, measurements)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]Measurement, 0, maxPoints)
	}

	step := float64(len(measurements)) / float64(maxPoints)
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * step)
		if idx < len(measurements) {
			dst = append(dst, measurements[idx])
		}
	}

	return dst
}
