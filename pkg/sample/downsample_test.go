package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsampleMeasurements_NoDownsampling(t *testing.T) {
	now := time.Now()
	measurements := []Measurement{
		{Timestamp: now, Volts: 12.0, Amps: 1.0},
		{Timestamp: now.Add(100 * time.Millisecond), Volts: 12.1, Amps: 1.1},
		{Timestamp: now.Add(200 * time.Millisecond), Volts: 12.2, Amps: 1.2},
	}

	// Test with nil dst
	result := DownsampleMeasurements(nil, measurements, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, measurements[0], result[0])
	assert.Equal(t, measurements[1], result[1])
	assert.Equal(t, measurements[2], result[2])

	// Test with sufficient capacity dst
	dst := make([]Measurement, 0, 10)
	result = DownsampleMeasurements(dst, measurements, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, measurements[0], result[0])
	// Should reuse dst
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsampleMeasurements_WithDownsampling(t *testing.T) {
	now := time.Now()
	measurements := make([]Measurement, 100)
	for i := 0; i < 100; i++ {
		measurements[i] = Measurement{
			Timestamp: now.Add(time.Duration(i) * 10 * time.Millisecond),
			Volts:     float32(i) * 0.01,
			Amps:      1.0,
		}
	}

	dst := make([]Measurement, 0, 20)
	result := DownsampleMeasurements(dst, measurements, 10)
	require.Equal(t, 10, len(result))

	// Should always include the first measurement
	assert.Equal(t, measurements[0], result[0])

	// Decimation must reach into the last portion of the range
	assert.GreaterOrEqual(t, result[len(result)-1].Volts, float32(0.8))

	// Should reuse dst if capacity sufficient
	assert.GreaterOrEqual(t, cap(result), 10)
}

func TestDownsampleMeasurements_DestinationReuse(t *testing.T) {
	now := time.Now()
	first := []Measurement{
		{Timestamp: now, Volts: 12.0, Amps: 1.0},
		{Timestamp: now.Add(100 * time.Millisecond), Volts: 12.1, Amps: 1.0},
	}
	second := []Measurement{
		{Timestamp: now, Volts: 5.0, Amps: 2.0},
		{Timestamp: now.Add(100 * time.Millisecond), Volts: 5.1, Amps: 2.1},
		{Timestamp: now.Add(200 * time.Millisecond), Volts: 5.2, Amps: 2.2},
	}

	dst := make([]Measurement, 0, 10)
	result1 := DownsampleMeasurements(dst, first, 10)
	require.Equal(t, 2, len(result1))

	// Second call should reuse the same underlying array
	result2 := DownsampleMeasurements(result1, second, 10)
	require.Equal(t, 3, len(result2))
	assert.Equal(t, cap(result1), cap(result2))
}

func TestDownsampleMeasurements_EmptyInput(t *testing.T) {
	result := DownsampleMeasurements(nil, []Measurement{}, 10)
	require.Equal(t, 0, len(result))
}

func TestDownsampleMeasurements_ExactMaxPoints(t *testing.T) {
	now := time.Now()
	measurements := make([]Measurement, 10)
	for i := 0; i < 10; i++ {
		measurements[i] = Measurement{
			Timestamp: now.Add(time.Duration(i) * 10 * time.Millisecond),
			Volts:     float32(i) * 0.01,
			Amps:      1.0,
		}
	}

	result := DownsampleMeasurements(nil, measurements, 10)
	require.Equal(t, 10, len(result))

	for i := 0; i < 10; i++ {
		assert.Equal(t, measurements[i], result[i])
	}
}
