package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScale_BusVolts(t *testing.T) {
	s := DefaultScale()

	tests := []struct {
		name     string
		estimate float32
		want     float64
	}{
		{
			name:     "zero",
			estimate: 0,
			want:     0.0,
		},
		{
			name:     "full scale",
			estimate: 1023,
			want:     60.0,
		},
		{
			name:     "half scale",
			estimate: 511.5,
			want:     30.0,
		},
		{
			name:     "two thirds of range",
			estimate: 682,
			want:     40.0,
		},
		{
			name:     "out of range passes through",
			estimate: 2046,
			want:     120.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.BusVolts(tt.estimate)
			assert.InDelta(t, tt.want, float64(got), 0.001)
		})
	}
}

func TestScale_ShuntAmps(t *testing.T) {
	s := DefaultScale()

	tests := []struct {
		name     string
		estimate float32
		want     float64
	}{
		{
			name:     "zero",
			estimate: 0,
			want:     0.0,
		},
		{
			name:     "full scale is ten amps",
			estimate: 1023,
			want:     10.0,
		},
		{
			name:     "one amp",
			estimate: 102.3,
			want:     1.0,
		},
		{
			name:     "single count",
			estimate: 1,
			want:     0.009775,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ShuntAmps(tt.estimate)
			assert.InDelta(t, tt.want, float64(got), 0.0001)
		})
	}
}

func TestScale_Monotonic(t *testing.T) {
	s := DefaultScale()

	prevVolts := float32(-1)
	prevAmps := float32(-1)
	for raw := 0; raw <= 1023; raw += 3 {
		v := s.BusVolts(float32(raw))
		a := s.ShuntAmps(float32(raw))
		assert.Greater(t, v, prevVolts, "raw %d", raw)
		assert.Greater(t, a, prevAmps, "raw %d", raw)
		prevVolts, prevAmps = v, a
	}
}

func TestScale_Codes(t *testing.T) {
	s := DefaultScale()

	tests := []struct {
		name string
		got  uint16
		want uint16
	}{
		{name: "twelve volts", got: s.VoltCode(12.0), want: 205},
		{name: "forty volts", got: s.VoltCode(40.0), want: 682},
		{name: "zero volts", got: s.VoltCode(0), want: 0},
		{name: "volts above range clamps", got: s.VoltCode(100.0), want: 1023},
		{name: "negative volts clamps", got: s.VoltCode(-5.0), want: 0},
		{name: "one amp", got: s.AmpCode(1.0), want: 102},
		{name: "ten amps is full scale", got: s.AmpCode(10.0), want: 1023},
		{name: "amps above range clamps", got: s.AmpCode(25.0), want: 1023},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestScale_CodeRoundTrip(t *testing.T) {
	s := DefaultScale()

	// One converter count is ~59 mV on the volts channel and ~10 mA on
	// the amps channel; a round trip cannot be tighter than that.
	for _, volts := range []float32{0, 3.3, 5.0, 12.0, 24.0, 48.0, 59.9} {
		back := s.BusVolts(float32(s.VoltCode(volts)))
		assert.InDelta(t, float64(volts), float64(back), 0.03, "volts %v", volts)
	}

	for _, amps := range []float32{0, 0.1, 0.5, 1.5, 4.2, 9.9} {
		back := s.ShuntAmps(float32(s.AmpCode(amps)))
		assert.InDelta(t, float64(amps), float64(back), 0.005, "amps %v", amps)
	}
}

func TestScale_Measure(t *testing.T) {
	s := DefaultScale()
	now := time.Now()

	m := s.Measure(now, 682, 102.3)

	assert.Equal(t, now, m.Timestamp)
	assert.InDelta(t, 40.0, float64(m.Volts), 0.001)
	assert.InDelta(t, 1.0, float64(m.Amps), 0.001)
}
