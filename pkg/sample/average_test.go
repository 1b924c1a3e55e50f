package sample

import (
	"testing"

	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator_EmissionGating(t *testing.T) {
	acc := NewAccumulator(5)

	for call := 1; call <= 15; call++ {
		avg, ready := acc.Add(uint16(call))
		if call%5 == 0 {
			require.True(t, ready, "call %d must emit", call)
			// Calls 1..5 average 3, 6..10 average 8, 11..15 average 13.
			assert.InDelta(t, float64(call-2), float64(avg), 1e-6)
		} else {
			require.False(t, ready, "call %d must not emit", call)
			assert.Zero(t, avg)
		}
	}
}

func TestAccumulator_ResetsOnEmission(t *testing.T) {
	acc := NewAccumulator(3)

	acc.Add(10)
	acc.Add(20)
	avg, ready := acc.Add(30)
	require.True(t, ready)
	assert.InDelta(t, 20, float64(avg), 1e-6)

	assert.Zero(t, acc.sum, "sum must reset immediately on emission")
	assert.Zero(t, acc.n, "call counter must reset immediately on emission")
}

func TestAccumulator_FullScaleSum(t *testing.T) {
	// A full default window of full-scale codes must not overflow the
	// running sum.
	acc := NewAccumulator(DefaultWindowSize)

	var avg float32
	var ready bool
	for i := 0; i < DefaultWindowSize; i++ {
		avg, ready = acc.Add(psu.FullScale)
	}

	require.True(t, ready)
	assert.Equal(t, float32(psu.FullScale), avg)
}

func TestNewAccumulator_DefaultCount(t *testing.T) {
	acc := NewAccumulator(0)
	assert.Equal(t, DefaultWindowSize, acc.count)
}

func TestCarry_PerChannelState(t *testing.T) {
	c := NewCarry(channelADC{volts: 100, amps: 200}, 4)

	// Interleaved sampling keeps the two accumulators independent.
	for i := 0; i < 3; i++ {
		_, ready := c.Sample(psu.ChannelVolts)
		require.False(t, ready, "volts call %d", i+1)
		_, ready = c.Sample(psu.ChannelAmps)
		require.False(t, ready, "amps call %d", i+1)
	}

	v, ready := c.Sample(psu.ChannelVolts)
	require.True(t, ready)
	assert.InDelta(t, 100, float64(v), 1e-6)

	a, ready := c.Sample(psu.ChannelAmps)
	require.True(t, ready)
	assert.InDelta(t, 200, float64(a), 1e-6)
}

func TestCarry_RepeatedCycles(t *testing.T) {
	adc := &scriptADC{values: []uint16{10, 20, 30, 40, 50, 60}}
	c := NewCarry(adc, 3)

	_, ready := c.Sample(psu.ChannelVolts)
	require.False(t, ready)
	_, ready = c.Sample(psu.ChannelVolts)
	require.False(t, ready)
	avg, ready := c.Sample(psu.ChannelVolts)
	require.True(t, ready)
	assert.InDelta(t, 20, float64(avg), 1e-6)

	// Next cycle starts from a clean accumulator.
	_, ready = c.Sample(psu.ChannelVolts)
	require.False(t, ready)
	_, ready = c.Sample(psu.ChannelVolts)
	require.False(t, ready)
	avg, ready = c.Sample(psu.ChannelVolts)
	require.True(t, ready)
	assert.InDelta(t, 50, float64(avg), 1e-6)
}

func TestCarry_UnknownChannel(t *testing.T) {
	c := NewCarry(channelADC{}, 2)

	got, ready := c.Sample(psu.Channel(9))
	assert.False(t, ready)
	assert.Zero(t, got)
}
