package sample

import (
	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
)

// Accumulator is the carry-over averaging state for one channel. Add
// folds raw readings into a running sum and reports an average only on
// every count-th call, resetting the state in the same step. The caller
// owns the accumulator and threads it through successive calls; nothing
// else may touch it.
type Accumulator struct {
	sum   uint32
	n     int
	count int
}

// NewAccumulator creates an accumulator that emits every count calls.
func NewAccumulator(count int) *Accumulator {
	if count <= 0 {
		count = DefaultWindowSize
	}
	return &Accumulator{count: count}
}

// Add folds one raw reading. ready reports whether avg carries the
// completed average of the last count readings; after an emission the
// sum and call counter are already back at zero.
func (a *Accumulator) Add(raw uint16) (avg float32, ready bool) {
	a.sum += uint32(raw)
	a.n++
	if a.n < a.count {
		return 0, false
	}

	avg = float32(a.sum) / float32(a.count)
	a.sum = 0
	a.n = 0
	return avg, true
}

// Carry spreads an averaging pass across calls, one raw read per call.
// It mirrors firmware that takes a single reading per loop turn and
// refreshes the display only when a full average is banked; most calls
// return ok=false and the caller keeps showing the previous estimate.
type Carry struct {
	adc psu.ADC
	acc [psu.ChannelCount]*Accumulator
}

// NewCarry creates a carry-over sampler emitting every count reads per
// channel.
func NewCarry(adc psu.ADC, count int) *Carry {
	c := &Carry{adc: adc}
	for i := range c.acc {
		c.acc[i] = NewAccumulator(count)
	}
	return c
}

// Sample takes one raw reading and folds it into the channel's
// accumulator. ok is true only on emitting calls.
func (c *Carry) Sample(ch psu.Channel) (float32, bool) {
	if ch >= psu.ChannelCount {
		return 0, false
	}
	return c.acc[ch].Add(c.adc.ReadRaw(ch))
}
