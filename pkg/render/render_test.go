package render

import (
	"errors"
	"testing"
	"time"

	"github.com/Hunter522/AtxPsuDmm/pkg/display"
	"github.com/Hunter522/AtxPsuDmm/pkg/sample"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		value  float32
		offset uint8
		want   []Digit
	}{
		{
			name:   "zero",
			value:  0.0,
			offset: 0,
			want: []Digit{
				{Position: 0, Value: 0, Decimal: false},
				{Position: 1, Value: 0, Decimal: false},
				{Position: 2, Value: 0, Decimal: true},
			},
		},
		{
			name:   "all nines",
			value:  9.99,
			offset: 0,
			want: []Digit{
				{Position: 0, Value: 9, Decimal: false},
				{Position: 1, Value: 9, Decimal: false},
				{Position: 2, Value: 9, Decimal: true},
			},
		},
		{
			name:   "two integer digits",
			value:  12.45,
			offset: 0,
			want: []Digit{
				{Position: 0, Value: 5, Decimal: false},
				{Position: 1, Value: 4, Decimal: false},
				{Position: 2, Value: 2, Decimal: true},
				{Position: 3, Value: 1, Decimal: false},
			},
		},
		{
			name:   "forty volts",
			value:  40.00,
			offset: 0,
			want: []Digit{
				{Position: 0, Value: 0, Decimal: false},
				{Position: 1, Value: 0, Decimal: false},
				{Position: 2, Value: 0, Decimal: true},
				{Position: 3, Value: 4, Decimal: false},
			},
		},
		{
			name:   "second row offset",
			value:  40.00,
			offset: 4,
			want: []Digit{
				{Position: 4, Value: 0, Decimal: false},
				{Position: 5, Value: 0, Decimal: false},
				{Position: 6, Value: 0, Decimal: true},
				{Position: 7, Value: 4, Decimal: false},
			},
		},
		{
			name:   "one and a half amps",
			value:  1.50,
			offset: 4,
			want: []Digit{
				{Position: 4, Value: 0, Decimal: false},
				{Position: 5, Value: 5, Decimal: false},
				{Position: 6, Value: 1, Decimal: true},
			},
		},
		{
			name:   "widest fitting value",
			value:  99.99,
			offset: 0,
			want: []Digit{
				{Position: 0, Value: 9, Decimal: false},
				{Position: 1, Value: 9, Decimal: false},
				{Position: 2, Value: 9, Decimal: true},
				{Position: 3, Value: 9, Decimal: false},
			},
		},
		{
			name:   "rounds to nearest",
			value:  12.456,
			offset: 0,
			want: []Digit{
				{Position: 0, Value: 6, Decimal: false},
				{Position: 1, Value: 5, Decimal: false},
				{Position: 2, Value: 2, Decimal: true},
				{Position: 3, Value: 1, Decimal: false},
			},
		},
		{
			name:   "rounds across the point",
			value:  9.996,
			offset: 0,
			want: []Digit{
				{Position: 0, Value: 0, Decimal: false},
				{Position: 1, Value: 0, Decimal: false},
				{Position: 2, Value: 0, Decimal: true},
				{Position: 3, Value: 1, Decimal: false},
			},
		},
		{
			name:   "six characters overflow",
			value:  100.00,
			offset: 0,
			want:   nil,
		},
		{
			name:   "negative rejected",
			value:  -1.23,
			offset: 0,
			want:   nil,
		},
		{
			name:   "not a number rejected",
			value:  math32.NaN(),
			offset: 0,
			want:   nil,
		},
		{
			name:   "positive infinity rejected",
			value:  math32.Inf(1),
			offset: 0,
			want:   nil,
		},
		{
			name:   "negative infinity rejected",
			value:  math32.Inf(-1),
			offset: 0,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.value, tt.offset)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_ScaledEstimate(t *testing.T) {
	// Raw estimate 682 of 1023 against the stock 60 V divider lands on
	// exactly 40.00 across the whole pipeline.
	s := sample.DefaultScale()
	volts := s.BusVolts(682)

	got := Encode(volts, 0)
	require.Len(t, got, 4)
	assert.Equal(t, []Digit{
		{Position: 0, Value: 0, Decimal: false},
		{Position: 1, Value: 0, Decimal: false},
		{Position: 2, Value: 0, Decimal: true},
		{Position: 3, Value: 4, Decimal: false},
	}, got)
}

func TestRenderer_Refresh(t *testing.T) {
	sim := display.NewSim()
	r := New(sim, 0, 4)

	m := sample.Measurement{Timestamp: time.Now(), Volts: 12.45, Amps: 1.5}
	require.NoError(t, r.Refresh(m))

	assert.Equal(t, "12.45\n 1.50", sim.String())
}

func TestRenderer_RefreshOverwritesPrevious(t *testing.T) {
	sim := display.NewSim()
	r := New(sim, 0, 4)

	require.NoError(t, r.Refresh(sample.Measurement{Volts: 48.01, Amps: 9.99}))
	require.NoError(t, r.Refresh(sample.Measurement{Volts: 5.0, Amps: 0.25}))

	// The clear between passes drops the stale wide digits.
	assert.Equal(t, " 5.00\n 0.25", sim.String())
}

func TestRenderer_ShowLeavesRowOnOverflow(t *testing.T) {
	sim := display.NewSim()
	r := New(sim, 0, 4)

	require.NoError(t, r.Show(12.45, 0))
	before := sim.String()

	require.NoError(t, r.Show(100.00, 0))
	assert.Equal(t, before, sim.String(), "overflow must not touch the bank")

	require.NoError(t, r.Show(-1.23, 0))
	assert.Equal(t, before, sim.String(), "negative must not touch the bank")

	require.NoError(t, r.Show(math32.NaN(), 0))
	assert.Equal(t, before, sim.String(), "NaN must not touch the bank")
}

func TestRenderer_RefreshBlanksOverflowedRow(t *testing.T) {
	sim := display.NewSim()
	r := New(sim, 0, 4)

	require.NoError(t, r.Refresh(sample.Measurement{Volts: 12.45, Amps: 1.5}))
	require.NoError(t, r.Refresh(sample.Measurement{Volts: 120.0, Amps: 1.5}))

	// The out-of-range volts row stays blank after the pass clear; the
	// amps row still renders.
	assert.Equal(t, "    \n 1.50", sim.String())
}

type errDriver struct {
	setErr   error
	clearErr error
}

func (d errDriver) SetDigit(uint8, uint8, bool) error { return d.setErr }
func (d errDriver) Clear() error                      { return d.clearErr }
func (d errDriver) SetIntensity(uint8) error          { return nil }
func (d errDriver) Shutdown(bool) error               { return nil }

func TestRenderer_DriverErrors(t *testing.T) {
	setErr := errors.New("bus write failed")
	clearErr := errors.New("bus clear failed")

	r := New(errDriver{setErr: setErr}, 0, 4)
	err := r.Refresh(sample.Measurement{Volts: 1.0, Amps: 1.0})
	require.Error(t, err)
	assert.ErrorIs(t, err, setErr)

	r = New(errDriver{clearErr: clearErr}, 0, 4)
	err = r.Refresh(sample.Measurement{Volts: 1.0, Amps: 1.0})
	require.Error(t, err)
	assert.ErrorIs(t, err, clearErr)
}
