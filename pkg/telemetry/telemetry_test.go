package telemetry

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Reading
		wantErr bool
	}{
		{
			name: "valid line - fractional estimates",
			line: "1234567,682.4,153.1",
			want: Reading{
				Micros:  1234567,
				VoltEst: 682.4,
				AmpEst:  153.1,
			},
			wantErr: false,
		},
		{
			name: "valid line - integer estimates",
			line: "99,500,100",
			want: Reading{
				Micros:  99,
				VoltEst: 500,
				AmpEst:  100,
			},
			wantErr: false,
		},
		{
			name: "valid line - full scale",
			line: "1,1023,1023",
			want: Reading{
				Micros:  1,
				VoltEst: 1023,
				AmpEst:  1023,
			},
			wantErr: false,
		},
		{
			name: "valid line - boot instant",
			line: "0,0,0",
			want: Reading{
				Micros:  0,
				VoltEst: 0,
				AmpEst:  0,
			},
			wantErr: false,
		},
		{
			name:    "invalid - too few fields",
			line:    "1234567,682.4",
			wantErr: true,
		},
		{
			name:    "invalid - too many fields",
			line:    "1234567,682.4,153.1,extra",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric micros",
			line:    "abc,682.4,153.1",
			wantErr: true,
		},
		{
			name:    "invalid - negative micros",
			line:    "-5,682.4,153.1",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric volt estimate",
			line:    "1234567,abc,153.1",
			wantErr: true,
		},
		{
			name:    "invalid - volt estimate out of range",
			line:    "1234567,1500,153.1",
			wantErr: true,
		},
		{
			name:    "invalid - negative volt estimate",
			line:    "1234567,-1.0,153.1",
			wantErr: true,
		},
		{
			name:    "invalid - amp estimate out of range",
			line:    "1234567,682.4,2000",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want.Micros, got.Micros)
				assert.Equal(t, tt.want.VoltEst, got.VoltEst)
				assert.Equal(t, tt.want.AmpEst, got.AmpEst)
				assert.True(t, got.Timestamp.IsZero(), "arrival time is stamped by the read loop")
			}
		})
	}
}

func TestNew(t *testing.T) {
	dev := New("/dev/ttyACM0", 9600, 100)
	assert.NotNil(t, dev)
	assert.Equal(t, "/dev/ttyACM0", dev.port)
	assert.Equal(t, 9600, dev.baudRate)
	assert.Equal(t, 100, dev.bufSize)
	assert.NotNil(t, dev.readings)
	assert.False(t, dev.IsConnected())
}

func TestNew_Defaults(t *testing.T) {
	dev := New("/dev/ttyACM0", 0, 0)
	assert.NotNil(t, dev)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
}

func TestSerial_IsConnected(t *testing.T) {
	dev := New("/dev/ttyACM0", 9600, 100)
	assert.False(t, dev.IsConnected())
}

func TestSerial_CloseBeforeConnect(t *testing.T) {
	dev := New("/dev/ttyACM0", 9600, 100)
	assert.NoError(t, dev.Close())
}

func TestSerial_ReadLoop_StreamsReadings(t *testing.T) {
	dev := New("/dev/ttyACM0", 9600, 10)
	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		dev.readLoop(pr)
	}()

	_, err := pw.Write([]byte("100,682.4,153.1\n"))
	require.NoError(t, err)

	select {
	case r := <-dev.Readings():
		assert.Equal(t, int64(100), r.Micros)
		assert.Equal(t, float32(682.4), r.VoltEst)
		assert.Equal(t, float32(153.1), r.AmpEst)
		assert.WithinDuration(t, time.Now(), r.Timestamp, time.Second)
	case <-time.After(2 * time.Second):
		t.Fatal("No reading received within timeout")
	}

	// Garbage lines are logged and skipped, the stream keeps going
	_, err = pw.Write([]byte("not,a,reading\n200,500,100\n"))
	require.NoError(t, err)

	select {
	case r := <-dev.Readings():
		assert.Equal(t, int64(200), r.Micros)
	case <-time.After(2 * time.Second):
		t.Fatal("No reading received after garbage line")
	}

	pw.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Read loop did not exit on EOF")
	}
}

func TestSerial_ReadLoop_DropsWhenFull(t *testing.T) {
	dev := New("/dev/ttyACM0", 9600, 1)
	pr, pw := io.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		dev.readLoop(pr)
	}()

	for _, line := range []string{"100,1,1\n", "200,2,2\n", "300,3,3\n"} {
		_, err := pw.Write([]byte(line))
		require.NoError(t, err)
	}
	pw.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Read loop did not exit on EOF")
	}

	// Only the first reading fits, the rest are dropped
	assert.Len(t, dev.Readings(), 1)
	r := <-dev.Readings()
	assert.Equal(t, int64(100), r.Micros)
}
