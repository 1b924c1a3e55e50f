package telemetry

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestSerial_ReadLoop_ExitsOnCancel tests that the read loop stops once
// the device context is cancelled, as Close() does before closing the port.
func TestSerial_ReadLoop_ExitsOnCancel(t *testing.T) {
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
	case <-dev.Readings():
	case <-time.After(2 * time.Second):
		t.Fatal("No reading received within timeout")
	}

	dev.cancel()

	// The loop only notices cancellation between scans, so feed one
	// more line to unblock the scanner.
	_, err = pw.Write([]byte("200,500,100\n"))
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Read loop did not exit after cancel")
	}
}
