// Package telemetry reads the panel firmware's debug stream over a
// serial link. The firmware prints one line per display refresh:
//
//	micros,volt_est,amp_est
//
// where micros is the MCU clock in microseconds since boot and the
// estimates are filtered ADC readings in counts (tenth-count
// resolution). Scaling to physical units is left to the host so the
// stream stays independent of calibration.
package telemetry

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
)

const (
	// DefaultBaudRate matches the firmware's Serial.begin rate.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
)

// Reading is one parsed line of the panel debug stream.
type Reading struct {
	Timestamp time.Time // host arrival time
	Micros    int64     // MCU clock, microseconds since boot
	VoltEst   float32   // filtered bus voltage estimate, ADC counts
	AmpEst    float32   // filtered shunt current estimate, ADC counts
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the panel meter's debug output.
// The link is one-way; the firmware never reads from it.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	readings  chan Reading
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial instance with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		readings:  make(chan Reading, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		// Try to get port description if available
		port, err := serial.Open(name, &serial.Mode{
			BaudRate: DefaultBaudRate,
		})
		if err == nil {
			// Port opened successfully, get description
			desc := name // Use name as description if we can't get more info
			port.Close()
			result = append(result, Port{
				Name:        name,
				Description: desc,
			})
		} else {
			// Still add the port even if we can't open it
			result = append(result, Port{
				Name:        name,
				Description: name,
			})
		}
	}

	return result, nil
}

// Connect connects to the serial port and starts reading the stream.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	// Start reading the stream in a goroutine
	go d.readLoop(port)

	return nil
}

// Close closes the connection and stops reading.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Close serial port
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	// Close readings channel
	close(d.readings)

	return nil
}

// Readings returns the channel for receiving parsed readings.
func (d *Serial) Readings() <-chan Reading {
	return d.readings
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readLoop reads lines from r and parses them into Readings.
func (d *Serial) readLoop(r io.Reader) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Panic in readLoop: %v", rec)
		}
	}()

	scanner := bufio.NewScanner(r)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil {
					if err != io.EOF {
						log.Printf("Error reading from serial port: %v", err)
					}
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			reading, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}
			reading.Timestamp = time.Now()

			// Send reading to channel (non-blocking)
			select {
			case d.readings <- reading:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Readings channel full, dropping reading")
			}
		}
	}
}

// parseLine parses a line of the debug stream into a Reading.
// Format: micros,volt_est,amp_est
// Example: 1234567,682.4,153.1
// The arrival timestamp is left for the caller to fill in.
func parseLine(line string) (Reading, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Reading{}, fmt.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	// Parse MCU clock (microseconds since boot)
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid micros: %w", err)
	}
	if micros < 0 {
		return Reading{}, fmt.Errorf("micros out of range: %d", micros)
	}

	// Parse voltage estimate (ADC counts)
	voltEst, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid volt estimate: %w", err)
	}
	if voltEst < 0 || voltEst > psu.FullScale {
		return Reading{}, fmt.Errorf("volt estimate out of range: %g (max %d)", voltEst, psu.FullScale)
	}

	// Parse current estimate (ADC counts)
	ampEst, err := strconv.ParseFloat(parts[2], 32)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid amp estimate: %w", err)
	}
	if ampEst < 0 || ampEst > psu.FullScale {
		return Reading{}, fmt.Errorf("amp estimate out of range: %g (max %d)", ampEst, psu.FullScale)
	}

	return Reading{
		Micros:  micros,
		VoltEst: float32(voltEst),
		AmpEst:  float32(ampEst),
	}, nil
}
