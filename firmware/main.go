//go:build tinygo

//go:generate tinygo flash -target=arduino

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/max72xx"

	"github.com/Hunter522/AtxPsuDmm/pkg/display"
	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
	"github.com/Hunter522/AtxPsuDmm/pkg/render"
	"github.com/Hunter522/AtxPsuDmm/pkg/sample"
)

// frontEnd reads the two analog inputs of the panel. Get returns codes
// normalized to 16 bits; shifting down restores the converter's native
// 10-bit counts so the whole pipeline works in raw counts.
type frontEnd struct {
	adcs [psu.ChannelCount]machine.ADC
}

// Ensure frontEnd implements psu.ADC.
var _ psu.ADC = (*frontEnd)(nil)

func (f *frontEnd) ReadRaw(ch psu.Channel) uint16 {
	if ch >= psu.ChannelCount {
		return 0
	}
	return f.adcs[ch].Get() >> 6
}

var (
	front frontEnd
	scale = sample.DefaultScale()

	// Timing
	bootTime time.Time
	passes   int
)

func main() {
	// Configure the analog front-end
	machine.InitADC()
	front.adcs[psu.ChannelVolts] = machine.ADC{Pin: PIN_VOLT_ADC}
	front.adcs[psu.ChannelAmps] = machine.ADC{Pin: PIN_AMP_ADC}
	front.adcs[psu.ChannelVolts].Configure(machine.ADCConfig{})
	front.adcs[psu.ChannelAmps].Configure(machine.ADCConfig{})

	// Configure UART for the telemetry stream
	machine.UART0.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	// Configure SPI and the display chip
	machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 4000000,
		Mode:      0,
	})
	chip := max72xx.NewDevice(machine.SPI0, PIN_DISPLAY_LOAD)
	chip.Configure()
	bank := display.NewMAX72xx(chip)

	// Power-up order matters: wake the chip, then brightness, then a
	// clean slate
	bank.Shutdown(false)
	bank.SetIntensity(DISPLAY_INTENSITY)
	bank.Clear()

	sampler := sample.NewMedian(&front, SAMPLE_CNT)
	panel := render.New(bank, VOLT_DISPLAY_OFFSET, AMP_DISPLAY_OFFSET)

	bootTime = time.Now()

	// Main loop
	for {
		voltEst, voltOK := sampler.Sample(psu.ChannelVolts)
		ampEst, ampOK := sampler.Sample(psu.ChannelAmps)
		if !voltOK || !ampOK {
			continue
		}

		_ = panel.Refresh(scale.Measure(time.Now(), voltEst, ampEst))

		passes++
		if passes%TELEMETRY_EVERY == 0 {
			printTelemetry(voltEst, ampEst)
		}
	}
}

// printTelemetry writes one "micros,volt_est,amp_est" line. Estimates
// go out in raw counts with tenth-count resolution; scaling to physical
// units is the host's job.
func printTelemetry(voltEst, ampEst float32) {
	print(time.Since(bootTime).Microseconds())
	print(",")
	printEstimate(voltEst)
	print(",")
	printEstimate(ampEst)
	print("\n")
}

// printEstimate prints a raw-count estimate with one fractional digit,
// avoiding float formatting on the MCU.
func printEstimate(est float32) {
	tenths := int32(est*10 + 0.5)
	print(tenths / 10)
	print(".")
	print(tenths % 10)
}
