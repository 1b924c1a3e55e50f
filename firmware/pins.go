//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_CNT = 250 // Raw reads folded into one estimate per channel

	// Analog inputs
	PIN_VOLT_ADC = machine.ADC0 // Bus voltage behind the 60V divider
	PIN_AMP_ADC  = machine.ADC1 // Shunt voltage behind the gain-5 op-amp

	// Display chip select. Data and clock ride the hardware SPI pins
	// (D11 MOSI, D13 SCK on the 328P).
	PIN_DISPLAY_LOAD = machine.D10

	// Display configuration
	DISPLAY_INTENSITY   = 5
	VOLT_DISPLAY_OFFSET = 0
	AMP_DISPLAY_OFFSET  = 4 // Second row of the 2x4 bank

	// Serial configuration
	// One telemetry line is "micros,volt_est,amp_est\n", worst case
	// ~25 bytes. A display pass reads 2x250 samples at ~112us each, so
	// passes are ~56ms apart. At 9600 baud 8N1 a line takes ~26ms,
	// which fits inside one pass with 2x headroom.
	UART_BAUD_RATE  = 9600
	TELEMETRY_EVERY = 1 // Output a line every N display passes
)
