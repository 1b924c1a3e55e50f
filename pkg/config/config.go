package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
	"github.com/Hunter522/AtxPsuDmm/pkg/sample"
	"gopkg.in/yaml.v3"
)

// Filter strategy names accepted in the sampling section.
const (
	FilterMedian = "median"
	FilterMean   = "mean"
	FilterCarry  = "carry"
)

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Scale    ScaleConfig    `yaml:"scale"`
	Sampling SamplingConfig `yaml:"sampling"`
	Display  DisplayConfig  `yaml:"display"`
	History  HistoryConfig  `yaml:"history"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains the panel telemetry port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// ScaleConfig contains the analog front-end constants. The values
// mirror what the panel firmware was built with; change them only when
// the hardware changes.
type ScaleConfig struct {
	VoltScale    float32 `yaml:"volt_scale"`     // full-scale bus voltage (V)
	CurrentScale float32 `yaml:"current_scale"`  // shunt volts at full amplifier swing (V)
	OpAmpGain    float32 `yaml:"opamp_gain"`     // shunt amplifier gain
	ShuntOhms    float32 `yaml:"shunt_ohms"`     // shunt resistance (ohm)
	ADCFullScale float32 `yaml:"adc_full_scale"` // largest raw converter code
}

// SamplingConfig contains filter strategy and pacing parameters.
type SamplingConfig struct {
	Filter     string        `yaml:"filter"`      // median, mean or carry
	WindowSize int           `yaml:"window_size"` // raw reads per estimate
	Interval   time.Duration `yaml:"interval"`    // display refresh pacing
}

// DisplayConfig contains display bank layout and brightness.
type DisplayConfig struct {
	Intensity  uint8 `yaml:"intensity"`
	VoltOffset uint8 `yaml:"volt_offset"` // row offset of the volts readout
	AmpOffset  uint8 `yaml:"amp_offset"`  // row offset of the amps readout
}

// HistoryConfig contains measurement history parameters for the trend
// view.
type HistoryConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"`
	MaxPoints     int     `yaml:"max_points"`
}

// MockConfig contains simulated supply configuration in physical units.
type MockConfig struct {
	Volts      float32 `yaml:"volts"`       // simulated bus voltage (V)
	Amps       float32 `yaml:"amps"`        // simulated load current (A)
	Noise      float32 `yaml:"noise"`       // ripple peak in raw counts
	SpikeEvery int     `yaml:"spike_every"` // outlier cadence, 0 disables
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyACM0", // Arduino CDC device on Linux, COMx on Windows
			Baud: 9600,
		},
		Scale: ScaleConfig{
			VoltScale:    60.0,
			CurrentScale: 0.20,
			OpAmpGain:    5.0,
			ShuntOhms:    0.1,
			ADCFullScale: 1023,
		},
		Sampling: SamplingConfig{
			Filter:     FilterMedian,
			WindowSize: 250,
			Interval:   100 * time.Millisecond,
		},
		Display: DisplayConfig{
			Intensity:  5,
			VoltOffset: 0,
			AmpOffset:  4, // second row of the 2x4 bank
		},
		History: HistoryConfig{
			WindowSeconds: 60,
			MaxPoints:     512,
		},
		Mock: MockConfig{
			Volts:      12.0,
			Amps:       1.5,
			Noise:      4,
			SpikeEvery: 50,
		},
	}
}

// FrontEndScale returns the scale constants as the conversion value the
// sampling pipeline works with.
func (c *Config) FrontEndScale() sample.Scale {
	return sample.Scale{
		VoltScale:    c.Scale.VoltScale,
		CurrentScale: c.Scale.CurrentScale,
		OpAmpGain:    c.Scale.OpAmpGain,
		ShuntOhms:    c.Scale.ShuntOhms,
		ADCFullScale: c.Scale.ADCFullScale,
	}
}

// MockParams translates the mock section's physical targets into the
// raw-code parameters of the simulated front-end.
func (c *Config) MockParams() *psu.MockConfig {
	s := c.FrontEndScale()
	return &psu.MockConfig{
		VoltCode:   s.VoltCode(c.Mock.Volts),
		AmpCode:    s.AmpCode(c.Mock.Amps),
		Noise:      c.Mock.Noise,
		SpikeEvery: c.Mock.SpikeEvery,
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist
// or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values
// if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if c.Scale.VoltScale == 0 {
		c.Scale.VoltScale = def.Scale.VoltScale
	}
	if c.Scale.CurrentScale == 0 {
		c.Scale.CurrentScale = def.Scale.CurrentScale
	}
	if c.Scale.OpAmpGain == 0 {
		c.Scale.OpAmpGain = def.Scale.OpAmpGain
	}
	if c.Scale.ShuntOhms == 0 {
		c.Scale.ShuntOhms = def.Scale.ShuntOhms
	}
	if c.Scale.ADCFullScale == 0 {
		c.Scale.ADCFullScale = def.Scale.ADCFullScale
	}

	if c.Sampling.Filter == "" {
		c.Sampling.Filter = def.Sampling.Filter
	}
	if c.Sampling.WindowSize == 0 {
		c.Sampling.WindowSize = def.Sampling.WindowSize
	}
	if c.Sampling.Interval == 0 {
		c.Sampling.Interval = def.Sampling.Interval
	}

	if c.Display.Intensity == 0 {
		c.Display.Intensity = def.Display.Intensity
	}

	if c.History.WindowSeconds == 0 {
		c.History.WindowSeconds = def.History.WindowSeconds
	}
	if c.History.MaxPoints == 0 {
		c.History.MaxPoints = def.History.MaxPoints
	}

	if c.Mock.Volts == 0 {
		c.Mock.Volts = def.Mock.Volts
	}
	if c.Mock.Amps == 0 {
		c.Mock.Amps = def.Mock.Amps
	}
}
