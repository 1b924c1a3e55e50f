// Command dmm is the desktop companion of the supply panel. It shows
// the eight-digit readout and a voltage/current oscillogram, fed either
// by a simulated supply front-end or by mirroring the real panel's
// debug stream over serial.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Hunter522/AtxPsuDmm/pkg/config"
	"github.com/Hunter522/AtxPsuDmm/pkg/meter"
	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
	"github.com/Hunter522/AtxPsuDmm/pkg/render"
	"github.com/Hunter522/AtxPsuDmm/pkg/sample"
	"github.com/Hunter522/AtxPsuDmm/pkg/scope"
	"github.com/Hunter522/AtxPsuDmm/pkg/sevenseg"
	"github.com/Hunter522/AtxPsuDmm/pkg/telemetry"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use a simulated supply instead of the serial panel")
		filterFlag = flag.String("filter", "", "Filter override (median, mean or carry)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Apply command line overrides
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *filterFlag != "" {
		cfg.Sampling.Filter = *filterFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.hunter522.atxpsudmm")

	// Create main window
	window := application.NewWindow("ATX PSU DMM")
	window.Resize(fyne.NewSize(1000, 720))
	window.CenterOnScreen()

	// Create application state
	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useMock:    *mockFlag,
	}

	// Create display widgets
	state.segWidget = sevenseg.New()
	state.scopeWidget = scope.New(cfg)

	// Create toolbar
	toolbar := createToolbar(state)

	// Readout on top, oscillogram below
	split := container.NewVSplit(state.segWidget, state.scopeWidget)
	split.SetOffset(0.3)

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		split,
	))

	window.SetOnClosed(func() {
		closeMeasurementChain(state.chain)
	})

	window.ShowAndRun()
}

// measurementChain tracks the components of a running measurement chain
// for graceful shutdown.
type measurementChain struct {
	device     *telemetry.Serial  // nil in mock mode
	cancel     context.CancelFunc // stops the local sampling loop, nil in mirror mode
	runDone    chan struct{}      // closed when the sampling loop exits
	meterDone  chan struct{}      // closed when ProcessReadings exits
	mirrorDone chan struct{}      // closed when the panel mirror goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string

	supply     *psu.Mock // simulated front-end, nil in mirror mode
	panelMeter *meter.Meter

	segWidget   *sevenseg.Widget
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	railBtns    [3]*widget.Button
	loadSlider  *widget.Slider

	useMock    bool
	activeRail int               // index into railVolts, -1 when none selected
	chain      *measurementChain // Current measurement chain (nil if not connected)

	// Throttling for widget updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect and
// Settings on the left and the simulated supply controls on the right.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	// Rail preset buttons and a load slider drive the simulated supply;
	// they stay disabled when mirroring the real panel
	state.activeRail = -1
	for i := range state.railBtns {
		rail := i
		btn := widget.NewButton(railLabel(railVolts[rail]), func() {
			handleRailSelect(state, rail)
		})
		btn.Disable()
		state.railBtns[i] = btn
	}

	loadSlider := widget.NewSlider(0, 10)
	loadSlider.Step = 0.25
	loadSlider.OnChanged = func(amps float64) {
		handleLoadChange(state, float32(amps))
	}
	loadSlider.Disable()
	state.loadSlider = loadSlider

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		container.NewHBox(state.railBtns[0], state.railBtns[1], state.railBtns[2]), // right
		loadSlider, // center
	)
}

// closeMeasurementChain gracefully closes the measurement chain.
// Waits for all goroutines to finish and channels to drain.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	// Stop the local sampling loop
	if chain.cancel != nil {
		chain.cancel()
	}

	// Close the serial device - this closes the readings channel
	if chain.device != nil {
		chain.device.Close()
	}

	if chain.runDone != nil {
		<-chain.runDone
	}
	if chain.meterDone != nil {
		<-chain.meterDone
	}
	if chain.mirrorDone != nil {
		<-chain.mirrorDone
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.chain != nil {
		// Disconnect - gracefully close measurement chain
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.supply = nil
		setSupplyControlsEnabled(state, false)

		// Park the readout the way the chip parks: latched but dark
		state.segWidget.Shutdown(true)
		state.segWidget.Refresh()

		if state.useMock {
			fmt.Println("Disconnected from simulated supply")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	// A fresh meter picks up any sampling settings changed since the
	// last connect
	var adc psu.ADC
	if state.useMock {
		state.supply = psu.NewMock(state.cfg.MockParams())
		adc = state.supply
	}
	panelMeter, err := meter.New(state.cfg, adc)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to build measurement pipeline: %w", err), state.window)
		state.supply = nil
		return
	}
	state.panelMeter = panelMeter

	// Register callback to update the widgets.
	// Throttle updates to ~60 FPS (16.67ms between updates) to ensure smooth UI
	const updateInterval = 16 * time.Millisecond // ~60 FPS
	panelMeter.OnUpdate(func(latest sample.Measurement, history []sample.Measurement) {
		state.updateMu.Lock()
		now := time.Now()
		tooSoon := now.Sub(state.lastUpdateTime) < updateInterval
		if !tooSoon {
			state.lastUpdateTime = now
		}
		state.updateMu.Unlock()

		// Skip update if too soon since last update
		if tooSoon {
			return
		}

		// Update widgets on the main thread. The scope widget handles
		// downsampling internally, so pass full data
		fyne.Do(func() {
			state.scopeWidget.UpdateData(latest, history)
			state.segWidget.Refresh()
		})
	})

	// Drive the on-screen bank through the same power-up sequence as
	// the panel firmware
	renderer := render.New(state.segWidget, state.cfg.Display.VoltOffset, state.cfg.Display.AmpOffset)
	state.segWidget.Shutdown(false)
	state.segWidget.SetIntensity(state.cfg.Display.Intensity)
	state.segWidget.Clear()

	if state.useMock {
		connectMock(state, renderer)
	} else if !connectSerial(state, renderer) {
		return
	}

	if state.useMock {
		fmt.Println("Connected to simulated supply")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}
}

// connectMock starts the local sampling chain against the simulated
// supply.
func connectMock(state *appState, renderer *render.Renderer) {
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		state.panelMeter.Run(ctx, renderer)
	}()

	state.chain = &measurementChain{
		cancel:  cancel,
		runDone: runDone,
	}

	// Controls start from the configured mock targets
	setSupplyControlsEnabled(state, true)
	state.activeRail = -1
	updateRailButtonStates(state)
	state.loadSlider.SetValue(float64(state.cfg.Mock.Amps))
}

// connectSerial starts the mirror chain reading the panel's debug
// stream. Returns false when the port cannot be opened.
func connectSerial(state *appState, renderer *render.Renderer) bool {
	device := telemetry.New(state.cfg.Serial.Port, state.cfg.Serial.Baud, telemetry.DefaultBufferSize)
	if err := device.Connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		return false
	}

	// The stream has two consumers, the meter history and the readout
	// mirror, so duplicate it
	meterReadings, mirrorReadings := fanOut(device.Readings())

	meterDone := make(chan struct{})
	go func() {
		defer close(meterDone)
		state.panelMeter.ProcessReadings(meterReadings)
	}()

	mirrorDone := make(chan struct{})
	go func() {
		defer close(mirrorDone)
		scale := state.cfg.FrontEndScale()
		for r := range mirrorReadings {
			if err := renderer.Refresh(scale.Measure(r.Timestamp, r.VoltEst, r.AmpEst)); err != nil {
				log.Printf("Panel mirror refresh failed: %v", err)
			}
		}
	}()

	state.chain = &measurementChain{
		device:     device,
		meterDone:  meterDone,
		mirrorDone: mirrorDone,
	}
	return true
}

// fanOut duplicates readings to two consumers. Both output channels
// close when the input closes.
func fanOut(in <-chan telemetry.Reading) (<-chan telemetry.Reading, <-chan telemetry.Reading) {
	a := make(chan telemetry.Reading, telemetry.DefaultBufferSize)
	b := make(chan telemetry.Reading, telemetry.DefaultBufferSize)

	go func() {
		defer close(a)
		defer close(b)
		for r := range in {
			a <- r
			b <- r
		}
	}()

	return a, b
}
