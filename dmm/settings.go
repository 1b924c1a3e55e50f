package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/Hunter522/AtxPsuDmm/pkg/config"
	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
	"github.com/Hunter522/AtxPsuDmm/pkg/telemetry"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createFrontEndTab(state),
		createSamplingTab(state),
		createDisplayTab(state),
		createHistoryTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig persists the configuration, surfacing errors in a dialog.
func saveConfig(state *appState) bool {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := telemetry.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {
		// Selection handler - applied on submit
	})
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.Baud))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.Baud = baud
			}

			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected // Fallback to selected text
				}

				portChanged := state.cfg.Serial.Port != selectedPort
				wasConnected := state.chain != nil

				state.cfg.Serial.Port = selectedPort
				if !saveConfig(state) {
					return
				}

				// If the port changed while connected, restart the
				// measurement chain on the new port
				if portChanged && wasConnected && !state.useMock {
					closeMeasurementChain(state.chain)
					state.chain = nil
					handleConnect(state)
				}
				return
			}

			saveConfig(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createFrontEndTab creates the analog front-end scaling tab.
func createFrontEndTab(state *appState) *container.TabItem {
	voltScaleEntry := widget.NewEntry()
	voltScaleEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Scale.VoltScale))

	currentScaleEntry := widget.NewEntry()
	currentScaleEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Scale.CurrentScale))

	opAmpGainEntry := widget.NewEntry()
	opAmpGainEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Scale.OpAmpGain))

	shuntOhmsEntry := widget.NewEntry()
	shuntOhmsEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Scale.ShuntOhms))

	fullScaleEntry := widget.NewEntry()
	fullScaleEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Scale.ADCFullScale))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Divider Full Scale (V)", Widget: voltScaleEntry},
			{Text: "Shunt Full Swing (V)", Widget: currentScaleEntry},
			{Text: "Op-Amp Gain", Widget: opAmpGainEntry},
			{Text: "Shunt (Ω)", Widget: shuntOhmsEntry},
			{Text: "ADC Full Scale", Widget: fullScaleEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(voltScaleEntry.Text, 32); err == nil {
				state.cfg.Scale.VoltScale = float32(v)
			}
			if v, err := strconv.ParseFloat(currentScaleEntry.Text, 32); err == nil {
				state.cfg.Scale.CurrentScale = float32(v)
			}
			if v, err := strconv.ParseFloat(opAmpGainEntry.Text, 32); err == nil {
				state.cfg.Scale.OpAmpGain = float32(v)
			}
			if v, err := strconv.ParseFloat(shuntOhmsEntry.Text, 32); err == nil {
				state.cfg.Scale.ShuntOhms = float32(v)
			}
			if v, err := strconv.ParseFloat(fullScaleEntry.Text, 32); err == nil {
				state.cfg.Scale.ADCFullScale = float32(v)
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Front-End", form)
}

// createSamplingTab creates the Sampling configuration tab.
func createSamplingTab(state *appState) *container.TabItem {
	filterSelect := widget.NewSelect([]string{
		config.FilterMedian,
		config.FilterMean,
		config.FilterCarry,
	}, func(selected string) {
		// Applied on submit
	})
	filterSelect.SetSelected(state.cfg.Sampling.Filter)

	windowSizeEntry := widget.NewEntry()
	windowSizeEntry.SetText(strconv.Itoa(state.cfg.Sampling.WindowSize))

	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(state.cfg.Sampling.Interval.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Filter", Widget: filterSelect},
			{Text: "Window Size (samples)", Widget: windowSizeEntry},
			{Text: "Refresh Interval", Widget: intervalEntry},
		},
		OnSubmit: func() {
			if filterSelect.Selected != "" {
				state.cfg.Sampling.Filter = filterSelect.Selected
			}
			if ws, err := strconv.Atoi(windowSizeEntry.Text); err == nil && ws > 0 {
				state.cfg.Sampling.WindowSize = ws
			}
			if iv, err := time.ParseDuration(intervalEntry.Text); err == nil && iv > 0 {
				state.cfg.Sampling.Interval = iv
			}
			// The sampler is rebuilt on the next connect
			saveConfig(state)
		},
	}

	return container.NewTabItem("Sampling", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	intensityEntry := widget.NewEntry()
	intensityEntry.SetText(strconv.Itoa(int(state.cfg.Display.Intensity)))

	voltOffsetEntry := widget.NewEntry()
	voltOffsetEntry.SetText(strconv.Itoa(int(state.cfg.Display.VoltOffset)))

	ampOffsetEntry := widget.NewEntry()
	ampOffsetEntry.SetText(strconv.Itoa(int(state.cfg.Display.AmpOffset)))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Intensity (0-15)", Widget: intensityEntry},
			{Text: "Volts Row Offset", Widget: voltOffsetEntry},
			{Text: "Amps Row Offset", Widget: ampOffsetEntry},
		},
		OnSubmit: func() {
			if level, err := strconv.Atoi(intensityEntry.Text); err == nil && level >= 0 && level <= 15 {
				state.cfg.Display.Intensity = uint8(level)
			}
			if off, err := strconv.Atoi(voltOffsetEntry.Text); err == nil && off >= 0 && off < 8 {
				state.cfg.Display.VoltOffset = uint8(off)
			}
			if off, err := strconv.Atoi(ampOffsetEntry.Text); err == nil && off >= 0 && off < 8 {
				state.cfg.Display.AmpOffset = uint8(off)
			}
			if !saveConfig(state) {
				return
			}
			// Intensity applies to the readout right away; offsets take
			// effect on the next connect
			if state.chain != nil {
				state.segWidget.SetIntensity(state.cfg.Display.Intensity)
				state.segWidget.Refresh()
			}
		},
	}

	return container.NewTabItem("Display", form)
}

// createHistoryTab creates the History configuration tab.
func createHistoryTab(state *appState) *container.TabItem {
	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.History.WindowSeconds))

	maxPointsEntry := widget.NewEntry()
	maxPointsEntry.SetText(strconv.Itoa(state.cfg.History.MaxPoints))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Max Scope Points", Widget: maxPointsEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil && ws > 0 {
				state.cfg.History.WindowSeconds = ws
			}
			if mp, err := strconv.Atoi(maxPointsEntry.Text); err == nil && mp > 0 {
				state.cfg.History.MaxPoints = mp
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("History", form)
}

// createMockTab creates the simulated supply configuration tab.
func createMockTab(state *appState) *container.TabItem {
	voltsEntry := widget.NewEntry()
	voltsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.Volts))

	ampsEntry := widget.NewEntry()
	ampsEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.Amps))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.Noise))

	spikeEveryEntry := widget.NewEntry()
	spikeEveryEntry.SetText(strconv.Itoa(state.cfg.Mock.SpikeEvery))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Bus Voltage (V)", Widget: voltsEntry},
			{Text: "Load Current (A)", Widget: ampsEntry},
			{Text: "Noise (counts)", Widget: noiseEntry},
			{Text: "Spike Every (reads)", Widget: spikeEveryEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(voltsEntry.Text, 32); err == nil {
				state.cfg.Mock.Volts = float32(v)
			}
			if a, err := strconv.ParseFloat(ampsEntry.Text, 32); err == nil {
				state.cfg.Mock.Amps = float32(a)
			}
			if n, err := strconv.ParseFloat(noiseEntry.Text, 32); err == nil {
				state.cfg.Mock.Noise = float32(n)
			}
			if se, err := strconv.Atoi(spikeEveryEntry.Text); err == nil && se >= 0 {
				state.cfg.Mock.SpikeEvery = se
			}
			if !saveConfig(state) {
				return
			}
			// Steer a running simulated supply to the new targets;
			// noise and spike cadence apply on the next connect
			if state.supply != nil {
				scale := state.cfg.FrontEndScale()
				state.supply.SetTarget(psu.ChannelVolts, scale.VoltCode(state.cfg.Mock.Volts))
				state.supply.SetTarget(psu.ChannelAmps, scale.AmpCode(state.cfg.Mock.Amps))
				state.activeRail = -1
				updateRailButtonStates(state)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
