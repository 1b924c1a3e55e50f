package main

import (
	"fmt"

	"fyne.io/fyne/v2/widget"

	"github.com/Hunter522/AtxPsuDmm/pkg/psu"
)

// railVolts are the preset bus voltages of a converted ATX supply.
var railVolts = [3]float32{3.3, 5.0, 12.0}

// railLabel formats a rail preset button label.
func railLabel(volts float32) string {
	return fmt.Sprintf("%.1fV", volts)
}

// handleRailSelect moves the simulated bus voltage to a preset rail.
func handleRailSelect(state *appState, rail int) {
	if state.supply == nil || rail < 0 || rail >= len(railVolts) {
		return
	}

	code := state.cfg.FrontEndScale().VoltCode(railVolts[rail])
	state.supply.SetTarget(psu.ChannelVolts, code)

	// Update button visual state
	state.activeRail = rail
	updateRailButtonStates(state)
}

// handleLoadChange moves the simulated load current.
func handleLoadChange(state *appState, amps float32) {
	if state.supply == nil {
		return
	}
	state.supply.SetTarget(psu.ChannelAmps, state.cfg.FrontEndScale().AmpCode(amps))
}

// setSupplyControlsEnabled toggles the simulated supply controls. They
// stay disabled when mirroring the real panel.
func setSupplyControlsEnabled(state *appState, enabled bool) {
	enabled = enabled && state.useMock
	for _, btn := range state.railBtns {
		if enabled {
			btn.Enable()
		} else {
			btn.Disable()
		}
	}
	if enabled {
		state.loadSlider.Enable()
	} else {
		state.loadSlider.Disable()
	}
}

// updateRailButtonStates updates the visual state of the rail buttons.
func updateRailButtonStates(state *appState) {
	for i, btn := range state.railBtns {
		updateRailButton(btn, i == state.activeRail)
	}
}

// updateRailButton updates a single rail button's visual state.
func updateRailButton(btn *widget.Button, active bool) {
	if active {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}
