// Package tray manages the system tray menu.
package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnTogglePause func()
	OnReset       func()
	OnQuit        func()
}

// Manager owns the tray menu and keeps its labels in sync with the timer.
type Manager struct {
	menu       *fyne.Menu
	statusItem *fyne.MenuItem
	pauseItem  *fyne.MenuItem
}

// New builds the tray menu and installs it on the desktop app.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{}

	manager.statusItem = fyne.NewMenuItem("Ready", nil)
	manager.statusItem.Disabled = true

	show := fyne.NewMenuItem("Show Roundbell", func() {
		if callbacks.OnShow != nil {
			callbacks.OnShow()
		}
	})

	manager.pauseItem = fyne.NewMenuItem("Start", func() {
		if callbacks.OnTogglePause != nil {
			callbacks.OnTogglePause()
		}
	})

	reset := fyne.NewMenuItem("Reset", func() {
		if callbacks.OnReset != nil {
			callbacks.OnReset()
		}
	})

	quit := fyne.NewMenuItem("Quit", func() {
		if callbacks.OnQuit != nil {
			callbacks.OnQuit()
		}
	})

	manager.menu = fyne.NewMenu("Roundbell", manager.statusItem, show, manager.pauseItem, reset, quit)
	app.SetSystemTrayMenu(manager.menu)

	return manager
}

// SetStatus updates the status line, e.g. "Work 02:41 - round 3".
func (manager *Manager) SetStatus(phase, clock string, round int) {
	manager.statusItem.Label = fmt.Sprintf("%s %s - round %d", phase, clock, round)
	manager.menu.Refresh()
}

// SetRunning flips the start/pause item label.
func (manager *Manager) SetRunning(running bool) {
	if running {
		manager.pauseItem.Label = "Pause"
	} else {
		manager.pauseItem.Label = "Start"
	}
	manager.menu.Refresh()
}
