// Package mainwindow renders the countdown.
package mainwindow

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"roundbell/internal/core/engine"
	"roundbell/internal/core/model"
)

// Callbacks defines the control handlers.
type Callbacks struct {
	OnStartPause func()
	OnReset      func()
	OnSettings   func()
}

// Window shows the current phase, the mm:ss countdown, the round counter and
// a progress bar. All mutation must happen on the Fyne UI goroutine.
type Window struct {
	window     fyne.Window
	phaseLabel *widget.Label
	clockText  *canvas.Text
	roundLabel *widget.Label
	progress   *widget.ProgressBar
	startBtn   *widget.Button
}

// New creates the main window.
func New(app fyne.App, callbacks Callbacks) *Window {
	window := app.NewWindow("Roundbell")

	main := &Window{
		window:     window,
		phaseLabel: widget.NewLabelWithStyle("WORK", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		clockText:  canvas.NewText("00:00", color.White),
		roundLabel: widget.NewLabelWithStyle("Round 1", fyne.TextAlignCenter, fyne.TextStyle{}),
		progress:   widget.NewProgressBar(),
	}
	main.clockText.TextSize = 64
	main.clockText.Alignment = fyne.TextAlignCenter
	main.clockText.TextStyle = fyne.TextStyle{Monospace: true}

	main.startBtn = widget.NewButton("Start", func() {
		if callbacks.OnStartPause != nil {
			callbacks.OnStartPause()
		}
	})
	resetBtn := widget.NewButton("Reset", func() {
		if callbacks.OnReset != nil {
			callbacks.OnReset()
		}
	})
	settingsBtn := widget.NewButton("Settings", func() {
		if callbacks.OnSettings != nil {
			callbacks.OnSettings()
		}
	})

	content := container.NewVBox(
		main.phaseLabel,
		container.NewPadded(main.clockText),
		main.roundLabel,
		main.progress,
		container.NewGridWithColumns(3, main.startBtn, resetBtn, settingsBtn),
	)
	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(320, 300))

	return main
}

// Show displays the window.
func (main *Window) Show() {
	main.window.Show()
}

// Native exposes the underlying window for close handling.
func (main *Window) Native() fyne.Window {
	return main.window
}

// Apply renders an engine event. Call from the UI goroutine via fyne.Do.
func (main *Window) Apply(event engine.Event) {
	main.phaseLabel.SetText(phaseTitle(event.Phase))
	main.clockText.Text = model.FormatClock(event.Remaining)
	main.clockText.Refresh()
	main.roundLabel.SetText(fmt.Sprintf("Round %d", event.Round))
	main.progress.SetValue(event.Progress)
	if event.Running {
		main.startBtn.SetText("Pause")
	} else {
		main.startBtn.SetText("Start")
	}
}

func phaseTitle(phase engine.Phase) string {
	if phase == engine.PhaseRest {
		return "REST"
	}
	return "WORK"
}
