// Package settings provides the duration editor window.
package settings

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"roundbell/internal/core/model"
)

// Window edits the work and rest phase lengths. Values are handed to onSave
// and applied in memory only; nothing is written to disk.
type Window struct {
	window  fyne.Window
	onSave  func(model.Durations)
	workMin *widget.Entry
	workSec *widget.Entry
	restMin *widget.Entry
	restSec *widget.Entry
}

// New creates the settings window.
func New(app fyne.App, durations model.Durations, onSave func(model.Durations)) *Window {
	window := app.NewWindow("Roundbell Settings")

	editor := &Window{
		window:  window,
		onSave:  onSave,
		workMin: widget.NewEntry(),
		workSec: widget.NewEntry(),
		restMin: widget.NewEntry(),
		restSec: widget.NewEntry(),
	}
	editor.SetDurations(durations)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Intervals", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Work"), editor.workMin, widget.NewLabel("min"), editor.workSec, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Rest"), editor.restMin, widget.NewLabel("min"), editor.restSec, widget.NewLabel("sec")),
	)

	saveButton := widget.NewButton("Save", editor.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(360, 200))
	window.SetCloseIntercept(window.Hide)

	return editor
}

// Show displays the settings window.
func (editor *Window) Show() {
	editor.window.Show()
	editor.window.RequestFocus()
}

// SetDurations refreshes the entry fields from the given values.
func (editor *Window) SetDurations(durations model.Durations) {
	workMin, workSec := model.MinSec(durations.Work)
	restMin, restSec := model.MinSec(durations.Rest)
	editor.workMin.SetText(fmt.Sprintf("%d", workMin))
	editor.workSec.SetText(fmt.Sprintf("%d", workSec))
	editor.restMin.SetText(fmt.Sprintf("%d", restMin))
	editor.restSec.SetText(fmt.Sprintf("%d", restSec))
}

func (editor *Window) handleSave() {
	durations := model.Durations{
		Work: model.FromMinSec(parseComponent(editor.workMin.Text), parseComponent(editor.workSec.Text)),
		Rest: model.FromMinSec(parseComponent(editor.restMin.Text), parseComponent(editor.restSec.Text)),
	}
	if editor.onSave != nil {
		editor.onSave(durations)
	}
	editor.window.Hide()
}

// parseComponent reads a picker field; bad input counts as zero and the
// 0-59 clamp happens in model.FromMinSec.
func parseComponent(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}
