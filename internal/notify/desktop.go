// Package notify translates engine phase transitions into user-visible cues.
package notify

import (
	"fmt"

	"fyne.io/fyne/v2"
	"github.com/rs/zerolog"

	"roundbell/resources"
)

// CueSound is the bundled notification sound looked up on activation.
const CueSound = "bell.wav"

// Desktop announces transitions through system notifications. Calls never
// block and never report errors back to the engine.
type Desktop struct {
	app    fyne.App
	logger zerolog.Logger
}

// NewDesktop creates a desktop notification sink for the given app.
func NewDesktop(app fyne.App, logger zerolog.Logger) *Desktop {
	return &Desktop{app: app, logger: logger}
}

// Activate verifies the bundled cue sound is available. A missing cue is not
// an error: the system notification sound covers for it.
func (d *Desktop) Activate() error {
	if _, err := resources.Cue(CueSound); err != nil {
		d.logger.Debug().Err(err).Msg("cue sound unavailable, falling back to the system notification sound")
	}
	return nil
}

// WorkPhaseEnded announces the start of a rest phase.
func (d *Desktop) WorkPhaseEnded(round int) {
	d.send("Rest", fmt.Sprintf("Round %d work is done. Catch your breath.", round))
}

// RoundCompleted announces the start of the next round's work phase.
func (d *Desktop) RoundCompleted(round int) {
	d.send("Work", fmt.Sprintf("Round %d complete. Round %d starts now.", round, round+1))
}

func (d *Desktop) send(title, content string) {
	d.app.SendNotification(fyne.NewNotification(title, content))
}
