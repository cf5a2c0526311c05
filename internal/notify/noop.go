package notify

// Noop discards all cues.
type Noop struct{}

// Activate does nothing.
func (Noop) Activate() error { return nil }

// WorkPhaseEnded does nothing.
func (Noop) WorkPhaseEnded(round int) {}

// RoundCompleted does nothing.
func (Noop) RoundCompleted(round int) {}
