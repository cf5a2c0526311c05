package notify

import "github.com/rs/zerolog"

// Log writes phase cues to the logger only. Used when no desktop notification
// surface is available.
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a logging sink.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

// Activate is a no-op for the logging sink.
func (s *Log) Activate() error { return nil }

// WorkPhaseEnded logs the work-to-rest transition.
func (s *Log) WorkPhaseEnded(round int) {
	s.logger.Info().Int("round", round).Msg("work phase complete, rest begins")
}

// RoundCompleted logs the rest-to-work transition.
func (s *Log) RoundCompleted(round int) {
	s.logger.Info().Int("round", round).Msg("round complete, next work phase begins")
}
