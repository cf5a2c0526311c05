package model

import (
	"fmt"
	"time"
)

const (
	// MaxPhase is the longest configurable phase length (59 minutes 59 seconds).
	MaxPhase = 3599 * time.Second

	// DefaultWork and DefaultRest are the out-of-the-box phase lengths.
	DefaultWork = 3 * time.Minute
	DefaultRest = time.Minute
)

// Durations holds the configured lengths of the two alternating phases.
type Durations struct {
	Work time.Duration
	Rest time.Duration
}

// DefaultDurations returns the default work/rest lengths.
func DefaultDurations() Durations {
	return Durations{Work: DefaultWork, Rest: DefaultRest}
}

// FromMinSec builds a phase duration from a minutes/seconds pair.
// Each component is clamped to the 0-59 picker range.
func FromMinSec(minutes, seconds int) time.Duration {
	return time.Duration(clampComponent(minutes))*time.Minute +
		time.Duration(clampComponent(seconds))*time.Second
}

// MinSec splits a phase duration into its minutes/seconds picker components.
func MinSec(duration time.Duration) (minutes, seconds int) {
	total := int(Clamp(duration) / time.Second)
	return total / 60, total % 60
}

// Clamp restricts a phase duration to whole seconds within 0-59:59.
func Clamp(duration time.Duration) time.Duration {
	if duration < 0 {
		return 0
	}
	if duration > MaxPhase {
		return MaxPhase
	}
	return duration.Truncate(time.Second)
}

// FormatClock renders a duration as mm:ss for display.
func FormatClock(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	total := int(duration / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func clampComponent(value int) int {
	if value < 0 {
		return 0
	}
	if value > 59 {
		return 59
	}
	return value
}
