package engine

import (
	"time"

	"roundbell/internal/core/model"
)

// Phase identifies one of the two alternating countdown segments.
type Phase string

const (
	PhaseWork Phase = "work"
	PhaseRest Phase = "rest"
)

// EventType defines the type of engine event delivered to observers.
type EventType string

const (
	// EventStateChange marks a phase switch or a change of the running flag.
	EventStateChange EventType = "state_change"
	// EventTick is emitted once per counted second while running.
	EventTick EventType = "tick"
)

// Event carries an engine update to observers.
type Event struct {
	Type      EventType
	Phase     Phase
	Remaining time.Duration
	Round     int
	Running   bool
	Progress  float64
	At        time.Time
}

// Snapshot is the continuously observable engine state.
type Snapshot struct {
	Phase     Phase
	Remaining time.Duration
	Round     int
	Running   bool
	Progress  float64
	Durations model.Durations
}
