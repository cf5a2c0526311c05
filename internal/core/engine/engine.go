// Package engine implements the interval timer state machine: two alternating
// countdown phases, a round counter, a 1 Hz tick loop, and wall-clock catch-up
// for gaps during which ticks could not be delivered.
package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roundbell/internal/core/model"
)

// NotificationSink receives phase-transition cues. Calls are fire-and-forget;
// implementations must not block and must not call back into the engine.
type NotificationSink interface {
	// Activate prepares the output channel. Best-effort: an error only
	// degrades feedback, never the countdown.
	Activate() error
	// WorkPhaseEnded fires when the given round's work phase completes.
	WorkPhaseEnded(round int)
	// RoundCompleted fires when the given round's rest phase completes and
	// the next round begins.
	RoundCompleted(round int)
}

// Config contains runtime options for the Engine.
type Config struct {
	TickInterval time.Duration
	Clock        Clock
}

// Engine is the interval timer state machine. All state mutation is
// serialized behind a single mutex; the tick goroutine and caller-facing
// methods never run concurrently against the state.
type Engine struct {
	mu           sync.Mutex
	durations    model.Durations
	options      Config
	phase        Phase
	remaining    time.Duration
	round        int
	running      bool
	inBackground bool
	anchor       time.Time
	stopCh       chan struct{}
	events       []chan Event
	sink         NotificationSink
	logger       zerolog.Logger
}

// cue is a pending sink notification collected while the engine lock is held
// and dispatched after it is released.
type cue struct {
	workEnded bool
	round     int
}

// New creates an Engine in the canonical idle state: work phase, round 1,
// not running.
func New(durations model.Durations, sink NotificationSink, options Config, logger zerolog.Logger) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Clock == nil {
		options.Clock = NewRealClock()
	}
	durations.Work = model.Clamp(durations.Work)
	durations.Rest = model.Clamp(durations.Rest)

	return &Engine{
		durations: durations,
		options:   options,
		phase:     PhaseWork,
		remaining: durations.Work,
		round:     1,
		sink:      sink,
		logger:    logger,
	}
}

// Subscribe registers a new observer channel. Events are delivered with a
// non-blocking send; a full channel drops events rather than stalling ticks.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.events = append(e.events, ch)
	e.mu.Unlock()
	return ch
}

// Start begins the countdown. Calling Start while already running is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.inBackground = false
	e.anchor = e.options.Clock.Now()
	e.stopCh = make(chan struct{})
	stop := e.stopCh
	e.emitLocked(e.eventLocked(EventStateChange, e.anchor))
	e.mu.Unlock()

	if e.sink != nil {
		if err := e.sink.Activate(); err != nil {
			e.logger.Warn().Err(err).Msg("notification channel activation failed, countdown continues without cues")
		}
	}

	go e.run(stop)
}

// Pause halts the countdown and clears the anchor. Idempotent. A tick already
// in flight when Pause returns is discarded by the running check in tick.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.stopLocked()
	e.emitLocked(e.eventLocked(EventStateChange, e.options.Clock.Now()))
	e.mu.Unlock()
}

// Reset returns the engine to the canonical idle state regardless of the
// current phase or round. Idempotent.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.stopLocked()
	e.phase = PhaseWork
	e.remaining = e.durations.Work
	e.round = 1
	e.emitLocked(e.eventLocked(EventStateChange, e.options.Clock.Now()))
	e.mu.Unlock()
}

// Stop halts the countdown and closes all observer channels. The engine is
// unusable for observers afterwards; intended for process shutdown.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopLocked()
	observers := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ch := range observers {
		close(ch)
	}
}

// Suspended tells the engine that the host can no longer deliver ticks. The
// tick loop is stopped but the anchor is kept so Resumed can measure the gap.
func (e *Engine) Suspended() {
	e.mu.Lock()
	if !e.running || e.inBackground {
		e.mu.Unlock()
		return
	}
	e.inBackground = true
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
	e.mu.Unlock()
}

// Resumed replays the suspension gap against the anchor and re-arms the tick
// loop. The replay runs before any new tick so the gap is never counted
// twice. Every transition replayed still reaches the NotificationSink.
func (e *Engine) Resumed(now time.Time) {
	e.mu.Lock()
	if !e.running || !e.inBackground {
		e.mu.Unlock()
		return
	}
	cues := e.replayLocked(now)
	e.inBackground = false
	e.stopCh = make(chan struct{})
	stop := e.stopCh
	e.emitLocked(e.eventLocked(EventStateChange, now))
	e.mu.Unlock()

	e.dispatch(cues)
	go e.run(stop)
}

// SetWorkDuration updates the work phase length. When the engine is idle in
// the work phase, the displayed remaining time follows the edit immediately.
func (e *Engine) SetWorkDuration(duration time.Duration) {
	e.setDuration(PhaseWork, duration)
}

// SetRestDuration updates the rest phase length. When the engine is idle in
// the rest phase, the displayed remaining time follows the edit immediately.
func (e *Engine) SetRestDuration(duration time.Duration) {
	e.setDuration(PhaseRest, duration)
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Phase:     e.phase,
		Remaining: e.remaining,
		Round:     e.round,
		Running:   e.running,
		Progress:  e.progressLocked(),
		Durations: e.durations,
	}
}

// Durations returns the configured phase lengths.
func (e *Engine) Durations() model.Durations {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.durations
}

func (e *Engine) setDuration(phase Phase, duration time.Duration) {
	duration = model.Clamp(duration)
	e.mu.Lock()
	if phase == PhaseWork {
		e.durations.Work = duration
	} else {
		e.durations.Rest = duration
	}
	if e.phase == phase {
		if !e.running {
			e.remaining = duration
		} else if e.remaining > duration {
			// Keep the countdown within the new bound.
			e.remaining = duration
		}
	}
	e.emitLocked(e.eventLocked(EventStateChange, e.options.Clock.Now()))
	e.mu.Unlock()
}

// stopLocked halts the tick loop and clears running state.
func (e *Engine) stopLocked() {
	e.running = false
	e.inBackground = false
	e.anchor = time.Time{}
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
}

func (e *Engine) run(stop chan struct{}) {
	ticker := e.options.Clock.NewTicker(e.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C():
			e.tick(now)
		}
	}
}

// tick counts one second. The decrement and the boundary transition happen in
// the same tick, which makes N ticks equivalent to a replay over an N-second
// gap.
func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	if !e.running || e.inBackground {
		e.mu.Unlock()
		return
	}

	if e.remaining > 0 {
		e.remaining -= time.Second
		if e.remaining < 0 {
			e.remaining = 0
		}
	}
	var cues []cue
	if e.remaining == 0 {
		cues = append(cues, e.transitionLocked())
		if e.remaining == 0 {
			// A zero-length follow-up phase fires immediately, once.
			cues = append(cues, e.transitionLocked())
		}
	}
	e.anchor = now

	e.emitLocked(e.eventLocked(EventTick, now))
	if len(cues) > 0 {
		e.emitLocked(e.eventLocked(EventStateChange, now))
	}
	e.mu.Unlock()

	e.dispatch(cues)
}

// replayLocked fast-forwards the state machine across a gap of undelivered
// ticks, firing every transition that real-time ticking would have fired.
// When both phases are zero-length the loop burns one simulated second per
// full round so it always terminates.
func (e *Engine) replayLocked(now time.Time) []cue {
	var cues []cue
	gap := now.Sub(e.anchor).Truncate(time.Second)
	for gap > 0 {
		if e.remaining > gap {
			e.remaining -= gap
			break
		}
		gap -= e.remaining
		cues = append(cues, e.transitionLocked())
		if e.remaining == 0 {
			cues = append(cues, e.transitionLocked())
			if e.remaining == 0 {
				gap -= time.Second
			}
		}
	}
	e.anchor = now
	return cues
}

// transitionLocked performs exactly one phase transition and returns the cue
// to dispatch for it.
func (e *Engine) transitionLocked() cue {
	if e.phase == PhaseWork {
		e.phase = PhaseRest
		e.remaining = e.durations.Rest
		return cue{workEnded: true, round: e.round}
	}
	finished := e.round
	e.phase = PhaseWork
	e.remaining = e.durations.Work
	e.round++
	return cue{workEnded: false, round: finished}
}

func (e *Engine) dispatch(cues []cue) {
	if e.sink == nil {
		return
	}
	for _, c := range cues {
		if c.workEnded {
			e.sink.WorkPhaseEnded(c.round)
		} else {
			e.sink.RoundCompleted(c.round)
		}
	}
}

func (e *Engine) progressLocked() float64 {
	total := e.durations.Work
	if e.phase == PhaseRest {
		total = e.durations.Rest
	}
	if total <= 0 {
		return 1
	}
	progress := float64(total-e.remaining) / float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (e *Engine) eventLocked(eventType EventType, at time.Time) Event {
	return Event{
		Type:      eventType,
		Phase:     e.phase,
		Remaining: e.remaining,
		Round:     e.round,
		Running:   e.running,
		Progress:  e.progressLocked(),
		At:        at,
	}
}

func (e *Engine) emitLocked(event Event) {
	for _, ch := range e.events {
		select {
		case ch <- event:
		default:
		}
	}
}
