package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundbell/internal/core/model"
)

// manualClock is a Clock whose time only moves when the test advances it.
// Its tickers never fire, so tests drive tick directly and stay deterministic.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	return inertTicker{ch: make(chan time.Time)}
}

type inertTicker struct {
	ch chan time.Time
}

func (t inertTicker) C() <-chan time.Time { return t.ch }
func (t inertTicker) Stop()               {}

// recordingSink captures cue order for assertions.
type recordingSink struct {
	mu          sync.Mutex
	activations int
	activateErr error
	cues        []string
}

func (s *recordingSink) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activations++
	return s.activateErr
}

func (s *recordingSink) WorkPhaseEnded(round int) {
	s.record(fmt.Sprintf("work-end/%d", round))
}

func (s *recordingSink) RoundCompleted(round int) {
	s.record(fmt.Sprintf("round-complete/%d", round))
}

func (s *recordingSink) record(cue string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cues = append(s.cues, cue)
}

func (s *recordingSink) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cues...)
}

func newTestEngine(t *testing.T, work, rest time.Duration, sink NotificationSink) (*Engine, *manualClock) {
	t.Helper()
	clock := newManualClock()
	e := New(model.Durations{Work: work, Rest: rest}, sink, Config{TickInterval: time.Second, Clock: clock}, zerolog.Nop())
	t.Cleanup(e.Stop)
	return e, clock
}

// tickSeconds advances the clock and delivers n one-second ticks.
func tickSeconds(e *Engine, clock *manualClock, n int) {
	for i := 0; i < n; i++ {
		e.tick(clock.Advance(time.Second))
	}
}

func TestNewStartsIdleInWorkPhase(t *testing.T) {
	e, _ := newTestEngine(t, 180*time.Second, 60*time.Second, nil)

	snap := e.Snapshot()
	assert.Equal(t, PhaseWork, snap.Phase)
	assert.Equal(t, 180*time.Second, snap.Remaining)
	assert.Equal(t, 1, snap.Round)
	assert.False(t, snap.Running)
	assert.Equal(t, 0.0, snap.Progress)
}

func TestStartIsNoOpWhileRunning(t *testing.T) {
	e, clock := newTestEngine(t, 10*time.Second, 5*time.Second, nil)

	e.Start()
	tickSeconds(e, clock, 3)
	e.Start()

	snap := e.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, 7*time.Second, snap.Remaining)
}

func TestPauseIdempotent(t *testing.T) {
	e, clock := newTestEngine(t, 10*time.Second, 5*time.Second, nil)

	e.Start()
	tickSeconds(e, clock, 4)
	e.Pause()
	first := e.Snapshot()
	e.Pause()
	second := e.Snapshot()

	assert.Equal(t, first, second)
	assert.False(t, second.Running)
	assert.Equal(t, 6*time.Second, second.Remaining)
	assert.True(t, e.anchor.IsZero())
}

func TestResetIdempotentAndCanonical(t *testing.T) {
	e, clock := newTestEngine(t, 10*time.Second, 5*time.Second, &recordingSink{})

	e.Start()
	tickSeconds(e, clock, 17) // into round 2
	require.Equal(t, 2, e.Snapshot().Round)

	e.Reset()
	first := e.Snapshot()
	e.Reset()
	second := e.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, PhaseWork, second.Phase)
	assert.Equal(t, 10*time.Second, second.Remaining)
	assert.Equal(t, 1, second.Round)
	assert.False(t, second.Running)
}

func TestTickTransitionsAtBoundary(t *testing.T) {
	sink := &recordingSink{}
	e, clock := newTestEngine(t, 3*time.Second, 2*time.Second, sink)

	e.Start()
	tickSeconds(e, clock, 2)
	assert.Equal(t, time.Second, e.Snapshot().Remaining)

	// Third tick consumes the last work second and enters rest immediately.
	tickSeconds(e, clock, 1)
	snap := e.Snapshot()
	assert.Equal(t, PhaseRest, snap.Phase)
	assert.Equal(t, 2*time.Second, snap.Remaining)
	assert.Equal(t, 1, snap.Round)

	tickSeconds(e, clock, 2)
	snap = e.Snapshot()
	assert.Equal(t, PhaseWork, snap.Phase)
	assert.Equal(t, 3*time.Second, snap.Remaining)
	assert.Equal(t, 2, snap.Round)

	assert.Equal(t, []string{"work-end/1", "round-complete/1"}, sink.recorded())
}

func TestTickRefreshesAnchor(t *testing.T) {
	e, clock := newTestEngine(t, 10*time.Second, 5*time.Second, nil)

	e.Start()
	tickSeconds(e, clock, 3)
	assert.Equal(t, clock.Now(), e.anchor)
}

func TestResumedMatchesTickingForAnyGap(t *testing.T) {
	for _, gap := range []int{0, 1, 5, 179, 180, 181, 185, 240, 500} {
		gap := gap
		t.Run(fmt.Sprintf("gap_%ds", gap), func(t *testing.T) {
			tickedSink := &recordingSink{}
			ticked, tickedClock := newTestEngine(t, 180*time.Second, 60*time.Second, tickedSink)
			ticked.Start()
			tickSeconds(ticked, tickedClock, gap)

			resyncSink := &recordingSink{}
			resynced, resyncClock := newTestEngine(t, 180*time.Second, 60*time.Second, resyncSink)
			resynced.Start()
			resynced.Suspended()
			resynced.Resumed(resyncClock.Advance(time.Duration(gap) * time.Second))

			want, got := ticked.Snapshot(), resynced.Snapshot()
			assert.Equal(t, want.Phase, got.Phase)
			assert.Equal(t, want.Remaining, got.Remaining)
			assert.Equal(t, want.Round, got.Round)
			assert.Equal(t, tickedSink.recorded(), resyncSink.recorded())
		})
	}
}

func TestResumedReplaysSingleTransitionGap(t *testing.T) {
	sink := &recordingSink{}
	e, clock := newTestEngine(t, 180*time.Second, 60*time.Second, sink)

	e.Start()
	e.Suspended()
	e.Resumed(clock.Advance(185 * time.Second))

	snap := e.Snapshot()
	assert.Equal(t, PhaseRest, snap.Phase)
	assert.Equal(t, 55*time.Second, snap.Remaining)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, []string{"work-end/1"}, sink.recorded())
}

func TestResumedReplaysMultipleRounds(t *testing.T) {
	sink := &recordingSink{}
	e, clock := newTestEngine(t, 10*time.Second, 5*time.Second, sink)

	e.Start()
	e.Suspended()
	e.Resumed(clock.Advance(37 * time.Second))

	snap := e.Snapshot()
	assert.Equal(t, PhaseWork, snap.Phase)
	assert.Equal(t, 3*time.Second, snap.Remaining)
	assert.Equal(t, 3, snap.Round)
	assert.Equal(t, []string{
		"work-end/1", "round-complete/1",
		"work-end/2", "round-complete/2",
	}, sink.recorded())
}

func TestResumedWithoutSuspensionIsNoOp(t *testing.T) {
	e, clock := newTestEngine(t, 10*time.Second, 5*time.Second, nil)

	e.Start()
	tickSeconds(e, clock, 2)
	e.Resumed(clock.Now().Add(time.Hour))

	snap := e.Snapshot()
	assert.Equal(t, 8*time.Second, snap.Remaining)
	assert.Equal(t, 1, snap.Round)
}

func TestZeroRestDurationDoesNotHangReplay(t *testing.T) {
	sink := &recordingSink{}
	e, clock := newTestEngine(t, 10*time.Second, 0, sink)

	e.Start()
	e.Suspended()
	done := make(chan struct{})
	go func() {
		e.Resumed(clock.Advance(25 * time.Second))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not terminate with a zero-length rest phase")
	}

	snap := e.Snapshot()
	assert.Equal(t, PhaseWork, snap.Phase)
	assert.Equal(t, 5*time.Second, snap.Remaining)
	assert.Equal(t, 3, snap.Round)
	// Each zero-length rest phase fires its cue exactly once per pass.
	assert.Equal(t, []string{
		"work-end/1", "round-complete/1",
		"work-end/2", "round-complete/2",
	}, sink.recorded())
}

func TestBothPhasesZeroTerminate(t *testing.T) {
	sink := &recordingSink{}
	e, clock := newTestEngine(t, 0, 0, sink)

	e.Start()
	e.Suspended()
	done := make(chan struct{})
	go func() {
		e.Resumed(clock.Advance(3 * time.Second))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not terminate with two zero-length phases")
	}

	// One full round per simulated second.
	assert.Equal(t, 4, e.Snapshot().Round)
	assert.Len(t, sink.recorded(), 6)
}

func TestProgressStaysWithinBounds(t *testing.T) {
	e, clock := newTestEngine(t, 4*time.Second, 2*time.Second, nil)

	assert.Equal(t, 0.0, e.Snapshot().Progress)

	e.Start()
	previous := 0.0
	for i := 0; i < 3; i++ {
		tickSeconds(e, clock, 1)
		progress := e.Snapshot().Progress
		assert.GreaterOrEqual(t, progress, previous)
		assert.LessOrEqual(t, progress, 1.0)
		previous = progress
	}

	// Entering a phase resets progress to zero.
	tickSeconds(e, clock, 1)
	snap := e.Snapshot()
	require.Equal(t, PhaseRest, snap.Phase)
	assert.Equal(t, 0.0, snap.Progress)
}

func TestProgressWithZeroDurationIsComplete(t *testing.T) {
	clock := newManualClock()
	e := New(model.Durations{Work: 0, Rest: 10 * time.Second}, nil, Config{Clock: clock}, zerolog.Nop())
	t.Cleanup(e.Stop)

	assert.Equal(t, 1.0, e.Snapshot().Progress)
}

func TestDurationEditWhileIdle(t *testing.T) {
	e, clock := newTestEngine(t, 120*time.Second, 30*time.Second, nil)

	// Idle in the work phase: a work edit shows up immediately.
	e.SetWorkDuration(90 * time.Second)
	assert.Equal(t, 90*time.Second, e.Snapshot().Remaining)

	// A rest edit does not touch the displayed work countdown.
	e.SetRestDuration(45 * time.Second)
	assert.Equal(t, 90*time.Second, e.Snapshot().Remaining)
	assert.Equal(t, 45*time.Second, e.Durations().Rest)

	// Idle in the rest phase: the rest edit shows up instead.
	e.Start()
	tickSeconds(e, clock, 90)
	require.Equal(t, PhaseRest, e.Snapshot().Phase)
	e.Pause()
	e.SetRestDuration(20 * time.Second)
	assert.Equal(t, 20*time.Second, e.Snapshot().Remaining)
	e.SetWorkDuration(60 * time.Second)
	assert.Equal(t, 20*time.Second, e.Snapshot().Remaining)
}

func TestDurationEditWhileRunningKeepsBound(t *testing.T) {
	e, clock := newTestEngine(t, 120*time.Second, 30*time.Second, nil)

	e.Start()
	tickSeconds(e, clock, 10)
	e.SetWorkDuration(60 * time.Second)

	// remaining never exceeds the configured phase length.
	assert.Equal(t, 60*time.Second, e.Snapshot().Remaining)
}

func TestDurationsClampedToSupportedRange(t *testing.T) {
	e, _ := newTestEngine(t, 10*time.Second, 5*time.Second, nil)

	e.SetWorkDuration(-time.Minute)
	assert.Equal(t, time.Duration(0), e.Durations().Work)

	e.SetWorkDuration(2 * time.Hour)
	assert.Equal(t, model.MaxPhase, e.Durations().Work)
}

func TestAnchorSetOnlyWhileRunning(t *testing.T) {
	e, clock := newTestEngine(t, 10*time.Second, 5*time.Second, nil)

	require.True(t, e.anchor.IsZero())
	e.Start()
	assert.Equal(t, clock.Now(), e.anchor)
	e.Pause()
	assert.True(t, e.anchor.IsZero())
}

func TestActivationFailureDoesNotStopCountdown(t *testing.T) {
	sink := &recordingSink{activateErr: errors.New("audio session unavailable")}
	e, clock := newTestEngine(t, 10*time.Second, 5*time.Second, sink)

	e.Start()
	tickSeconds(e, clock, 10)

	snap := e.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, PhaseRest, snap.Phase)
	assert.Equal(t, 1, sink.activations)
	assert.Equal(t, []string{"work-end/1"}, sink.recorded())
}

func TestRoundTripAccounting(t *testing.T) {
	const work, rest = 7, 3
	e, clock := newTestEngine(t, work*time.Second, rest*time.Second, nil)

	e.Start()
	const elapsed = 45
	tickSeconds(e, clock, elapsed)

	snap := e.Snapshot()
	completedRounds := snap.Round - 1
	var phaseElapsed time.Duration
	if snap.Phase == PhaseWork {
		phaseElapsed = snap.Durations.Work - snap.Remaining
	} else {
		phaseElapsed = snap.Durations.Work + (snap.Durations.Rest - snap.Remaining)
	}
	total := time.Duration(completedRounds)*(work+rest)*time.Second + phaseElapsed
	assert.Equal(t, elapsed*time.Second, total)
}

func TestSubscribeDeliversTicksAndStateChanges(t *testing.T) {
	e, clock := newTestEngine(t, 3*time.Second, 2*time.Second, nil)
	events := e.Subscribe(16)

	e.Start()
	started := <-events
	assert.Equal(t, EventStateChange, started.Type)
	assert.True(t, started.Running)

	tickSeconds(e, clock, 1)
	ticked := <-events
	assert.Equal(t, EventTick, ticked.Type)
	assert.Equal(t, PhaseWork, ticked.Phase)
	assert.Equal(t, 2*time.Second, ticked.Remaining)

	tickSeconds(e, clock, 2)
	var sawTransition bool
	for drained := false; !drained; {
		select {
		case event := <-events:
			if event.Type == EventStateChange && event.Phase == PhaseRest {
				sawTransition = true
			}
		default:
			drained = true
		}
	}
	assert.True(t, sawTransition)
}

func TestStopClosesObservers(t *testing.T) {
	e, _ := newTestEngine(t, 10*time.Second, 5*time.Second, nil)
	events := e.Subscribe(1)

	e.Stop()
	_, open := <-events
	assert.False(t, open)
}
