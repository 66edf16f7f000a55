package tuner

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dmateos/needletune/internal/audio"
	"github.com/dmateos/needletune/internal/pitch"
)

// State is the lifecycle state of a tuning session.
type State int

const (
	// StateIdle: no capture running, no reading published.
	StateIdle State = iota
	// StateStarting: acquisition is being opened (device, permissions).
	StateStarting
	// StateActive: frames are being processed as they arrive.
	StateActive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	}
	return "unknown"
}

// ErrNotIdle is returned by Start on a session that is already running.
var ErrNotIdle = errors.New("tuning session already started")

// Reading is the published tuning snapshot.
type Reading struct {
	Note      pitch.Note
	Cents     float64 // smoothed deviation for display
	Frequency float64 // raw estimate from the latest frame
}

// Options configures a session. Zero values select the defaults: a
// difference-function estimator, a window of pitch.DefaultWindow, and
// concert pitch.
type Options struct {
	Estimator pitch.Estimator
	Window    int     // stabilizer capacity
	A4        float64 // tuning reference in Hz
}

// Session owns the tuning pipeline: it drives the capturer's lifecycle
// and, while active, runs every incoming frame through estimation, note
// mapping, and smoothing, publishing the latest reading.
//
// Frames are processed strictly one at a time; all methods serialize on
// the session mutex, so Stop is synchronous and no in-flight frame can
// straddle it. Each session owns its stabilizer and reading slot, so a
// fresh session never observes a prior one's history.
type Session struct {
	mu      sync.Mutex
	state   State
	source  audio.Capturer
	est     pitch.Estimator
	window  *pitch.Stabilizer
	a4      float64
	reading *Reading
}

// NewSession creates an idle session around the given frame source.
func NewSession(source audio.Capturer, opts Options) *Session {
	est := opts.Estimator
	if est == nil {
		est = pitch.NewYin(pitch.DefaultConfig())
	}
	a4 := opts.A4
	if a4 <= 0 {
		a4 = pitch.ConcertA4
	}
	return &Session{
		state:  StateIdle,
		source: source,
		est:    est,
		window: pitch.NewStabilizer(opts.Window),
		a4:     a4,
	}
}

// Start opens acquisition. The session passes through StateStarting
// while the device opens and lands in StateActive on success; on failure
// it returns to StateIdle and reports the error.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrNotIdle
	}

	s.state = StateStarting
	if err := s.source.Start(); err != nil {
		s.state = StateIdle
		return fmt.Errorf("start capture: %w", err)
	}

	s.state = StateActive
	return nil
}

// OnFrame processes one captured frame. Outside StateActive it is a
// no-op. On a successful estimate the note reading is published with the
// smoothed cents value; on a no-pitch frame the stabilizer is reset and
// the reading cleared, never held stale.
func (s *Session) OnFrame(frame audio.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return
	}

	frequency, ok := s.est.Estimate(frame)
	if !ok {
		s.window.Reset()
		s.reading = nil
		return
	}

	note := pitch.FrequencyToNoteAt(frequency, s.a4)
	smoothed := s.window.Push(note.Cents)
	s.reading = &Reading{
		Note:      note,
		Cents:     smoothed,
		Frequency: frequency,
	}
}

// Stop releases acquisition and clears all session-owned state. Safe to
// call from any state; stopping an idle session is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window.Reset()
	s.reading = nil

	if s.state == StateIdle {
		return nil
	}
	s.state = StateIdle

	if err := s.source.Stop(); err != nil {
		return fmt.Errorf("stop capture: %w", err)
	}
	return nil
}

// CurrentReading returns the latest published reading. The second return
// is false when no note was detected on the most recent frame.
func (s *Session) CurrentReading() (Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reading == nil {
		return Reading{}, false
	}
	return *s.reading, true
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
