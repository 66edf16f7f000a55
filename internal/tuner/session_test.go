package tuner

import (
	"errors"
	"math"
	"testing"

	"github.com/dmateos/needletune/internal/audio"
)

const (
	testRate  = 44100
	testFrame = 4096
)

func sineBlock(freq float64) []float32 {
	samples := make([]float32, testFrame)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/testRate))
	}
	return samples
}

func silentBlock() []float32 {
	return make([]float32, testFrame)
}

func frame(samples []float32) audio.Frame {
	return audio.Frame{Samples: samples, SampleRate: testRate}
}

// failingSource refuses to start, standing in for a busy or missing
// input device.
type failingSource struct{}

func (failingSource) Start() error                { return errors.New("device busy") }
func (failingSource) Stop() error                 { return nil }
func (failingSource) Frame() (audio.Frame, error) { return audio.Frame{}, audio.ErrNotCapturing }
func (failingSource) Capturing() bool             { return false }

func TestSession_Lifecycle(t *testing.T) {
	t.Parallel()

	source := audio.NewStaticCapturer(testRate)
	s := NewSession(source, Options{})

	if got := s.State(); got != StateIdle {
		t.Fatalf("initial State() = %v, want idle", got)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if got := s.State(); got != StateActive {
		t.Fatalf("State() after Start = %v, want active", got)
	}
	if !source.Capturing() {
		t.Fatal("capturer not started by session")
	}

	if err := s.Start(); !errors.Is(err, ErrNotIdle) {
		t.Errorf("second Start() error = %v, want ErrNotIdle", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if got := s.State(); got != StateIdle {
		t.Errorf("State() after Stop = %v, want idle", got)
	}
	if source.Capturing() {
		t.Error("capturer still running after Stop")
	}

	// Stopping an idle session is a no-op.
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() on idle session error: %v", err)
	}
}

func TestSession_StartFailureReturnsToIdle(t *testing.T) {
	t.Parallel()

	s := NewSession(failingSource{}, Options{})
	if err := s.Start(); err == nil {
		t.Fatal("Start() with failing source: no error")
	}
	if got := s.State(); got != StateIdle {
		t.Errorf("State() after failed Start = %v, want idle", got)
	}
}

func TestSession_PublishesReading(t *testing.T) {
	t.Parallel()

	source := audio.NewStaticCapturer(testRate)
	s := NewSession(source, Options{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	s.OnFrame(frame(sineBlock(440)))

	r, ok := s.CurrentReading()
	if !ok {
		t.Fatal("CurrentReading() after tonal frame: no reading")
	}
	if r.Note.Name != "A" || r.Note.Octave != 4 {
		t.Errorf("reading note = %s, want A4", r.Note)
	}
	if math.Abs(r.Frequency-440) > 4.4 {
		t.Errorf("reading frequency = %.2f, want within 1%% of 440", r.Frequency)
	}
}

func TestSession_SilenceClearsAndResets(t *testing.T) {
	t.Parallel()

	source := audio.NewStaticCapturer(testRate)
	s := NewSession(source, Options{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	// Build up smoothing history on a sharp-of-center pitch.
	for i := 0; i < 4; i++ {
		s.OnFrame(frame(sineBlock(450)))
	}
	if _, ok := s.CurrentReading(); !ok {
		t.Fatal("no reading after tonal frames")
	}

	// Silence clears the reading, never holds it stale.
	s.OnFrame(frame(silentBlock()))
	if r, ok := s.CurrentReading(); ok {
		t.Fatalf("CurrentReading() after silence = %+v, want none", r)
	}

	// The next tonal frame starts a fresh window: its smoothed value is
	// that single frame's raw cents, not an average with the 450 Hz
	// history.
	s.OnFrame(frame(sineBlock(440)))
	r, ok := s.CurrentReading()
	if !ok {
		t.Fatal("no reading after post-silence frame")
	}
	if math.Abs(r.Cents-r.Note.Cents) > 1e-9 {
		t.Errorf("smoothed cents = %.4f, raw = %.4f; window was not reset", r.Cents, r.Note.Cents)
	}
}

func TestSession_RestartDoesNotLeakHistory(t *testing.T) {
	t.Parallel()

	source := audio.NewStaticCapturer(testRate)
	s := NewSession(source, Options{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		s.OnFrame(frame(sineBlock(450)))
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if r, ok := s.CurrentReading(); ok {
		t.Fatalf("CurrentReading() after Stop = %+v, want none", r)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("restart error: %v", err)
	}
	s.OnFrame(frame(sineBlock(440)))
	r, ok := s.CurrentReading()
	if !ok {
		t.Fatal("no reading after restart")
	}
	if math.Abs(r.Cents-r.Note.Cents) > 1e-9 {
		t.Errorf("smoothed cents = %.4f, raw = %.4f; prior session history leaked", r.Cents, r.Note.Cents)
	}
}

func TestSession_IgnoresFramesWhenNotActive(t *testing.T) {
	t.Parallel()

	source := audio.NewStaticCapturer(testRate)
	s := NewSession(source, Options{})

	s.OnFrame(frame(sineBlock(440)))
	if r, ok := s.CurrentReading(); ok {
		t.Errorf("CurrentReading() on idle session = %+v, want none", r)
	}
}

func TestSession_CustomReference(t *testing.T) {
	t.Parallel()

	source := audio.NewStaticCapturer(testRate)
	s := NewSession(source, Options{A4: 432})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	s.OnFrame(frame(sineBlock(432)))
	r, ok := s.CurrentReading()
	if !ok {
		t.Fatal("no reading for 432 Hz frame")
	}
	if r.Note.Name != "A" || r.Note.Octave != 4 {
		t.Errorf("reading note = %s, want A4 against 432 reference", r.Note)
	}
	if math.Abs(r.Note.Cents) > 5 {
		t.Errorf("reading cents = %.2f, want near 0 against 432 reference", r.Note.Cents)
	}
}
