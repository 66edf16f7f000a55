package pitch

import "github.com/dmateos/needletune/internal/audio"

// Estimator defines the interface for fundamental-frequency estimation.
// Implementations are pure per-frame transforms: no retained state, no
// side effects.
type Estimator interface {
	// Estimate returns the fundamental frequency of the frame in Hz.
	// The second return is false when the frame holds no reliable
	// single pitch: silence, non-periodic signal, or a candidate
	// outside the configured frequency band.
	Estimate(frame audio.Frame) (float64, bool)
}

var (
	_ Estimator = (*Yin)(nil)
	_ Estimator = (*Spectral)(nil)
)

// Config holds the tunable detection constants shared by estimators.
// These are empirical values for acoustic instruments, not derived ones.
type Config struct {
	NoiseFloor   float64 // minimum RMS amplitude before a frame counts as voiced
	Threshold    float64 // normalized-difference dip threshold
	MinFrequency float64 // Hz; candidates below are rejected (hum, rumble)
	MaxFrequency float64 // Hz; candidates above are rejected (octave errors)
}

// DefaultConfig returns the detection constants tuned for guitar input.
func DefaultConfig() Config {
	return Config{
		NoiseFloor:   0.01,
		Threshold:    0.15,
		MinFrequency: 60.0,   // below low B on a 5-string bass
		MaxFrequency: 1500.0, // above E6 on guitar (~1319 Hz)
	}
}
