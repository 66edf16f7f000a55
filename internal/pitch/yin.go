package pitch

import "github.com/dmateos/needletune/internal/audio"

// Yin estimates the fundamental frequency with the cumulative-mean
// normalized difference method: the lag at which the frame most closely
// resembles a delayed copy of itself gives the period. The normalized
// curve starts at 1 and dips toward 0 near the true period, which makes
// it far less sensitive to amplitude and harmonic balance than raw
// autocorrelation.
//
// The maximum usable lag is half the frame length, so the frame must be
// longer than 2 * sampleRate / MinFrequency for the lowest pitches to be
// reachable. That precondition is the caller's to uphold.
type Yin struct {
	cfg Config
}

// NewYin creates a difference-function estimator with the given
// detection constants.
func NewYin(cfg Config) *Yin {
	return &Yin{cfg: cfg}
}

// Estimate returns the fundamental frequency of the frame, or false when
// the frame is silent, non-periodic, or out of the configured band.
func (y *Yin) Estimate(frame audio.Frame) (float64, bool) {
	half := len(frame.Samples) / 2
	if half < 2 || frame.SampleRate <= 0 {
		return 0, false
	}

	// Silence gate: ambient noise must not produce spurious detections.
	if rms, _ := audio.Level(frame); rms < y.cfg.NoiseFloor {
		return 0, false
	}

	// Squared difference between the frame and itself shifted by tau,
	// summed over the first half so the shifted window stays in bounds.
	diff := make([]float64, half+1)
	for tau := 1; tau <= half; tau++ {
		sum := 0.0
		for i := 0; i < half; i++ {
			delta := float64(frame.Samples[i]) - float64(frame.Samples[i+tau])
			sum += delta * delta
		}
		diff[tau] = sum
	}

	// Cumulative-mean normalization: cmnd[tau] = diff[tau] * tau / sum(diff[1..tau]).
	cmnd := make([]float64, half+1)
	cmnd[0] = 1
	running := 0.0
	for tau := 1; tau <= half; tau++ {
		running += diff[tau]
		if running == 0 {
			cmnd[tau] = 1
		} else {
			cmnd[tau] = diff[tau] * float64(tau) / running
		}
	}

	// First dip below threshold is the period candidate; keep advancing
	// while the curve still falls, so a deeper minimum immediately after
	// the crossing wins over the crossing point itself.
	candidate := -1
	for tau := 2; tau <= half; tau++ {
		if cmnd[tau] < y.cfg.Threshold {
			for tau+1 <= half && cmnd[tau+1] < cmnd[tau] {
				tau++
			}
			candidate = tau
			break
		}
	}
	if candidate < 0 {
		// Signal present but not tonal enough.
		return 0, false
	}

	lag := refineLag(cmnd, candidate)
	frequency := float64(frame.SampleRate) / lag
	if frequency < y.cfg.MinFrequency || frequency > y.cfg.MaxFrequency {
		return 0, false
	}
	return frequency, true
}

// refineLag fits a parabola through the normalized values at tau-1, tau,
// tau+1 and returns the fractional lag at the vertex. Integer-only lags
// quantize the frequency audibly, especially at low pitches.
func refineLag(cmnd []float64, tau int) float64 {
	if tau <= 0 || tau+1 >= len(cmnd) {
		return float64(tau)
	}
	prev := cmnd[tau-1]
	current := cmnd[tau]
	next := cmnd[tau+1]

	denom := prev - 2*current + next
	if denom == 0 {
		return float64(tau)
	}
	return float64(tau) + 0.5*(prev-next)/denom
}

// EstimateFrequency runs the difference-function estimator with default
// configuration over a raw sample block. Stateless convenience for hosts
// that do not need a configured estimator.
func EstimateFrequency(samples []float32, sampleRate int) (float64, bool) {
	y := Yin{cfg: DefaultConfig()}
	return y.Estimate(audio.Frame{Samples: samples, SampleRate: sampleRate})
}
