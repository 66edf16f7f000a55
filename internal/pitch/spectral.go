package pitch

import (
	"math"
	"math/cmplx"

	"github.com/dmateos/needletune/internal/audio"
	"github.com/mjibson/go-dsp/fft"
)

// Spectral estimates the fundamental frequency in the frequency domain:
// Hann window, FFT, then the strongest interpolated peak inside the
// configured band. Kept as an alternative to Yin; it reacts faster on
// bright signals but is more prone to picking a harmonic on plucked
// strings.
type Spectral struct {
	cfg           Config
	peakThreshold float64 // minimum peak height as fraction of the tallest peak
}

// NewSpectral creates an FFT-based estimator with the given detection
// constants.
func NewSpectral(cfg Config) *Spectral {
	return &Spectral{
		cfg:           cfg,
		peakThreshold: 0.2,
	}
}

// Estimate returns the strongest spectral peak inside the band, or false
// when the frame is silent or has no usable peak.
func (s *Spectral) Estimate(frame audio.Frame) (float64, bool) {
	if len(frame.Samples) == 0 || frame.SampleRate <= 0 {
		return 0, false
	}

	if rms, _ := audio.Level(frame); rms < s.cfg.NoiseFloor {
		return 0, false
	}

	windowed := applyHannWindow(frame.Samples)
	complexSamples := make([]complex128, len(windowed))
	for i, sample := range windowed {
		complexSamples[i] = complex(float64(sample), 0)
	}

	spectrum := fft.FFT(complexSamples)
	return s.findFundamental(spectrum, frame.SampleRate)
}

// applyHannWindow applies a Hann window to the audio samples
func applyHannWindow(samples []float32) []float32 {
	windowed := make([]float32, len(samples))
	for i, sample := range samples {
		coeff := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(len(samples)-1)))
		windowed[i] = sample * float32(coeff)
	}
	return windowed
}

// findFundamental scans the in-band bins for the tallest local maximum
// and refines its location by quadratic interpolation.
func (s *Spectral) findFundamental(spectrum []complex128, sampleRate int) (float64, bool) {
	// Only the first half of the spectrum is meaningful (Nyquist)
	half := spectrum[:len(spectrum)/2]
	binSizeHz := float64(sampleRate) / float64(len(spectrum))

	minBin := int(s.cfg.MinFrequency / binSizeHz)
	if minBin < 1 {
		minBin = 1 // skip the DC component
	}
	maxBin := int(s.cfg.MaxFrequency / binSizeHz)
	if maxBin >= len(half) {
		maxBin = len(half) - 1
	}
	if minBin >= maxBin {
		return 0, false
	}

	maxMagnitude := 0.0
	for i := minBin; i <= maxBin; i++ {
		if m := cmplx.Abs(half[i]); m > maxMagnitude {
			maxMagnitude = m
		}
	}
	if maxMagnitude < s.cfg.NoiseFloor {
		return 0, false
	}

	bestMagnitude := 0.0
	bestFrequency := 0.0
	for i := minBin + 1; i < maxBin; i++ {
		magnitude := cmplx.Abs(half[i])
		if magnitude <= cmplx.Abs(half[i-1]) ||
			magnitude <= cmplx.Abs(half[i+1]) ||
			magnitude < maxMagnitude*s.peakThreshold ||
			magnitude <= bestMagnitude {
			continue
		}

		// Quadratic interpolation around the bin for sub-bin accuracy
		prev := cmplx.Abs(half[i-1])
		next := cmplx.Abs(half[i+1])
		freq := float64(i) * binSizeHz
		if denom := prev - 2*magnitude + next; denom != 0 {
			delta := 0.5 * (prev - next) / denom
			freq = (float64(i) + delta) * binSizeHz
		}

		bestMagnitude = magnitude
		bestFrequency = freq
	}

	if bestMagnitude == 0 {
		return 0, false
	}
	if bestFrequency < s.cfg.MinFrequency || bestFrequency > s.cfg.MaxFrequency {
		return 0, false
	}
	return bestFrequency, true
}
