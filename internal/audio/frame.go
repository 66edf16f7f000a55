package audio

import "math"

// Frame is a block of mono audio samples tagged with the sample rate it
// was captured at. Frames are values: the engine never retains one past
// the call that processes it.
type Frame struct {
	Samples    []float32
	SampleRate int
}

// Len returns the number of samples in the frame.
func (f Frame) Len() int {
	return len(f.Samples)
}

// Level calculates the RMS amplitude and dB level of a frame.
func Level(f Frame) (rms, db float64) {
	if len(f.Samples) == 0 {
		return 0, -100
	}

	sumSquares := 0.0
	for _, sample := range f.Samples {
		v := float64(sample)
		sumSquares += v * v
	}
	rms = math.Sqrt(sumSquares / float64(len(f.Samples)))

	// Calculate dB (with protection against log(0))
	if rms > 0.0000001 {
		db = 20 * math.Log10(rms)
	} else {
		db = -100
	}

	return rms, db
}
