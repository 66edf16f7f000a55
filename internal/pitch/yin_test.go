package pitch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/dmateos/needletune/internal/audio"
)

func sineFrame(freq float64, sampleRate, n int, amp float64) audio.Frame {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return audio.Frame{Samples: samples, SampleRate: sampleRate}
}

func TestYin_EstimateSine(t *testing.T) {
	t.Parallel()

	const (
		sampleRate = 44100
		frameLen   = 4096
	)
	// Open guitar strings plus the high end of the fretboard.
	freqs := []float64{82.41, 110.0, 146.83, 196.0, 246.94, 329.63, 440.0, 659.25}

	y := NewYin(DefaultConfig())
	for _, want := range freqs {
		got, ok := y.Estimate(sineFrame(want, sampleRate, frameLen, 0.5))
		if !ok {
			t.Fatalf("Estimate(%.2f Hz sine): no pitch, want a detection", want)
		}
		if rel := math.Abs(got-want) / want; rel > 0.01 {
			t.Errorf("Estimate(%.2f Hz sine) = %.3f Hz, relative error %.4f > 0.01", want, got, rel)
		}
	}
}

func TestYin_EstimateSilence(t *testing.T) {
	t.Parallel()

	y := NewYin(DefaultConfig())
	frame := audio.Frame{Samples: make([]float32, 4096), SampleRate: 44100}
	if got, ok := y.Estimate(frame); ok {
		t.Errorf("Estimate(silence) = %.3f Hz, want no pitch", got)
	}
}

func TestYin_EstimateSubFloorNoise(t *testing.T) {
	t.Parallel()

	// Uniform noise at amplitude 0.005 has an RMS of ~0.003, below the
	// default 0.01 floor.
	rng := rand.New(rand.NewSource(1))
	samples := make([]float32, 4096)
	for i := range samples {
		samples[i] = float32((rng.Float64()*2 - 1) * 0.005)
	}

	y := NewYin(DefaultConfig())
	if got, ok := y.Estimate(audio.Frame{Samples: samples, SampleRate: 44100}); ok {
		t.Errorf("Estimate(sub-floor noise) = %.3f Hz, want no pitch", got)
	}
}

func TestYin_EstimateLoudNoise(t *testing.T) {
	t.Parallel()

	// Loud white noise passes the silence gate but has no periodic
	// structure, so the normalized curve never dips below threshold.
	rng := rand.New(rand.NewSource(7))
	samples := make([]float32, 4096)
	for i := range samples {
		samples[i] = float32((rng.Float64()*2 - 1) * 0.5)
	}

	y := NewYin(DefaultConfig())
	if got, ok := y.Estimate(audio.Frame{Samples: samples, SampleRate: 44100}); ok {
		t.Errorf("Estimate(loud noise) = %.3f Hz, want no pitch", got)
	}
}

func TestYin_EstimateRejectsOutOfBand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		freq float64
	}{
		{"below band", 30.0},
		{"above band", 2000.0},
	}

	y := NewYin(DefaultConfig())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame := sineFrame(tc.freq, 44100, 4096, 0.5)
			if got, ok := y.Estimate(frame); ok {
				t.Errorf("Estimate(%.0f Hz sine) = %.3f Hz, want rejection", tc.freq, got)
			}
		})
	}
}

func TestYin_EstimateShortFrame(t *testing.T) {
	t.Parallel()

	y := NewYin(DefaultConfig())
	if _, ok := y.Estimate(audio.Frame{Samples: []float32{0.1, 0.2}, SampleRate: 44100}); ok {
		t.Error("Estimate(2-sample frame): detection, want no pitch")
	}
}

func TestYin_CustomNoiseFloor(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.NoiseFloor = 0.5
	y := NewYin(cfg)

	// A sine at amplitude 0.2 (RMS ~0.14) is audible but below the
	// raised floor.
	if got, ok := y.Estimate(sineFrame(440, 44100, 4096, 0.2)); ok {
		t.Errorf("Estimate with raised floor = %.3f Hz, want no pitch", got)
	}
}

func TestEstimateFrequency(t *testing.T) {
	t.Parallel()

	frame := sineFrame(220, 44100, 4096, 0.5)
	got, ok := EstimateFrequency(frame.Samples, frame.SampleRate)
	if !ok {
		t.Fatal("EstimateFrequency(220 Hz sine): no pitch, want a detection")
	}
	if math.Abs(got-220) > 2.2 {
		t.Errorf("EstimateFrequency(220 Hz sine) = %.3f Hz, want within 1%%", got)
	}
}
