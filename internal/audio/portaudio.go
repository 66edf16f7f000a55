package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioCapturer implements frame capture from the default input
// device using PortAudio. The stream callback overwrites a mutex-guarded
// latest-frame slot; Frame returns a copy of it.
type PortAudioCapturer struct {
	capturing     bool
	stream        *portaudio.Stream
	latest        Frame
	frameSize     int
	sampleRate    int
	channels      int
	mu            sync.Mutex
	amplification float32 // software gain applied to every sample
}

// NewPortAudioCapturer creates a new capturer reading frameSize samples
// per block at the given rate.
func NewPortAudioCapturer(frameSize, sampleRate, channels int) (*PortAudioCapturer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	return &PortAudioCapturer{
		latest: Frame{
			Samples:    make([]float32, 0, frameSize),
			SampleRate: sampleRate,
		},
		frameSize:     frameSize,
		sampleRate:    sampleRate,
		channels:      channels,
		amplification: 1.0,
	}, nil
}

// Start opens the default input stream and begins capture.
func (c *PortAudioCapturer) Start() error {
	if c.capturing {
		return ErrAlreadyCapturing
	}

	var err error
	c.stream, err = portaudio.OpenDefaultStream(
		c.channels, // input channels
		0,          // no output
		float64(c.sampleRate),
		c.frameSize/c.channels, // frames per buffer
		c.processAudio,
	)
	if err != nil {
		return err
	}

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		return err
	}

	c.capturing = true
	return nil
}

// Stop ends capture and releases the device.
func (c *PortAudioCapturer) Stop() error {
	if !c.capturing {
		return ErrNotCapturing
	}

	if err := c.stream.Stop(); err != nil {
		return err
	}
	if err := c.stream.Close(); err != nil {
		return err
	}
	if err := portaudio.Terminate(); err != nil {
		return err
	}

	c.capturing = false
	return nil
}

// processAudio is the PortAudio stream callback. Multi-channel input is
// averaged down to mono; every sample gets the amplification factor.
func (c *PortAudioCapturer) processAudio(in, _ []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channels > 1 {
		mono := make([]float32, len(in)/c.channels)
		for i := 0; i < len(mono); i++ {
			sum := float32(0)
			for ch := 0; ch < c.channels; ch++ {
				sum += in[i*c.channels+ch]
			}
			mono[i] = (sum / float32(c.channels)) * c.amplification
		}
		c.latest.Samples = mono
	} else {
		samples := make([]float32, len(in))
		for i, sample := range in {
			samples[i] = sample * c.amplification
		}
		c.latest.Samples = samples
	}
}

// Frame returns a copy of the most recently captured frame.
func (c *PortAudioCapturer) Frame() (Frame, error) {
	if !c.capturing {
		return Frame{}, ErrNotCapturing
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := Frame{
		Samples:    make([]float32, len(c.latest.Samples)),
		SampleRate: c.latest.SampleRate,
	}
	copy(out.Samples, c.latest.Samples)

	return out, nil
}

// Capturing returns true if currently capturing audio.
func (c *PortAudioCapturer) Capturing() bool {
	return c.capturing
}

// SetAmplification sets the software gain factor.
func (c *PortAudioCapturer) SetAmplification(factor float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if factor < 0.1 {
		factor = 0.1
	}
	c.amplification = factor
}
