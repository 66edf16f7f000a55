package audio

import "errors"

// Errors
var (
	ErrAlreadyCapturing = errors.New("audio capture already started")
	ErrNotCapturing     = errors.New("audio capture not started")
)

// Capturer defines the interface for a frame source. The capturer owns
// the acquisition cadence; consumers pull the most recent frame and
// process it synchronously.
type Capturer interface {
	// Start begins audio capture
	Start() error

	// Stop ends audio capture and releases the device
	Stop() error

	// Frame returns the most recently captured frame
	Frame() (Frame, error)

	// Capturing returns true if currently capturing audio
	Capturing() bool
}

// StaticCapturer is a deterministic in-memory frame source. It replays a
// fixed list of sample blocks in order, repeating the last one once
// exhausted. Used in tests and demos in place of real hardware.
type StaticCapturer struct {
	capturing  bool
	sampleRate int
	blocks     [][]float32
	pos        int
}

// NewStaticCapturer creates a capturer that serves the given blocks at
// the given sample rate.
func NewStaticCapturer(sampleRate int, blocks ...[]float32) *StaticCapturer {
	return &StaticCapturer{
		sampleRate: sampleRate,
		blocks:     blocks,
	}
}

// Start begins serving frames.
func (c *StaticCapturer) Start() error {
	if c.capturing {
		return ErrAlreadyCapturing
	}
	c.capturing = true
	c.pos = 0
	return nil
}

// Stop ends the replay.
func (c *StaticCapturer) Stop() error {
	if !c.capturing {
		return ErrNotCapturing
	}
	c.capturing = false
	return nil
}

// Frame returns the next canned block.
func (c *StaticCapturer) Frame() (Frame, error) {
	if !c.capturing {
		return Frame{}, ErrNotCapturing
	}
	if len(c.blocks) == 0 {
		return Frame{SampleRate: c.sampleRate}, nil
	}
	block := c.blocks[c.pos]
	if c.pos < len(c.blocks)-1 {
		c.pos++
	}
	return Frame{Samples: block, SampleRate: c.sampleRate}, nil
}

// Capturing returns true while the replay is running.
func (c *StaticCapturer) Capturing() bool {
	return c.capturing
}
