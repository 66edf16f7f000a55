package pitch

// DefaultWindow is the default stabilizer capacity.
const DefaultWindow = 8

// Stabilizer smooths per-frame cents readings with a fixed-capacity
// rolling mean. Raw readings jitter with sampling noise; averaging the
// last few trades a little latency for a steady needle. Not safe for
// concurrent use; the owning session serializes access.
type Stabilizer struct {
	window   []float64
	capacity int
}

// NewStabilizer creates a stabilizer holding up to capacity cents
// values. Non-positive capacities fall back to DefaultWindow.
func NewStabilizer(capacity int) *Stabilizer {
	if capacity < 1 {
		capacity = DefaultWindow
	}
	return &Stabilizer{
		window:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a cents value, evicting the oldest once the window is
// full, and returns the arithmetic mean of the current contents.
func (s *Stabilizer) Push(cents float64) float64 {
	if len(s.window) == s.capacity {
		copy(s.window, s.window[1:])
		s.window[len(s.window)-1] = cents
	} else {
		s.window = append(s.window, cents)
	}

	sum := 0.0
	for _, c := range s.window {
		sum += c
	}
	return sum / float64(len(s.window))
}

// Len returns the number of values currently held.
func (s *Stabilizer) Len() int {
	return len(s.window)
}

// Reset empties the window. Must be called whenever detection is lost so
// stale history never bleeds into the next note's reading.
func (s *Stabilizer) Reset() {
	s.window = s.window[:0]
}
