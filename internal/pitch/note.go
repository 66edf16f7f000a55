package pitch

import (
	"fmt"
	"math"
)

// ConcertA4 is the standard tuning reference in Hz.
const ConcertA4 = 440.0

// All note names in chromatic order
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note represents a musical note derived from a frequency.
type Note struct {
	Name      string  // e.g., "A", "A#", "B"
	Octave    int     // scientific pitch notation, e.g. 4 for middle C (C4)
	Frequency float64 // Frequency in Hz
	Cents     float64 // Cents deviation from perfect pitch (-50 to +50)
}

// String returns the note in compact form, e.g. "A#3".
func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// FrequencyToNote converts a frequency to the nearest equal-tempered
// note at concert pitch (A4 = 440 Hz).
func FrequencyToNote(frequency float64) Note {
	return FrequencyToNoteAt(frequency, ConcertA4)
}

// FrequencyToNoteAt converts a frequency to the nearest note against a
// caller-supplied A4 reference. Semitone ties round half away from zero
// (math.Round), so a frequency exactly a quarter-tone sharp belongs to
// the upper semitone and reports -50 cents.
func FrequencyToNoteAt(frequency, a4 float64) Note {
	// Semitones from A4
	semitones := 12 * math.Log2(frequency/a4)

	rounded := math.Round(semitones)

	// Cents deviation is the residual after rounding to the nearest semitone
	cents := 100 * (semitones - rounded)

	// A4 is MIDI note 69; pitch class and octave fall out of the MIDI number
	midi := int(rounded) + 69
	noteIndex := ((midi % 12) + 12) % 12
	octave := midi/12 - 1
	if midi < 0 && midi%12 != 0 {
		octave--
	}

	return Note{
		Name:      noteNames[noteIndex],
		Octave:    octave,
		Frequency: frequency,
		Cents:     cents,
	}
}
