package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dmateos/needletune/internal/tuner"
)

// Gauge geometry: the needle sweeps -50..+50 cents over gaugeHalf cells
// on each side of the center mark.
const (
	gaugeHalf  = 20
	gaugeWidth = gaugeHalf*2 + 1
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	inTuneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	nearStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	offTuneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))

	// Note colors
	noteColors = map[string]string{
		"C": "#E8D6B0", // Beige
		"D": "#A020F0", // Purple
		"E": "#FFFF00", // Yellow
		"F": "#FFA500", // Orange
		"G": "#00FF00", // Green
		"A": "#FF0000", // Red
		"B": "#0000FF", // Blue
	}
)

// Returns a style for a note (including sharps which get split color)
func getNoteStyle(noteName string) lipgloss.Style {
	if strings.HasSuffix(noteName, "#") {
		// For sharp notes, we handle the rendering separately in View()
		// Just return a basic style
		return lipgloss.NewStyle().Bold(true).MarginBottom(1)
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(noteColors[noteName])).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(2, 4).
		MarginBottom(1)
}

// Get the next note in the scale (for sharp note colors)
func getNextNote(note string) string {
	switch note {
	case "C":
		return "D"
	case "D":
		return "E"
	case "E":
		return "F"
	case "F":
		return "G"
	case "G":
		return "A"
	case "A":
		return "B"
	case "B":
		return "C"
	default:
		return "C"
	}
}

// ReadingMsg publishes a fresh tuning reading to the UI.
type ReadingMsg tuner.Reading

// ClearMsg clears the displayed note (silence or lost pitch).
type ClearMsg struct{}

// LevelMsg updates the input level line.
type LevelMsg struct {
	RMS float64
	DB  float64
}

// Model represents the UI state
type Model struct {
	reading  *tuner.Reading
	rms      float64
	db       float64
	hasLevel bool
	width    int
	height   int
}

// NewModel creates a new UI model
func NewModel() Model {
	return Model{}
}

// Init initializes the UI model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates the UI model based on messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ReadingMsg:
		reading := tuner.Reading(msg)
		m.reading = &reading

	case ClearMsg:
		m.reading = nil

	case LevelMsg:
		m.rms = msg.RMS
		m.db = msg.DB
		m.hasLevel = true
	}

	return m, nil
}

// renderGauge draws the cents needle over a -50..+50 scale.
func renderGauge(cents float64) string {
	offset := int(math.Round(cents / 50 * gaugeHalf))
	if offset < -gaugeHalf {
		offset = -gaugeHalf
	}
	if offset > gaugeHalf {
		offset = gaugeHalf
	}

	cells := make([]rune, gaugeWidth)
	for i := range cells {
		cells[i] = '─'
	}
	cells[gaugeHalf] = '┼'
	cells[gaugeHalf+offset] = '●'

	style := offTuneStyle
	abs := math.Abs(cents)
	switch {
	case abs <= 5:
		style = inTuneStyle
	case abs <= 15:
		style = nearStyle
	}

	return fmt.Sprintf("♭ %s ♯", style.Render(string(cells)))
}

// View renders the UI
func (m Model) View() string {
	s := titleStyle.Render("NeedleTune - Instrument Tuner")
	s += "\n"

	if m.reading != nil {
		note := m.reading.Note
		noteText := note.String()

		// For sharps, render the note with split colors
		if strings.HasSuffix(note.Name, "#") {
			baseNote := string(note.Name[0])
			nextNote := getNextNote(baseNote)

			baseColor := noteColors[baseNote]
			nextColor := noteColors[nextNote]

			leftStyle := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color(baseColor)).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#333333")).
				BorderLeft(true).
				BorderTop(true).
				BorderBottom(true).
				BorderRight(false).
				PaddingLeft(2).
				PaddingRight(1).
				PaddingTop(2).
				PaddingBottom(2)

			rightStyle := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color(nextColor)).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#333333")).
				BorderLeft(false).
				BorderTop(true).
				BorderBottom(true).
				BorderRight(true).
				PaddingLeft(1).
				PaddingRight(2).
				PaddingTop(2).
				PaddingBottom(2)

			baseNoteChar := string(noteText[0])
			sharpChar := "#"
			octave := noteText[2:]

			s += leftStyle.Render(baseNoteChar) + rightStyle.Render(sharpChar+octave)
		} else {
			s += getNoteStyle(note.Name).Render(noteText)
		}

		s += "\n"
		s += renderGauge(m.reading.Cents)
		s += "\n"

		info := fmt.Sprintf("Frequency: %.2f Hz | Cents: %+.1f",
			m.reading.Frequency,
			m.reading.Cents)
		s += infoStyle.Render(info)
	} else {
		s += infoStyle.Render("Listening for audio...")
	}

	if m.hasLevel {
		s += "\n"
		s += infoStyle.Render(fmt.Sprintf("Level: %.3f RMS (%.1f dB)", m.rms, m.db))
	}

	s += "\n\n"
	s += infoStyle.Render("Press q to quit")

	return s
}
