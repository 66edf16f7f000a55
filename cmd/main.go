package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dmateos/needletune/internal/audio"
	"github.com/dmateos/needletune/internal/pitch"
	"github.com/dmateos/needletune/internal/tuner"
	"github.com/dmateos/needletune/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	channels      = 1
	pollInterval  = 50 * time.Millisecond  // how often the pump pulls a frame
	levelInterval = 200 * time.Millisecond // how often the level line updates
)

var (
	sampleRate int
	frameSize  int
	algorithm  string
	threshold  float64
	noiseFloor float64
	minFreq    float64
	maxFreq    float64
	a4         float64
	amplify    float64
	window     int
	debug      bool
)

// logger is the package-wide structured logger. Safe to use before
// initLogger is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault
// so the stdlib log package also routes through the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "needletune",
	Short: "Real-time instrument tuner for the terminal",
	Long: `NeedleTune listens on the default input device, estimates the
fundamental frequency of what it hears, and shows the nearest note with
a cents needle stabilized against jitter.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&sampleRate, "sample-rate", 44100, "capture sample rate in Hz")
	f.IntVar(&frameSize, "frames", 4096, "samples per analysis frame")
	f.StringVar(&algorithm, "algorithm", "yin", "pitch algorithm: yin or fft")
	f.Float64Var(&threshold, "threshold", 0.15, "normalized-difference dip threshold")
	f.Float64Var(&noiseFloor, "noise-floor", 0.01, "minimum RMS level before detection runs")
	f.Float64Var(&minFreq, "min-freq", 60, "lowest detectable frequency in Hz")
	f.Float64Var(&maxFreq, "max-freq", 1500, "highest detectable frequency in Hz")
	f.Float64Var(&a4, "a4", pitch.ConcertA4, "tuning reference for A4 in Hz")
	f.Float64Var(&amplify, "amplify", 8.0, "software input gain")
	f.IntVar(&window, "window", pitch.DefaultWindow, "cents smoothing window size")
	f.BoolVar(&debug, "debug", false, "enable debug logging (adds source location)")
}

func run(cmd *cobra.Command, args []string) error {
	initLogger(debug)

	cfg := pitch.Config{
		NoiseFloor:   noiseFloor,
		Threshold:    threshold,
		MinFrequency: minFreq,
		MaxFrequency: maxFreq,
	}

	var estimator pitch.Estimator
	switch algorithm {
	case "yin":
		estimator = pitch.NewYin(cfg)
	case "fft":
		estimator = pitch.NewSpectral(cfg)
	default:
		return fmt.Errorf("unknown algorithm %q (want yin or fft)", algorithm)
	}

	// The maximum usable lag is half the frame, so the frame must cover
	// two full periods of the lowest detectable frequency.
	minFrameLen := int(2 * float64(sampleRate) / minFreq)
	if frameSize <= minFrameLen {
		return fmt.Errorf("--frames %d too small for --min-freq %.0f Hz (need > %d samples)",
			frameSize, minFreq, minFrameLen)
	}

	capturer, err := audio.NewPortAudioCapturer(frameSize, sampleRate, channels)
	if err != nil {
		return fmt.Errorf("create audio capturer: %w", err)
	}
	capturer.SetAmplification(float32(amplify))

	session := tuner.NewSession(capturer, tuner.Options{
		Estimator: estimator,
		Window:    window,
		A4:        a4,
	})

	logger.Info("starting tuner",
		"sample_rate", sampleRate,
		"frames", frameSize,
		"algorithm", algorithm,
		"a4", a4,
		"window", window,
	)

	if err := session.Start(); err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			logger.Warn("session stop", "err", err)
		}
	}()

	p := tea.NewProgram(ui.NewModel(), tea.WithAltScreen())

	done := make(chan struct{})
	var g errgroup.Group

	// Frame pump: pull the latest frame at a fixed cadence and run it
	// through the session, forwarding the result to the UI.
	g.Go(func() error {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		lastLevel := time.Time{}
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
			}

			frame, err := capturer.Frame()
			if err != nil {
				logger.Debug("frame pull failed", "err", err)
				continue
			}
			// The callback may not have filled a full block yet.
			if frame.Len() < minFrameLen {
				continue
			}

			if time.Since(lastLevel) > levelInterval {
				rms, db := audio.Level(frame)
				p.Send(ui.LevelMsg{RMS: rms, DB: db})
				lastLevel = time.Now()
			}

			session.OnFrame(frame)
			if reading, ok := session.CurrentReading(); ok {
				logger.Debug("reading",
					"note", reading.Note.String(),
					"freq", reading.Frequency,
					"cents", reading.Cents,
				)
				p.Send(ui.ReadingMsg(reading))
			} else {
				p.Send(ui.ClearMsg{})
			}
		}
	})

	g.Go(func() error {
		defer close(done)
		_, err := p.Run()
		return err
	})

	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
