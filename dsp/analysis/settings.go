// Package analysis implements the real-time spectral analysis engine: a
// periodic sampler that pulls frequency and time-domain buffers from an
// analyzer tap and derives a metrics snapshot per tick, with peak-hold
// and spectrogram history buffers.
package analysis

import (
	"fmt"
	"time"

	"github.com/stemstation/audiocore/dsp/window"
)

// Settings configures the analysis engine. Changing FFTSize, the decibel
// range, or the window recreates the underlying analyzer unit and every
// size-dependent buffer.
type Settings struct {
	FFTSize               int
	SmoothingTimeConstant float64 // analyzer per-bin smoothing, 0..1
	MinDecibels           float64
	MaxDecibels           float64
	UpdateRate            float64 // analysis passes per second
	LogScale              bool    // display hint for consumers, not used in math
	PeakHold              bool
	ShowHarmonics         bool
	ShowSpectrogram       bool
	Averaging             float64 // extra exponential averaging of scalar metrics, 0..1
	Window                window.Type
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{
		FFTSize:               2048,
		SmoothingTimeConstant: 0.8,
		MinDecibels:           -100,
		MaxDecibels:           -30,
		UpdateRate:            30,
		LogScale:              true,
		PeakHold:              true,
		ShowHarmonics:         true,
		ShowSpectrogram:       true,
		Averaging:             0,
		Window:                window.TypeHann,
	}
}

func (s Settings) validate() error {
	if s.FFTSize < 32 || s.FFTSize > 32768 || s.FFTSize&(s.FFTSize-1) != 0 {
		return fmt.Errorf("analysis: fft size must be a power of two in [32, 32768]: %d", s.FFTSize)
	}

	if s.MaxDecibels <= s.MinDecibels {
		return fmt.Errorf("analysis: decibel range is empty: [%f, %f]", s.MinDecibels, s.MaxDecibels)
	}

	if s.UpdateRate <= 0 {
		return fmt.Errorf("analysis: update rate must be > 0: %f", s.UpdateRate)
	}

	if s.SmoothingTimeConstant < 0 || s.SmoothingTimeConstant > 1 {
		return fmt.Errorf("analysis: smoothing time constant out of [0, 1]: %f", s.SmoothingTimeConstant)
	}

	if s.Averaging < 0 || s.Averaging >= 1 {
		return fmt.Errorf("analysis: averaging out of [0, 1): %f", s.Averaging)
	}

	return nil
}

// tickInterval returns the throttle interval, 1000/updateRate ms, clamped
// to one millisecond so high rates never collapse to a zero ticker period.
func (s Settings) tickInterval() time.Duration {
	interval := time.Duration(1000/s.UpdateRate) * time.Millisecond
	if interval < time.Millisecond {
		interval = time.Millisecond
	}

	return interval
}

// needsRebuild reports whether switching from s to next requires
// recreating the analyzer unit and its size-dependent buffers.
func (s Settings) needsRebuild(next Settings) bool {
	return s.FFTSize != next.FFTSize ||
		s.MinDecibels != next.MinDecibels ||
		s.MaxDecibels != next.MaxDecibels ||
		s.Window != next.Window
}
