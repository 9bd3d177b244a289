package softunit

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/stemstation/audiocore/dsp/core"
	"github.com/stemstation/audiocore/dsp/unit"
	"github.com/stemstation/audiocore/dsp/window"
)

// analyzerUnit taps the signal into a ring buffer and computes windowed
// FFT snapshots on demand. Magnitudes are smoothed per bin across
// successive FrequencyBytes calls with an exponential time constant.
type analyzerUnit struct {
	fftSize     int
	minDecibels float64
	maxDecibels float64
	smoothing   float64

	plan *algofft.Plan[complex128]
	win  []float64
	gain float64 // 1 / (coherent gain * fftSize/2), amplitude normalization

	ring    []float64
	ringPos int

	frame    []complex128
	spectrum []complex128
	re, im   []float64
	mag      []float64
	smoothed []float64
}

// NewAnalyzer creates an analyzer tap. FFTSize must be a power of two
// between 32 and 32768 and MaxDecibels must exceed MinDecibels.
func (e *Environment) NewAnalyzer(cfg unit.AnalyzerConfig) (unit.Analyzer, error) {
	if cfg.FFTSize < 32 || cfg.FFTSize > 32768 || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return nil, fmt.Errorf("softunit: fft size must be a power of two in [32, 32768]: %d", cfg.FFTSize)
	}

	if cfg.MaxDecibels <= cfg.MinDecibels {
		return nil, fmt.Errorf("softunit: decibel range is empty: [%f, %f]", cfg.MinDecibels, cfg.MaxDecibels)
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("softunit: analyzer FFT plan: %w", err)
	}

	win := window.Generate(cfg.Window, cfg.FFTSize, window.WithPeriodic())

	bins := cfg.FFTSize / 2

	a := &analyzerUnit{
		fftSize:     cfg.FFTSize,
		minDecibels: cfg.MinDecibels,
		maxDecibels: cfg.MaxDecibels,
		plan:        plan,
		win:         win,
		gain:        1 / (window.CoherentGain(win) * float64(cfg.FFTSize) / 2),
		ring:        make([]float64, cfg.FFTSize),
		frame:       make([]complex128, cfg.FFTSize),
		spectrum:    make([]complex128, cfg.FFTSize),
		re:          make([]float64, bins),
		im:          make([]float64, bins),
		mag:         make([]float64, bins),
		smoothed:    make([]float64, bins),
	}
	a.SetSmoothing(cfg.Smoothing)
	e.register(a)

	return a, nil
}

func (a *analyzerUnit) BinCount() int { return a.fftSize / 2 }

func (a *analyzerUnit) FFTSize() int { return a.fftSize }

func (a *analyzerUnit) SetSmoothing(timeConstant float64) {
	a.smoothing = core.Clamp(timeConstant, 0, 1)
}

// Render taps the signal; the analyzer is transparent in the graph.
func (a *analyzerUnit) Render(dst, src []float64) {
	for _, x := range src {
		a.ring[a.ringPos] = x
		a.ringPos = (a.ringPos + 1) % a.fftSize
	}

	copy(dst, src)
}

// FrequencyBytes computes a fresh spectrum snapshot and encodes the bin
// magnitudes into dst, mapping minDecibels..maxDecibels onto 0..255.
// It returns the number of bytes written, at most BinCount.
func (a *analyzerUnit) FrequencyBytes(dst []byte) int {
	a.computeSpectrum()

	n := min(len(dst), len(a.smoothed))
	scale := 255 / (a.maxDecibels - a.minDecibels)

	for i := 0; i < n; i++ {
		db := -999.0
		if a.smoothed[i] > 0 {
			db = 20 * math.Log10(a.smoothed[i])
		}

		dst[i] = byte(core.Clamp((db-a.minDecibels)*scale, 0, 255))
	}

	return n
}

// TimeBytes encodes the most recent fftSize waveform samples into dst,
// mapping -1..1 onto 0..255 centered at 128. It returns the number of
// bytes written, at most FFTSize.
func (a *analyzerUnit) TimeBytes(dst []byte) int {
	n := min(len(dst), a.fftSize)

	pos := a.ringPos - n
	for pos < 0 {
		pos += a.fftSize
	}

	for i := 0; i < n; i++ {
		v := core.Clamp(a.ring[pos], -1, 1)
		dst[i] = byte(128 + v*127)
		pos = (pos + 1) % a.fftSize
	}

	return n
}

func (a *analyzerUnit) computeSpectrum() {
	pos := a.ringPos

	for i := 0; i < a.fftSize; i++ {
		a.frame[i] = complex(a.ring[pos]*a.win[i], 0)
		pos = (pos + 1) % a.fftSize
	}

	if err := a.plan.Forward(a.spectrum, a.frame); err != nil {
		return
	}

	for i := range a.re {
		a.re[i] = real(a.spectrum[i])
		a.im[i] = imag(a.spectrum[i])
	}

	vecmath.Magnitude(a.mag, a.re, a.im)

	for i, m := range a.mag {
		a.smoothed[i] = a.smoothing*a.smoothed[i] + (1-a.smoothing)*m*a.gain
	}
}

func (a *analyzerUnit) Reset() {
	for i := range a.ring {
		a.ring[i] = 0
	}

	a.ringPos = 0

	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}
