package unit

import "github.com/stemstation/audiocore/dsp/window"

// AnalyzerConfig configures an Analyzer unit. FFTSize must be a power of
// two; the decibel range maps spectrum magnitudes onto the byte encoding.
type AnalyzerConfig struct {
	FFTSize     int
	Smoothing   float64 // per-frame exponential smoothing time constant, 0..1
	MinDecibels float64
	MaxDecibels float64
	Window      window.Type
}

// Environment is the host capability consumed by the effect engine: unit
// factories, a connect/disconnect primitive, and the sample rate.
//
// Disconnect detaches a unit from every connection it participates in;
// disconnecting an already-detached unit is a no-op.
type Environment interface {
	SampleRate() float64

	NewGain(level float64) Gain
	NewFilter(t FilterType, freqHz, q, gainDB float64) Filter
	NewCompressor() Compressor
	NewConvolver(ir []float64) Convolver
	NewDelayLine(maxSeconds float64) DelayLine
	NewOscillator(freqHz float64) Oscillator
	NewWaveshaper(curve []float64) Waveshaper
	NewAnalyzer(cfg AnalyzerConfig) (Analyzer, error)

	Connect(src, dst Unit)
	Disconnect(u Unit)
}
