// Package unit defines the capability boundary between the effect engine
// and its host audio environment: atomic processing-unit contracts, typed
// accessors for live parameter writes, and the environment interface that
// supplies units and connectivity.
package unit

// Unit is an atomic signal-processing stage with its own state.
//
// Render consumes one block of mixed input and writes one block of output.
// dst and src always have equal length and may alias.
type Unit interface {
	Render(dst, src []float64)
	Reset()
}

// FilterType selects the response of a Filter unit.
type FilterType int

const (
	FilterLowpass FilterType = iota
	FilterHighpass
	FilterPeaking
)

// Gain scales the signal by a linear level.
type Gain interface {
	Unit
	SetLevel(level float64)
	Level() float64
}

// Filter is a single second-order filter section with a selectable response.
type Filter interface {
	Unit
	SetType(t FilterType)
	SetFrequency(hz float64)
	SetQ(q float64)
	SetGainDB(db float64)
}

// Compressor is a feed-forward dynamics compressor with soft knee.
type Compressor interface {
	Unit
	SetThresholdDB(db float64)
	SetRatio(ratio float64)
	SetAttackSeconds(s float64)
	SetReleaseSeconds(s float64)
	SetKneeDB(db float64)
}

// Convolver convolves the signal with an impulse response.
type Convolver interface {
	Unit
	SetImpulse(ir []float64)
	ImpulseLen() int
}

// DelayLine delays the signal by a settable time, optionally modulated by
// an oscillator around the base delay.
type DelayLine interface {
	Unit
	SetDelaySeconds(s float64)
	DelaySeconds() float64
	MaxDelaySeconds() float64
	Modulate(osc Oscillator, depthSeconds float64)
}

// Oscillator is a low-frequency sine source used for modulation.
type Oscillator interface {
	Unit
	SetFrequency(hz float64)
	Frequency() float64
}

// Waveshaper maps each sample through a transfer curve sampled over [-1, 1].
type Waveshaper interface {
	Unit
	SetCurve(curve []float64)
}

// Analyzer taps the signal and exposes snapshot buffers of its recent
// spectrum and waveform. Frequency bytes encode minDecibels..maxDecibels
// as 0..255; time bytes encode -1..1 as 0..255 centered at 128.
type Analyzer interface {
	Unit
	BinCount() int
	FFTSize() int
	FrequencyBytes(dst []byte) int
	TimeBytes(dst []byte) int
	SetSmoothing(timeConstant float64)
}
