package softunit

import (
	"math"

	"github.com/stemstation/audiocore/dsp/unit"
)

type oscillatorUnit struct {
	freqHz     float64
	sampleRate float64
	phase      float64
}

// NewOscillator creates a sine oscillator at the given frequency.
func (e *Environment) NewOscillator(freqHz float64) unit.Oscillator {
	o := &oscillatorUnit{freqHz: freqHz, sampleRate: e.sampleRate}
	e.register(o)

	return o
}

func (o *oscillatorUnit) SetFrequency(hz float64) {
	if hz >= 0 {
		o.freqHz = hz
	}
}

func (o *oscillatorUnit) Frequency() float64 { return o.freqHz }

// nextSample advances the phase accumulator by one sample.
func (o *oscillatorUnit) nextSample() float64 {
	v := math.Sin(2 * math.Pi * o.phase)

	o.phase += o.freqHz / o.sampleRate
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}

	return v
}

// Render emits the oscillator signal, ignoring its input.
func (o *oscillatorUnit) Render(dst, _ []float64) {
	for i := range dst {
		dst[i] = o.nextSample()
	}
}

func (o *oscillatorUnit) Reset() { o.phase = 0 }
