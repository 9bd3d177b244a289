package softunit

import (
	"github.com/stemstation/audiocore/dsp/core"
	"github.com/stemstation/audiocore/dsp/unit"
)

// delayLineUnit is a ring-buffer delay with linear-interpolated fractional
// reads. An attached oscillator modulates the read position around the
// base delay.
type delayLineUnit struct {
	sampleRate float64

	buf      []float64
	writePos int

	delaySec float64
	maxSec   float64

	mod      *oscillatorUnit
	depthSec float64
}

// NewDelayLine creates a delay line holding up to maxSeconds of signal.
func (e *Environment) NewDelayLine(maxSeconds float64) unit.DelayLine {
	if maxSeconds <= 0 {
		maxSeconds = 1
	}

	d := &delayLineUnit{
		sampleRate: e.sampleRate,
		buf:        make([]float64, int(maxSeconds*e.sampleRate)+2),
		maxSec:     maxSeconds,
	}
	e.register(d)

	return d
}

func (d *delayLineUnit) SetDelaySeconds(s float64) {
	d.delaySec = core.Clamp(s, 0, d.maxSec)
}

func (d *delayLineUnit) DelaySeconds() float64 { return d.delaySec }

func (d *delayLineUnit) MaxDelaySeconds() float64 { return d.maxSec }

// Modulate attaches osc as the delay-time LFO with the given depth.
// The oscillator is advanced per sample inside Render; it should not also
// be connected into the audio graph. Passing nil removes the modulation.
func (d *delayLineUnit) Modulate(osc unit.Oscillator, depthSeconds float64) {
	if osc == nil {
		d.mod = nil
		d.depthSec = 0

		return
	}

	if soft, ok := osc.(*oscillatorUnit); ok {
		d.mod = soft
		d.depthSec = depthSeconds
	}
}

func (d *delayLineUnit) Render(dst, src []float64) {
	n := len(d.buf)

	for i, x := range src {
		d.buf[d.writePos] = x

		delay := d.delaySec
		if d.mod != nil {
			delay += d.mod.nextSample() * d.depthSec
		}

		delaySamples := core.Clamp(delay*d.sampleRate, 0, float64(n-2))

		readPos := float64(d.writePos) - delaySamples
		for readPos < 0 {
			readPos += float64(n)
		}

		idx := int(readPos)
		frac := readPos - float64(idx)
		next := (idx + 1) % n

		dst[i] = core.Lerp(d.buf[idx], d.buf[next], frac)

		d.writePos = (d.writePos + 1) % n
	}
}

func (d *delayLineUnit) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}

	d.writePos = 0

	if d.mod != nil {
		d.mod.Reset()
	}
}
