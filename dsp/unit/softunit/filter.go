package softunit

import (
	"math"

	"github.com/stemstation/audiocore/dsp/core"
	"github.com/stemstation/audiocore/dsp/unit"
)

// filterUnit is a single biquad section (transposed direct form II) with
// RBJ cookbook coefficients for the supported responses.
type filterUnit struct {
	sampleRate float64

	kind   unit.FilterType
	freqHz float64
	q      float64
	gainDB float64

	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

// NewFilter creates a biquad filter section. Frequency is clamped below
// Nyquist; Q is clamped to a small positive minimum.
func (e *Environment) NewFilter(t unit.FilterType, freqHz, q, gainDB float64) unit.Filter {
	f := &filterUnit{
		sampleRate: e.sampleRate,
		kind:       t,
		freqHz:     freqHz,
		q:          q,
		gainDB:     gainDB,
	}
	f.updateCoefficients()
	e.register(f)

	return f
}

func (f *filterUnit) SetType(t unit.FilterType) {
	f.kind = t
	f.updateCoefficients()
}

func (f *filterUnit) SetFrequency(hz float64) {
	f.freqHz = hz
	f.updateCoefficients()
}

func (f *filterUnit) SetQ(q float64) {
	f.q = q
	f.updateCoefficients()
}

func (f *filterUnit) SetGainDB(db float64) {
	f.gainDB = db
	f.updateCoefficients()
}

func (f *filterUnit) updateCoefficients() {
	freq := core.Clamp(f.freqHz, 1, f.sampleRate*0.499)
	q := math.Max(f.q, 1e-3)

	omega := 2 * math.Pi * freq / f.sampleRate
	sin, cos := math.Sincos(omega)
	alpha := sin / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64

	switch f.kind {
	case unit.FilterHighpass:
		b0 = (1 + cos) / 2
		b1 = -(1 + cos)
		b2 = (1 + cos) / 2
		a0 = 1 + alpha
		a1 = -2 * cos
		a2 = 1 - alpha
	case unit.FilterPeaking:
		a := math.Pow(10, f.gainDB/40)
		b0 = 1 + alpha*a
		b1 = -2 * cos
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cos
		a2 = 1 - alpha/a
	default: // lowpass
		b0 = (1 - cos) / 2
		b1 = 1 - cos
		b2 = (1 - cos) / 2
		a0 = 1 + alpha
		a1 = -2 * cos
		a2 = 1 - alpha
	}

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

func (f *filterUnit) Render(dst, src []float64) {
	for i, x := range src {
		y := f.b0*x + f.z1
		f.z1 = f.b1*x - f.a1*y + f.z2
		f.z2 = f.b2*x - f.a2*y
		dst[i] = y
	}
}

func (f *filterUnit) Reset() {
	f.z1 = 0
	f.z2 = 0
}
