package softunit

import (
	"math"

	"github.com/stemstation/audiocore/dsp/unit"
)

// compressorUnit is a feed-forward compressor with a soft-knee gain
// computer in the decibel domain and a one-pole envelope follower.
type compressorUnit struct {
	sampleRate float64

	thresholdDB float64
	ratio       float64
	attackSec   float64
	releaseSec  float64
	kneeDB      float64

	attackCoeff  float64
	releaseCoeff float64
	envelope     float64
}

// NewCompressor creates a compressor with neutral defaults (threshold
// -24 dB, ratio 4:1, attack 3 ms, release 250 ms, knee 6 dB).
func (e *Environment) NewCompressor() unit.Compressor {
	c := &compressorUnit{
		sampleRate:  e.sampleRate,
		thresholdDB: -24,
		ratio:       4,
		attackSec:   0.003,
		releaseSec:  0.25,
		kneeDB:      6,
	}
	c.updateCoefficients()
	e.register(c)

	return c
}

func (c *compressorUnit) SetThresholdDB(db float64) { c.thresholdDB = db }

func (c *compressorUnit) SetRatio(ratio float64) {
	if ratio >= 1 {
		c.ratio = ratio
	}
}

func (c *compressorUnit) SetAttackSeconds(s float64) {
	if s >= 0 {
		c.attackSec = s
		c.updateCoefficients()
	}
}

func (c *compressorUnit) SetReleaseSeconds(s float64) {
	if s >= 0 {
		c.releaseSec = s
		c.updateCoefficients()
	}
}

func (c *compressorUnit) SetKneeDB(db float64) {
	if db >= 0 {
		c.kneeDB = db
	}
}

func (c *compressorUnit) updateCoefficients() {
	c.attackCoeff = envelopeCoeff(c.attackSec, c.sampleRate)
	c.releaseCoeff = envelopeCoeff(c.releaseSec, c.sampleRate)
}

// envelopeCoeff maps a time constant to a per-sample smoothing factor.
func envelopeCoeff(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 0
	}

	return math.Exp(-1 / (seconds * sampleRate))
}

// gainReductionDB computes the soft-knee static curve for one input level.
func (c *compressorUnit) gainReductionDB(levelDB float64) float64 {
	over := levelDB - c.thresholdDB

	switch {
	case 2*over <= -c.kneeDB:
		return 0
	case 2*over >= c.kneeDB:
		return over * (1/c.ratio - 1)
	default:
		// Quadratic interpolation inside the knee.
		t := over + c.kneeDB/2

		return (1/c.ratio - 1) * t * t / (2 * c.kneeDB)
	}
}

func (c *compressorUnit) Render(dst, src []float64) {
	for i, x := range src {
		level := math.Abs(x)

		var coeff float64
		if level > c.envelope {
			coeff = c.attackCoeff
		} else {
			coeff = c.releaseCoeff
		}

		c.envelope = coeff*c.envelope + (1-coeff)*level

		levelDB := -120.0
		if c.envelope > 1e-6 {
			levelDB = 20 * math.Log10(c.envelope)
		}

		gain := math.Pow(10, c.gainReductionDB(levelDB)/20)
		dst[i] = x * gain
	}
}

func (c *compressorUnit) Reset() { c.envelope = 0 }
