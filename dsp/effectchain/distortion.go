package effectchain

import (
	"math"

	"github.com/stemstation/audiocore/dsp/core"
	"github.com/stemstation/audiocore/dsp/unit"
)

// distortionCurveLen samples the transfer curve finely enough that lookup
// interpolation error stays below audibility.
const distortionCurveLen = 44100

// Distortion curve shapes selected by the type parameter.
const (
	DistortionSoftClip = iota
	DistortionHardClip
	DistortionTube
	DistortionFuzz
)

// distortionProcessor builds drive gain, waveshaper, tone lowpass, and
// output gain in series.
type distortionProcessor struct {
	env unit.Environment
}

// NewDistortionProcessor creates the distortion processor factory target.
func NewDistortionProcessor(env unit.Environment) Processor {
	return &distortionProcessor{env: env}
}

const (
	distDrive = iota
	distShaper
	distTone
	distOut
)

func (p *distortionProcessor) Build(def *Definition) ([]unit.Unit, error) {
	drive := p.env.NewGain(core.DBToLinear(def.Value("drive", 10)))
	shaper := p.env.NewWaveshaper(DistortionCurve(int(def.Value("type", 0))))
	tone := p.env.NewFilter(unit.FilterLowpass, toneCutoff(def.Value("tone", 0.5)), 0.707, 0)
	out := p.env.NewGain(def.Value("level", 0.8))

	p.env.Connect(drive, shaper)
	p.env.Connect(shaper, tone)
	p.env.Connect(tone, out)

	return []unit.Unit{drive, shaper, tone, out}, nil
}

func (p *distortionProcessor) UpdateParameter(_ *Definition, units []unit.Unit, paramID string, value float64) {
	if len(units) != 4 {
		return
	}

	switch paramID {
	case "drive":
		if g, ok := units[distDrive].(unit.Gain); ok {
			g.SetLevel(core.DBToLinear(value))
		}
	case "type":
		if w, ok := units[distShaper].(unit.Waveshaper); ok {
			w.SetCurve(DistortionCurve(int(value)))
		}
	case "tone":
		if f, ok := units[distTone].(unit.Filter); ok {
			f.SetFrequency(toneCutoff(value))
		}
	case "level":
		if g, ok := units[distOut].(unit.Gain); ok {
			g.SetLevel(value)
		}
	}
}

// toneCutoff maps the 0..1 tone parameter onto 1000..10000 Hz.
func toneCutoff(tone float64) float64 {
	return 1000 + core.Clamp(tone, 0, 1)*9000
}

// DistortionCurve samples the transfer function for the given curve type
// over x in [-1, 1]. Unknown types fall back to soft clip.
func DistortionCurve(curveType int) []float64 {
	curve := make([]float64, distortionCurveLen)

	for i := range curve {
		x := float64(i)/float64(distortionCurveLen-1)*2 - 1

		switch curveType {
		case DistortionHardClip:
			curve[i] = core.Clamp(5*x, -0.8, 0.8)
		case DistortionTube:
			curve[i] = x * (1 - 0.5*math.Abs(x))
		case DistortionFuzz:
			if x > 0 {
				curve[i] = 1
			} else {
				curve[i] = -1
			}
		default:
			curve[i] = math.Tanh(2 * x)
		}
	}

	return curve
}
