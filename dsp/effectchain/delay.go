package effectchain

import "github.com/stemstation/audiocore/dsp/unit"

// maxDelaySeconds bounds the delay-line allocation; the delayTime
// parameter range stays within it.
const maxDelaySeconds = 2

// delayProcessor builds a feedback delay: the delay line feeds a lowpass
// high-cut, a highpass low-cut, and a feedback gain closing the loop back
// into the delay line. The filtered wet path mixes with dry at an output
// gain.
type delayProcessor struct {
	env unit.Environment
}

// NewDelayProcessor creates the delay processor factory target.
func NewDelayProcessor(env unit.Environment) Processor {
	return &delayProcessor{env: env}
}

const (
	delayIn = iota
	delayLine
	delayHighCut
	delayLowCut
	delayFeedback
	delayWet
	delayDry
	delayOut
)

func (p *delayProcessor) Build(def *Definition) ([]unit.Unit, error) {
	in := p.env.NewGain(1)

	dl := p.env.NewDelayLine(maxDelaySeconds)
	dl.SetDelaySeconds(def.Value("delayTime", 250) / 1000)

	highCut := p.env.NewFilter(unit.FilterLowpass, def.Value("highCut", 8000), 0.707, 0)
	lowCut := p.env.NewFilter(unit.FilterHighpass, def.Value("lowCut", 100), 0.707, 0)
	feedback := p.env.NewGain(def.Value("feedback", 0.4))

	mix := def.Value("mix", 0.3)
	wet := p.env.NewGain(mix)
	dry := p.env.NewGain(1 - mix)
	out := p.env.NewGain(1)

	p.env.Connect(in, dl)
	p.env.Connect(dl, highCut)
	p.env.Connect(highCut, lowCut)
	p.env.Connect(lowCut, feedback)
	p.env.Connect(feedback, dl) // feedback loop

	p.env.Connect(lowCut, wet)
	p.env.Connect(wet, out)

	p.env.Connect(in, dry)
	p.env.Connect(dry, out)

	return []unit.Unit{in, dl, highCut, lowCut, feedback, wet, dry, out}, nil
}

func (p *delayProcessor) UpdateParameter(_ *Definition, units []unit.Unit, paramID string, value float64) {
	if len(units) != 8 {
		return
	}

	switch paramID {
	case "delayTime":
		if dl, ok := units[delayLine].(unit.DelayLine); ok {
			dl.SetDelaySeconds(value / 1000)
		}
	case "feedback":
		if g, ok := units[delayFeedback].(unit.Gain); ok {
			g.SetLevel(value)
		}
	case "highCut":
		if f, ok := units[delayHighCut].(unit.Filter); ok {
			f.SetFrequency(value)
		}
	case "lowCut":
		if f, ok := units[delayLowCut].(unit.Filter); ok {
			f.SetFrequency(value)
		}
	case "mix":
		if g, ok := units[delayWet].(unit.Gain); ok {
			g.SetLevel(value)
		}

		if g, ok := units[delayDry].(unit.Gain); ok {
			g.SetLevel(1 - value)
		}
	}
}
