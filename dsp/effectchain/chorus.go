package effectchain

import (
	"github.com/stemstation/audiocore/dsp/core"
	"github.com/stemstation/audiocore/dsp/unit"
)

// chorusMaxDelaySeconds covers the largest base offset plus modulation
// depth across four voices.
const chorusMaxDelaySeconds = 0.1

// chorusDepthScale maps the 0..1 depth parameter to modulation depth in
// seconds (2 ms at full depth).
const chorusDepthScale = 0.002

// chorusProcessor builds 1 to 4 parallel delay+LFO voices. Each voice's
// LFO rate is scaled slightly per index so the voices never phase-lock,
// and all voices sum at equal weight into the wet path.
type chorusProcessor struct {
	env unit.Environment
}

// NewChorusProcessor creates the chorus processor factory target.
func NewChorusProcessor(env unit.Environment) Processor {
	return &chorusProcessor{env: env}
}

// Per-voice stride in the unit list: delay line, voice gain, oscillator.
const chorusVoiceUnits = 3

func chorusVoiceCount(def *Definition) int {
	voices := int(def.Value("voices", 3))
	if voices < 1 {
		voices = 1
	}

	if voices > 4 {
		voices = 4
	}

	return voices
}

func (p *chorusProcessor) Build(def *Definition) ([]unit.Unit, error) {
	voices := chorusVoiceCount(def)

	rate := def.Value("rate", 1.5)
	depth := core.Clamp(def.Value("depth", 0.5), 0, 1)
	baseDelay := def.Value("delayMs", 20) / 1000
	wetLevel := core.Clamp(def.Value("wetLevel", 0.5), 0, 1)

	in := p.env.NewGain(1)
	wet := p.env.NewGain(wetLevel)
	dry := p.env.NewGain(1 - wetLevel)
	out := p.env.NewGain(1)

	units := make([]unit.Unit, 0, 4+voices*chorusVoiceUnits)
	units = append(units, in)

	weight := 1 / float64(voices)

	for v := 0; v < voices; v++ {
		dl := p.env.NewDelayLine(chorusMaxDelaySeconds)
		dl.SetDelaySeconds(baseDelay + float64(v)*0.005)

		osc := p.env.NewOscillator(rate * (1 + 0.1*float64(v)))
		dl.Modulate(osc, depth*chorusDepthScale)

		voiceGain := p.env.NewGain(weight)

		p.env.Connect(in, dl)
		p.env.Connect(dl, voiceGain)
		p.env.Connect(voiceGain, wet)

		units = append(units, dl, voiceGain, osc)
	}

	p.env.Connect(wet, out)
	p.env.Connect(in, dry)
	p.env.Connect(dry, out)

	units = append(units, wet, dry, out)

	return units, nil
}

// UpdateParameter applies live changes per voice. The voices count is
// structural and takes effect on the next rebuild.
func (p *chorusProcessor) UpdateParameter(_ *Definition, units []unit.Unit, paramID string, value float64) {
	voices := (len(units) - 4) / chorusVoiceUnits
	if voices < 1 || len(units) != 4+voices*chorusVoiceUnits {
		return
	}

	voice := func(v int) (unit.DelayLine, unit.Oscillator, bool) {
		dl, dlOK := units[1+v*chorusVoiceUnits].(unit.DelayLine)
		osc, oscOK := units[3+v*chorusVoiceUnits].(unit.Oscillator)

		return dl, osc, dlOK && oscOK
	}

	switch paramID {
	case "rate":
		for v := 0; v < voices; v++ {
			if _, osc, ok := voice(v); ok {
				osc.SetFrequency(value * (1 + 0.1*float64(v)))
			}
		}
	case "depth":
		depth := core.Clamp(value, 0, 1)

		for v := 0; v < voices; v++ {
			if dl, osc, ok := voice(v); ok {
				dl.Modulate(osc, depth*chorusDepthScale)
			}
		}
	case "delayMs":
		for v := 0; v < voices; v++ {
			if dl, _, ok := voice(v); ok {
				dl.SetDelaySeconds(value/1000 + float64(v)*0.005)
			}
		}
	case "wetLevel":
		level := core.Clamp(value, 0, 1)

		if g, ok := units[len(units)-3].(unit.Gain); ok {
			g.SetLevel(level)
		}

		if g, ok := units[len(units)-2].(unit.Gain); ok {
			g.SetLevel(1 - level)
		}
	}
}
