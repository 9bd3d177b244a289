package effectchain

import (
	"github.com/stemstation/audiocore/dsp/core"
	"github.com/stemstation/audiocore/dsp/unit"
)

// compressorProcessor builds a dynamics compressor followed by a makeup
// gain stage. Attack and release parameters are in milliseconds.
type compressorProcessor struct {
	env unit.Environment
}

// NewCompressorProcessor creates the compressor processor factory target.
func NewCompressorProcessor(env unit.Environment) Processor {
	return &compressorProcessor{env: env}
}

func (p *compressorProcessor) Build(def *Definition) ([]unit.Unit, error) {
	comp := p.env.NewCompressor()
	comp.SetThresholdDB(def.Value("threshold", -24))
	comp.SetRatio(def.Value("ratio", 4))
	comp.SetAttackSeconds(def.Value("attack", 10) / 1000)
	comp.SetReleaseSeconds(def.Value("release", 250) / 1000)
	comp.SetKneeDB(def.Value("knee", 30))

	makeup := p.env.NewGain(core.DBToLinear(def.Value("makeup", 0)))

	p.env.Connect(comp, makeup)

	return []unit.Unit{comp, makeup}, nil
}

func (p *compressorProcessor) UpdateParameter(_ *Definition, units []unit.Unit, paramID string, value float64) {
	if len(units) != 2 {
		return
	}

	comp, compOK := units[0].(unit.Compressor)
	makeup, gainOK := units[1].(unit.Gain)

	switch paramID {
	case "threshold":
		if compOK {
			comp.SetThresholdDB(value)
		}
	case "ratio":
		if compOK {
			comp.SetRatio(value)
		}
	case "attack":
		if compOK {
			comp.SetAttackSeconds(value / 1000)
		}
	case "release":
		if compOK {
			comp.SetReleaseSeconds(value / 1000)
		}
	case "knee":
		if compOK {
			comp.SetKneeDB(value)
		}
	case "makeup":
		if gainOK {
			makeup.SetLevel(core.DBToLinear(value))
		}
	}
}
