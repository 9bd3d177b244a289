package effectchain

import "github.com/stemstation/audiocore/dsp/unit"

// equalizerProcessor builds three peaking filter sections in series
// (low, mid, high bands).
type equalizerProcessor struct {
	env unit.Environment
}

// NewEqualizerProcessor creates the equalizer processor factory target.
func NewEqualizerProcessor(env unit.Environment) Processor {
	return &equalizerProcessor{env: env}
}

const (
	eqLow = iota
	eqMid
	eqHigh
)

func (p *equalizerProcessor) Build(def *Definition) ([]unit.Unit, error) {
	low := p.env.NewFilter(unit.FilterPeaking,
		def.Value("lowFreq", 100), def.Value("lowQ", 1), def.Value("lowGain", 0))
	mid := p.env.NewFilter(unit.FilterPeaking,
		def.Value("midFreq", 1000), def.Value("midQ", 1), def.Value("midGain", 0))
	high := p.env.NewFilter(unit.FilterPeaking,
		def.Value("highFreq", 10000), def.Value("highQ", 1), def.Value("highGain", 0))

	p.env.Connect(low, mid)
	p.env.Connect(mid, high)

	return []unit.Unit{low, mid, high}, nil
}

func (p *equalizerProcessor) UpdateParameter(_ *Definition, units []unit.Unit, paramID string, value float64) {
	if len(units) != 3 {
		return
	}

	band := func(i int) (unit.Filter, bool) {
		f, ok := units[i].(unit.Filter)

		return f, ok
	}

	var (
		f  unit.Filter
		ok bool
	)

	switch paramID {
	case "lowGain", "lowFreq", "lowQ":
		f, ok = band(eqLow)
	case "midGain", "midFreq", "midQ":
		f, ok = band(eqMid)
	case "highGain", "highFreq", "highQ":
		f, ok = band(eqHigh)
	default:
		return
	}

	if !ok {
		return
	}

	switch paramID {
	case "lowGain", "midGain", "highGain":
		f.SetGainDB(value)
	case "lowFreq", "midFreq", "highFreq":
		f.SetFrequency(value)
	case "lowQ", "midQ", "highQ":
		f.SetQ(value)
	}
}
