package effectchain

import (
	"math"
	"math/rand"

	"github.com/stemstation/audiocore/dsp/core"
	"github.com/stemstation/audiocore/dsp/unit"
)

// irSeed fixes the impulse-response noise so regenerated tails are
// reproducible for identical parameters.
const irSeed = 0x5eed

// reverbProcessor builds a convolution reverb: the input splits into a
// dry gain and a convolver feeding a wet gain, summed at an output gain.
// roomSize and damping changes regenerate the impulse response; wet and
// dry level changes are cheap gain writes.
type reverbProcessor struct {
	env unit.Environment
}

// NewReverbProcessor creates the reverb processor factory target.
func NewReverbProcessor(env unit.Environment) Processor {
	return &reverbProcessor{env: env}
}

const (
	reverbIn = iota
	reverbConv
	reverbWet
	reverbDry
	reverbOut
)

func (p *reverbProcessor) Build(def *Definition) ([]unit.Unit, error) {
	in := p.env.NewGain(1)
	conv := p.env.NewConvolver(p.impulse(def))
	wet := p.env.NewGain(def.Value("wetLevel", 0.3))
	dry := p.env.NewGain(def.Value("dryLevel", 0.7))
	out := p.env.NewGain(1)

	p.env.Connect(in, conv)
	p.env.Connect(conv, wet)
	p.env.Connect(wet, out)

	p.env.Connect(in, dry)
	p.env.Connect(dry, out)

	return []unit.Unit{in, conv, wet, dry, out}, nil
}

func (p *reverbProcessor) UpdateParameter(def *Definition, units []unit.Unit, paramID string, value float64) {
	if len(units) != 5 {
		return
	}

	switch paramID {
	case "roomSize", "damping":
		if conv, ok := units[reverbConv].(unit.Convolver); ok {
			conv.SetImpulse(p.impulse(def))
		}
	case "wetLevel":
		if g, ok := units[reverbWet].(unit.Gain); ok {
			g.SetLevel(value)
		}
	case "dryLevel":
		if g, ok := units[reverbDry].(unit.Gain); ok {
			g.SetLevel(value)
		}
	}
}

// impulse synthesizes length = sampleRate*(0.1 + roomSize*2.0) samples of
// noise decaying as (1-damping)^(i/sampleRate).
func (p *reverbProcessor) impulse(def *Definition) []float64 {
	sr := p.env.SampleRate()

	roomSize := core.Clamp(def.Value("roomSize", 0.5), 0, 1)
	damping := core.Clamp(def.Value("damping", 0.5), 0, 1)

	length := int(sr * (0.1 + roomSize*2.0))
	ir := make([]float64, length)

	base := 1 - damping
	rng := rand.New(rand.NewSource(irSeed))

	for i := range ir {
		decay := math.Pow(base, float64(i)/sr)
		ir[i] = (rng.Float64()*2 - 1) * decay
	}

	return ir
}
