package softunit

import "github.com/stemstation/audiocore/dsp/unit"

type gainUnit struct {
	level float64
}

// NewGain creates a gain unit with the given linear level.
func (e *Environment) NewGain(level float64) unit.Gain {
	g := &gainUnit{level: level}
	e.register(g)

	return g
}

func (g *gainUnit) SetLevel(level float64) { g.level = level }

func (g *gainUnit) Level() float64 { return g.level }

func (g *gainUnit) Render(dst, src []float64) {
	for i := range src {
		dst[i] = src[i] * g.level
	}
}

func (g *gainUnit) Reset() {}
