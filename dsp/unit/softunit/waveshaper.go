package softunit

import (
	"github.com/stemstation/audiocore/dsp/core"
	"github.com/stemstation/audiocore/dsp/unit"
)

// waveshaperUnit maps each sample through a transfer curve sampled
// uniformly over [-1, 1], with linear interpolation between curve points.
type waveshaperUnit struct {
	curve []float64
}

// NewWaveshaper creates a waveshaper with the given transfer curve.
// A nil or single-point curve passes the signal through unchanged.
func (e *Environment) NewWaveshaper(curve []float64) unit.Waveshaper {
	w := &waveshaperUnit{}
	w.SetCurve(curve)
	e.register(w)

	return w
}

func (w *waveshaperUnit) SetCurve(curve []float64) {
	if len(curve) < 2 {
		w.curve = nil

		return
	}

	w.curve = append([]float64(nil), curve...)
}

func (w *waveshaperUnit) Render(dst, src []float64) {
	if w.curve == nil {
		copy(dst, src)

		return
	}

	last := float64(len(w.curve) - 1)

	for i, x := range src {
		pos := (core.Clamp(x, -1, 1) + 1) / 2 * last

		idx := int(pos)
		if idx >= len(w.curve)-1 {
			dst[i] = w.curve[len(w.curve)-1]

			continue
		}

		dst[i] = core.Lerp(w.curve[idx], w.curve[idx+1], pos-float64(idx))
	}
}

func (w *waveshaperUnit) Reset() {}
