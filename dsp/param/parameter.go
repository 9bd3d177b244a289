// Package param provides typed, bounded, unit-tagged effect parameters and
// named presets. Parameters are pure data: writes clamp into range rather
// than failing, so a live signal path is never interrupted by an
// out-of-range control value.
package param

import (
	"fmt"
	"math"

	"github.com/stemstation/audiocore/dsp/core"
)

// Curve selects how a parameter maps between its normalized [0, 1] control
// position and its value range.
type Curve int

const (
	CurveLinear Curve = iota
	CurveLogarithmic
	CurveExponential
)

// String returns the curve name.
func (c Curve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveLogarithmic:
		return "logarithmic"
	case CurveExponential:
		return "exponential"
	default:
		return fmt.Sprintf("curve(%d)", int(c))
	}
}

// Parameter is one bounded numeric control value.
//
// Invariant: Min <= Value <= Max at all times. Set clamps, never rejects.
type Parameter struct {
	ID    string
	Name  string
	Value float64
	Min   float64
	Max   float64
	Step  float64
	Unit  string
	Curve Curve
}

// New returns a parameter with value clamped into [min, max].
func New(id, name string, value, min, max float64) *Parameter {
	p := &Parameter{ID: id, Name: name, Min: min, Max: max}
	p.Set(value)

	return p
}

// WithUnit sets the display unit tag and returns p.
func (p *Parameter) WithUnit(unit string) *Parameter {
	p.Unit = unit
	return p
}

// WithStep sets the control step and returns p.
func (p *Parameter) WithStep(step float64) *Parameter {
	p.Step = step
	return p
}

// WithCurve sets the control curve and returns p.
func (p *Parameter) WithCurve(c Curve) *Parameter {
	p.Curve = c
	return p
}

// Set writes v clamped into [Min, Max]. Non-finite writes are ignored.
func (p *Parameter) Set(v float64) {
	if !core.IsFinite(v) {
		return
	}

	p.Value = core.Clamp(v, p.Min, p.Max)
}

// Normalized returns the value's position in [0, 1] along the curve.
func (p *Parameter) Normalized() float64 {
	if p.Max == p.Min {
		return 0
	}

	switch p.Curve {
	case CurveLogarithmic:
		if p.Min > 0 && p.Max > 0 && p.Value > 0 {
			return math.Log(p.Value/p.Min) / math.Log(p.Max/p.Min)
		}
	case CurveExponential:
		t := (p.Value - p.Min) / (p.Max - p.Min)
		return math.Sqrt(core.Clamp(t, 0, 1))
	case CurveLinear:
	}

	return (p.Value - p.Min) / (p.Max - p.Min)
}

// SetNormalized writes the value for position t in [0, 1] along the curve.
func (p *Parameter) SetNormalized(t float64) {
	t = core.Clamp(t, 0, 1)

	switch p.Curve {
	case CurveLogarithmic:
		if p.Min > 0 && p.Max > 0 {
			p.Set(p.Min * math.Pow(p.Max/p.Min, t))
			return
		}
	case CurveExponential:
		p.Set(core.Lerp(p.Min, p.Max, t*t))
		return
	case CurveLinear:
	}

	p.Set(core.Lerp(p.Min, p.Max, t))
}

// Clone returns a copy of p.
func (p *Parameter) Clone() *Parameter {
	c := *p
	return &c
}
