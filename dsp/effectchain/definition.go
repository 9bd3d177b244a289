// Package effectchain implements a dynamically reconfigurable effects
// chain: an effect catalog with presets, per-type processors that
// materialize sub-graphs of processing units, and a chain builder that
// wires enabled effects in series between a shared input and output.
package effectchain

import (
	"math"

	"github.com/stemstation/audiocore/dsp/param"
)

// Category groups effects for browsing.
type Category string

const (
	CategoryDynamics   Category = "dynamics"
	CategoryEQ         Category = "eq"
	CategorySpatial    Category = "spatial"
	CategoryModulation Category = "modulation"
	CategoryDistortion Category = "distortion"
	CategoryFilter     Category = "filter"
	CategoryUtility    Category = "utility"
)

// Definition describes one effect: identity, parameters, presets, and
// routing levels. Definitions are owned by the Catalog and mutated only
// through Chain operations.
type Definition struct {
	ID       string
	Name     string
	Type     string
	Category Category

	Enabled  bool
	Bypassed bool

	Parameters []*param.Parameter
	Presets    []param.Preset

	WetDryMix  float64
	InputGain  float64
	OutputGain float64

	// Static per-instance cost estimates surfaced by PerformanceMetrics.
	CPUUsage float64 // percent of one core, rough estimate
	Latency  float64 // seconds
}

// Parameter returns the parameter with the given id, or nil.
func (d *Definition) Parameter(id string) *param.Parameter {
	for _, p := range d.Parameters {
		if p.ID == id {
			return p
		}
	}

	return nil
}

// Preset returns the preset with the given id.
func (d *Definition) Preset(id string) (param.Preset, bool) {
	for _, pr := range d.Presets {
		if pr.ID == id {
			return pr, true
		}
	}

	return param.Preset{}, false
}

// Value extracts a parameter value, returning def if the parameter is
// missing or non-finite.
func (d *Definition) Value(id string, def float64) float64 {
	p := d.Parameter(id)
	if p == nil || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return def
	}

	return p.Value
}

// Catalog is a registry of effect definitions in stable registration
// order.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]*Definition)}
}

// Register adds or replaces the definition with the same id. The original
// registration position is kept on overwrite.
func (c *Catalog) Register(def *Definition) {
	if def == nil || def.ID == "" {
		return
	}

	if _, exists := c.defs[def.ID]; !exists {
		c.order = append(c.order, def.ID)
	}

	c.defs[def.ID] = def
}

// Get returns the definition with the given id, or nil.
func (c *Catalog) Get(id string) *Definition {
	return c.defs[id]
}

// All returns every definition in registration order.
func (c *Catalog) All() []*Definition {
	out := make([]*Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}

	return out
}

// ByCategory returns the definitions in the given category, in
// registration order.
func (c *Catalog) ByCategory(cat Category) []*Definition {
	var out []*Definition

	for _, id := range c.order {
		if def := c.defs[id]; def.Category == cat {
			out = append(out, def)
		}
	}

	return out
}
