package effectchain

import (
	"log/slog"

	"github.com/stemstation/audiocore/dsp/unit"
)

// span addresses one effect's sub-graph inside the live-unit arena.
type span struct {
	start, end int
}

// Chain owns the ordered effect topology and every live processing unit
// it creates. All mutating operations return a boolean success flag; the
// signal path is never interrupted by a bad reference.
//
// A Chain is driven by a single owning controller and is not safe for
// concurrent mutation.
type Chain struct {
	env      unit.Environment
	catalog  *Catalog
	registry *Registry
	log      *slog.Logger

	order []string

	input  unit.Gain
	output unit.Gain
	source unit.Unit

	arena []unit.Unit
	spans map[string]span
	procs map[string]Processor

	rebuilds int
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger used for the unsupported-effect warning path.
func WithLogger(log *slog.Logger) Option {
	return func(c *Chain) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a chain with shared input and output gain units already
// connected (pass-through until effects are enabled).
func New(env unit.Environment, catalog *Catalog, registry *Registry, opts ...Option) *Chain {
	c := &Chain{
		env:      env,
		catalog:  catalog,
		registry: registry,
		log:      slog.Default(),
		spans:    make(map[string]span),
		procs:    make(map[string]Processor),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.input = env.NewGain(1)
	c.output = env.NewGain(1)
	env.Connect(c.input, c.output)

	return c
}

// Input returns the chain's shared input unit.
func (c *Chain) Input() unit.Unit { return c.input }

// Output returns the chain's shared output unit.
func (c *Chain) Output() unit.Unit { return c.output }

// Enable enables the effect and rebuilds. Effects not yet in the chain
// order are appended. Returns false if the id is unknown.
func (c *Chain) Enable(id string) bool {
	def := c.catalog.Get(id)
	if def == nil {
		return false
	}

	def.Enabled = true

	if !c.inOrder(id) {
		c.order = append(c.order, id)
	}

	c.rebuild()

	return true
}

// Disable disables the effect and rebuilds, removing exactly its units
// from the live chain. The effect keeps its position in the chain order.
func (c *Chain) Disable(id string) bool {
	def := c.catalog.Get(id)
	if def == nil {
		return false
	}

	def.Enabled = false
	c.rebuild()

	return true
}

// Bypass sets the bypassed flag and rebuilds. A bypassed effect's
// sub-graph is bridged: signal routes directly past it while the effect
// stays in the chain order.
func (c *Chain) Bypass(id string, bypassed bool) bool {
	def := c.catalog.Get(id)
	if def == nil {
		return false
	}

	def.Bypassed = bypassed
	c.rebuild()

	return true
}

// SetParameter clamps value into the parameter's range, stores it, and
// applies it to the effect's live sub-graph if one exists. Returns false
// if the effect or parameter id is unknown.
func (c *Chain) SetParameter(id, paramID string, value float64) bool {
	def := c.catalog.Get(id)
	if def == nil {
		return false
	}

	p := def.Parameter(paramID)
	if p == nil {
		return false
	}

	p.Set(value)

	sp, live := c.spans[id]
	if !live {
		return true
	}

	proc := c.processor(def.Type)
	if proc == nil {
		return true
	}

	proc.UpdateParameter(def, c.arena[sp.start:sp.end], paramID, p.Value)

	return true
}

// LoadPreset applies every field of the preset through SetParameter.
// Individual fields naming unknown parameters are skipped; the call
// returns false only when the effect or preset id is unknown.
func (c *Chain) LoadPreset(id, presetID string) bool {
	def := c.catalog.Get(id)
	if def == nil {
		return false
	}

	preset, ok := def.Preset(presetID)
	if !ok {
		return false
	}

	for paramID, value := range preset.Values {
		c.SetParameter(id, paramID, value)
	}

	return true
}

// SetChainOrder replaces the chain order and rebuilds. If any id is
// absent from the catalog the whole call is rejected and the prior order
// is preserved.
func (c *Chain) SetChainOrder(ids []string) bool {
	for _, id := range ids {
		if c.catalog.Get(id) == nil {
			return false
		}
	}

	c.order = append(c.order[:0:0], ids...)
	c.rebuild()

	return true
}

// GetChainOrder returns a copy of the chain order.
func (c *Chain) GetChainOrder() []string {
	return append([]string(nil), c.order...)
}

// ConnectSource routes src into the chain input and returns the chain
// output unit for downstream wiring.
func (c *Chain) ConnectSource(src unit.Unit) unit.Unit {
	c.source = src
	c.env.Connect(src, c.input)

	return c.output
}

// Disconnect releases every unit the chain created. The chain is unusable
// afterwards except for catalog reads.
func (c *Chain) Disconnect() {
	c.teardown()

	c.env.Disconnect(c.input)
	c.env.Disconnect(c.output)

	c.source = nil
}

// LiveUnits returns the ids of effects with live sub-graphs and the total
// live unit count, in chain order.
func (c *Chain) LiveUnits() ([]string, int) {
	var ids []string

	for _, id := range c.order {
		if _, ok := c.spans[id]; ok {
			ids = append(ids, id)
		}
	}

	return ids, len(c.arena)
}

func (c *Chain) inOrder(id string) bool {
	for _, existing := range c.order {
		if existing == id {
			return true
		}
	}

	return false
}

// processor returns the cached processor for an effect type, creating it
// on first use. Unknown types yield nil.
func (c *Chain) processor(effectType string) Processor {
	if proc, ok := c.procs[effectType]; ok {
		return proc
	}

	factory := c.registry.Lookup(effectType)
	if factory == nil {
		return nil
	}

	proc := factory(c.env)
	c.procs[effectType] = proc

	return proc
}

// teardown disconnects and discards every live sub-graph. Disconnects are
// idempotent at the environment, so double teardown is harmless.
func (c *Chain) teardown() {
	for _, u := range c.arena {
		c.env.Disconnect(u)
	}

	c.arena = c.arena[:0]
	c.spans = make(map[string]span)

	// Drop the input unit's stale forward edges, then restore the source.
	c.env.Disconnect(c.input)

	if c.source != nil {
		c.env.Connect(c.source, c.input)
	}
}

// rebuild tears down all live sub-graphs and re-wires the enabled,
// non-bypassed effects in chain order between input and output. Effects
// that are missing, disabled, or of an unsupported type contribute
// nothing; the walk never fails.
func (c *Chain) rebuild() {
	c.teardown()

	prev := unit.Unit(c.input)

	for _, id := range c.order {
		def := c.catalog.Get(id)
		if def == nil || !def.Enabled || def.Bypassed {
			continue
		}

		proc := c.processor(def.Type)
		if proc == nil {
			c.log.Warn("unsupported effect type", "effect", id, "type", def.Type)

			continue
		}

		units, err := proc.Build(def)
		if err != nil {
			c.log.Warn("effect build failed", "effect", id, "type", def.Type, "error", err)

			continue
		}

		if len(units) == 0 {
			continue
		}

		c.env.Connect(prev, units[0])

		start := len(c.arena)
		c.arena = append(c.arena, units...)
		c.spans[id] = span{start: start, end: len(c.arena)}

		prev = units[len(units)-1]
	}

	c.env.Connect(prev, c.output)

	c.rebuilds++
}
