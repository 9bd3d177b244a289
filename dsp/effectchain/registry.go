package effectchain

import (
	"errors"
	"fmt"

	"github.com/stemstation/audiocore/dsp/unit"
)

// Processor is the per-type capability: materialize a sub-graph of units
// from a definition's current parameter values, and apply one parameter
// change to a live sub-graph.
//
// Build returns the units in processing order; the first unit is the
// sub-graph's entry and the last its exit. Internal connections between
// the units are made by the processor itself.
type Processor interface {
	Build(def *Definition) ([]unit.Unit, error)
	UpdateParameter(def *Definition, units []unit.Unit, paramID string, value float64)
}

// Factory creates the processor for one effect type, bound to the
// environment whose unit factories it will draw on. A chain calls each
// factory at most once and reuses the processor across rebuilds.
type Factory func(env unit.Environment) Processor

// ErrRegistered is returned when an effect type is registered twice.
var ErrRegistered = errors.New("effect type already registered")

// Registry resolves effect type names to processor factories. Use
// NewRegistry or DefaultRegistry; the zero value has no backing map.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to an effect type. A type can be bound once;
// re-binding fails with ErrRegistered so typos in custom effect packs
// surface instead of silently shadowing a built-in.
func (r *Registry) Register(effectType string, factory Factory) error {
	switch {
	case effectType == "":
		return errors.New("effectchain: empty effect type")
	case factory == nil:
		return fmt.Errorf("effectchain: nil factory for %q", effectType)
	}

	if _, taken := r.factories[effectType]; taken {
		return fmt.Errorf("%w: %s", ErrRegistered, effectType)
	}

	r.factories[effectType] = factory

	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func (r *Registry) MustRegister(effectType string, factory Factory) {
	if err := r.Register(effectType, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory bound to the effect type, or nil.
func (r *Registry) Lookup(effectType string) Factory {
	return r.factories[effectType]
}
