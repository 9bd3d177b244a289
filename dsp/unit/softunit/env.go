// Package softunit implements the unit.Environment capability in pure Go.
// It supplies software processing units (gain, biquad filter, compressor,
// convolver, delay line, oscillator, waveshaper, FFT analyzer) and renders
// audio through the connected unit graph block by block.
//
// Feedback cycles are legal as long as they pass through at least one
// stateful unit; a feedback edge contributes the source unit's previous
// block, giving loops one block of latency.
package softunit

import (
	"fmt"

	"github.com/stemstation/audiocore/dsp/unit"
)

type edge struct {
	from, to unit.Unit
}

// Environment is a software implementation of unit.Environment.
// It is not safe for concurrent use; the engine contract assumes a single
// owning controller.
type Environment struct {
	sampleRate float64

	units []unit.Unit // creation/registration order, for deterministic walks
	index map[unit.Unit]int
	outs  map[unit.Unit][]unit.Unit

	cur  map[unit.Unit][]float64
	prev map[unit.Unit][]float64
	mix  []float64
}

// NewEnvironment creates an environment at the given sample rate.
func NewEnvironment(sampleRate float64) (*Environment, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("softunit: sample rate must be > 0: %f", sampleRate)
	}

	return &Environment{
		sampleRate: sampleRate,
		index:      make(map[unit.Unit]int),
		outs:       make(map[unit.Unit][]unit.Unit),
		cur:        make(map[unit.Unit][]float64),
		prev:       make(map[unit.Unit][]float64),
	}, nil
}

// SampleRate returns the environment sample rate in Hz.
func (e *Environment) SampleRate() float64 { return e.sampleRate }

// register adds a unit to the deterministic walk order.
func (e *Environment) register(u unit.Unit) {
	if _, ok := e.index[u]; ok {
		return
	}

	e.index[u] = len(e.units)
	e.units = append(e.units, u)
}

// Connect routes src's output into dst's input. Duplicate connections are
// collapsed. Units created outside this environment are registered on
// first connection.
func (e *Environment) Connect(src, dst unit.Unit) {
	if src == nil || dst == nil || src == dst {
		return
	}

	e.register(src)
	e.register(dst)

	for _, existing := range e.outs[src] {
		if existing == dst {
			return
		}
	}

	e.outs[src] = append(e.outs[src], dst)
}

// Disconnect detaches u from every connection and releases its walk
// bookkeeping and block history. Disconnecting a unit that is already
// detached (or was never connected) is a no-op; a later Connect
// re-registers the unit with fresh state.
func (e *Environment) Disconnect(u unit.Unit) {
	if u == nil {
		return
	}

	delete(e.outs, u)

	for from, targets := range e.outs {
		kept := targets[:0]

		for _, t := range targets {
			if t != u {
				kept = append(kept, t)
			}
		}

		if len(kept) == 0 {
			delete(e.outs, from)
		} else {
			e.outs[from] = kept
		}
	}

	e.drop(u)
}

// drop removes a fully detached unit from the walk structures so torn-down
// sub-graphs stop costing render time and memory.
func (e *Environment) drop(u unit.Unit) {
	i, ok := e.index[u]
	if !ok {
		return
	}

	e.units = append(e.units[:i], e.units[i+1:]...)
	delete(e.index, u)

	for j := i; j < len(e.units); j++ {
		e.index[e.units[j]] = j
	}

	delete(e.cur, u)
	delete(e.prev, u)
}

// Reset clears every registered unit's state and all block history.
func (e *Environment) Reset() {
	for _, u := range e.units {
		u.Reset()
	}

	e.cur = make(map[unit.Unit][]float64)
	e.prev = make(map[unit.Unit][]float64)
}

// RenderBlock drives one block of audio from src through the connected
// graph and writes sink's output into out. in and out must have equal
// length. Units that are connected but unreachable from src still render
// (with silent input), so analyzer taps downstream of any point observe
// signal exactly as routed. Registered units with no connections at all
// stay out of the walk; a unit serving purely as a modulation source
// advances only through its modulation target.
func (e *Environment) RenderBlock(src, sink unit.Unit, in, out []float64) {
	n := len(in)
	if n == 0 || len(out) != n {
		return
	}

	e.register(src)
	e.register(sink)

	active := e.activeUnits(src, sink)
	back := e.findBackEdges(active)
	order := e.topoOrder(active, back)

	if len(e.mix) < n {
		e.mix = make([]float64, n)
	}

	mix := e.mix[:n]

	incoming := e.incomingEdges(active)

	for _, u := range order {
		for i := range mix {
			mix[i] = 0
		}

		if u == src {
			copy(mix, in)
		}

		for _, in := range incoming[u] {
			var parentOut []float64
			if back[edge{in, u}] {
				parentOut = e.prev[in]
			} else {
				parentOut = e.cur[in]
			}

			for i := 0; i < n && i < len(parentOut); i++ {
				mix[i] += parentOut[i]
			}
		}

		dst := e.cur[u]
		if len(dst) < n {
			dst = make([]float64, n)
		}

		dst = dst[:n]
		u.Render(dst, mix)
		e.cur[u] = dst
	}

	if sinkOut := e.cur[sink]; len(sinkOut) >= n {
		copy(out, sinkOut[:n])
	} else {
		for i := range out {
			out[i] = 0
		}
	}

	// Current blocks become the feedback source for the next block.
	for _, u := range order {
		curBuf := e.cur[u]

		prevBuf := e.prev[u]
		if len(prevBuf) < len(curBuf) {
			prevBuf = make([]float64, len(curBuf))
		}

		prevBuf = prevBuf[:len(curBuf)]
		copy(prevBuf, curBuf)
		e.prev[u] = prevBuf
	}
}

// activeUnits returns, in creation order, the units participating in this
// render pass: src, sink, and every unit with at least one connection.
func (e *Environment) activeUnits(src, sink unit.Unit) []unit.Unit {
	connected := make(map[unit.Unit]bool, len(e.units))
	connected[src] = true
	connected[sink] = true

	for from, targets := range e.outs {
		connected[from] = true

		for _, to := range targets {
			connected[to] = true
		}
	}

	active := make([]unit.Unit, 0, len(e.units))

	for _, u := range e.units {
		if connected[u] {
			active = append(active, u)
		}
	}

	return active
}

// incomingEdges inverts the adjacency into per-unit ordered parent lists.
func (e *Environment) incomingEdges(units []unit.Unit) map[unit.Unit][]unit.Unit {
	in := make(map[unit.Unit][]unit.Unit, len(units))

	for _, from := range units {
		for _, to := range e.outs[from] {
			in[to] = append(in[to], from)
		}
	}

	return in
}

// findBackEdges runs a depth-first walk in creation order and marks edges
// that close a cycle.
func (e *Environment) findBackEdges(units []unit.Unit) map[edge]bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[unit.Unit]int, len(units))
	back := make(map[edge]bool)

	var visit func(u unit.Unit)
	visit = func(u unit.Unit) {
		color[u] = gray

		for _, next := range e.outs[u] {
			switch color[next] {
			case white:
				visit(next)
			case gray:
				back[edge{u, next}] = true
			}
		}

		color[u] = black
	}

	for _, u := range units {
		if color[u] == white {
			visit(u)
		}
	}

	return back
}

// topoOrder returns a Kahn topological order over the forward edges.
func (e *Environment) topoOrder(units []unit.Unit, back map[edge]bool) []unit.Unit {
	indegree := make(map[unit.Unit]int, len(units))

	for _, from := range units {
		for _, to := range e.outs[from] {
			if !back[edge{from, to}] {
				indegree[to]++
			}
		}
	}

	queue := make([]unit.Unit, 0, len(units))

	for _, u := range units {
		if indegree[u] == 0 {
			queue = append(queue, u)
		}
	}

	order := make([]unit.Unit, 0, len(units))

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		order = append(order, u)

		for _, next := range e.outs[u] {
			if back[edge{u, next}] {
				continue
			}

			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return order
}
