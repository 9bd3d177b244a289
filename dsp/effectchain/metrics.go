package effectchain

// EffectMetrics reports one live effect's resource estimate.
type EffectMetrics struct {
	ID       string
	Type     string
	Units    int
	CPUUsage float64
	Latency  float64
}

// Metrics aggregates the chain's live resource estimates.
type Metrics struct {
	Rebuilds      int
	TotalUnits    int
	TotalCPUUsage float64
	TotalLatency  float64
	Effects       []EffectMetrics
}

// PerformanceMetrics reports per-effect unit counts and the definitions'
// static cost estimates for every effect with a live sub-graph, in chain
// order.
func (c *Chain) PerformanceMetrics() Metrics {
	m := Metrics{
		Rebuilds:   c.rebuilds,
		TotalUnits: len(c.arena),
	}

	for _, id := range c.order {
		sp, ok := c.spans[id]
		if !ok {
			continue
		}

		def := c.catalog.Get(id)
		if def == nil {
			continue
		}

		m.Effects = append(m.Effects, EffectMetrics{
			ID:       id,
			Type:     def.Type,
			Units:    sp.end - sp.start,
			CPUUsage: def.CPUUsage,
			Latency:  def.Latency,
		})

		m.TotalCPUUsage += def.CPUUsage
		m.TotalLatency += def.Latency
	}

	return m
}
