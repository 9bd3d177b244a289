package param

// Preset is a named bundle of parameter values. Applying a preset writes
// only the listed parameters; anything not listed keeps its prior value.
type Preset struct {
	ID          string
	Name        string
	Description string
	Values      map[string]float64
	Tags        []string
}

// Clone returns a deep copy of the preset.
func (p Preset) Clone() Preset {
	c := p
	c.Values = make(map[string]float64, len(p.Values))

	for k, v := range p.Values {
		c.Values[k] = v
	}

	c.Tags = append([]string(nil), p.Tags...)

	return c
}
