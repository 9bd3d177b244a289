// Package window generates analysis window functions for FFT framing.
package window

import (
	"fmt"
	"math"
	"strings"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris
	TypeFlatTop
)

// String returns the canonical window name.
func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "rectangular"
	case TypeHann:
		return "hann"
	case TypeHamming:
		return "hamming"
	case TypeBlackman:
		return "blackman"
	case TypeBlackmanHarris:
		return "blackmanharris"
	case TypeFlatTop:
		return "flattop"
	default:
		return fmt.Sprintf("window(%d)", int(t))
	}
}

// ParseType resolves a window name to its Type. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "rectangular", "rect":
		return TypeRectangular, nil
	case "hann", "hanning":
		return TypeHann, nil
	case "hamming":
		return TypeHamming, nil
	case "blackman":
		return TypeBlackman, nil
	case "blackmanharris", "blackman-harris":
		return TypeBlackmanHarris, nil
	case "flattop", "flat-top":
		return TypeFlatTop, nil
	default:
		return 0, fmt.Errorf("unsupported window type: %q", name)
	}
}

// cosine-sum coefficients, w[n] = sum_k a_k * cos(2*pi*k*n/(N-1))
// with alternating signs folded into the coefficients.
var coeffs = map[Type][]float64{
	TypeRectangular:    {1},
	TypeHann:           {0.5, -0.5},
	TypeHamming:        {0.54, -0.46},
	TypeBlackman:       {0.42, -0.5, 0.08},
	TypeBlackmanHarris: {0.35875, -0.48829, 0.14128, -0.01168},
	TypeFlatTop:        {0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368},
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic selects the periodic (FFT framing) form instead of the
// symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length. Unknown types
// fall back to rectangular. Lengths below 1 return nil.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length < 1 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	a, ok := coeffs[t]
	if !ok {
		a = coeffs[TypeRectangular]
	}

	out := make([]float64, length)

	denom := float64(length - 1)
	if cfg.periodic {
		denom = float64(length)
	}

	if denom == 0 {
		out[0] = 1
		return out
	}

	for n := range out {
		w := 0.0
		for k, ak := range a {
			w += ak * math.Cos(2*math.Pi*float64(k)*float64(n)/denom)
		}

		out[n] = w
	}

	return out
}

// CoherentGain returns the mean of the window coefficients, used to
// normalize FFT magnitudes for amplitude-accurate spectra.
func CoherentGain(win []float64) float64 {
	if len(win) == 0 {
		return 0
	}

	sum := 0.0
	for _, w := range win {
		sum += w
	}

	return sum / float64(len(win))
}
