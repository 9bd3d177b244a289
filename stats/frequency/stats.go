// Package frequency computes spectral-shape descriptors from a linear
// magnitude spectrum.
//
// The magnitude slice covers bins 0..binCount-1 over the lower half of the
// sampling range; the frequency of bin i is:
//
//	f_i = i * sampleRate / (2 * binCount)
package frequency

import (
	"math"
	"sort"
)

// DefaultRolloffFraction is the energy fraction used for spectral rolloff.
const DefaultRolloffFraction = 0.85

// BinFrequency returns the center frequency in Hz of bin i.
func BinFrequency(i int, sampleRate float64, binCount int) float64 {
	if binCount == 0 {
		return 0
	}

	return float64(i) * sampleRate / (2 * float64(binCount))
}

// BinWidth returns the frequency spacing between adjacent bins.
func BinWidth(sampleRate float64, binCount int) float64 {
	if binCount == 0 {
		return 0
	}

	return sampleRate / (2 * float64(binCount))
}

// FromBytes decodes a 0..255 magnitude buffer into linear magnitudes:
//
//	linear[i] = 10^((byte[i]-255)/255 * 4)
//
// so byte 255 maps to 1.0 and byte 0 maps to 80 dB below it.
func FromBytes(dst []float64, src []byte) {
	for i := range src {
		if i >= len(dst) {
			return
		}

		dst[i] = math.Pow(10, (float64(src[i])-255)/255*4)
	}
}

// Centroid returns the magnitude-weighted average frequency in Hz.
// Returns 0 when total magnitude is zero.
func Centroid(linear []float64, sampleRate float64) float64 {
	n := len(linear)
	if n == 0 {
		return 0
	}

	var sum, weighted float64

	for i, m := range linear {
		sum += m
		weighted += BinFrequency(i, sampleRate, n) * m
	}

	if sum == 0 {
		return 0
	}

	return weighted / sum
}

// Rolloff returns the first frequency whose cumulative squared-magnitude
// energy reaches the given fraction of the total. Returns 0 on silence.
func Rolloff(linear []float64, sampleRate, fraction float64) float64 {
	n := len(linear)
	if n == 0 {
		return 0
	}

	var total float64
	for _, m := range linear {
		total += m * m
	}

	if total == 0 {
		return 0
	}

	threshold := fraction * total

	var cum float64

	for i, m := range linear {
		cum += m * m
		if cum >= threshold {
			return BinFrequency(i, sampleRate, n)
		}
	}

	return BinFrequency(n-1, sampleRate, n)
}

// Flux returns the mean positive per-bin rise from prev to cur.
// Returns 0 when there is no prior frame of matching size.
func Flux(cur, prev []float64) float64 {
	if len(cur) == 0 || len(prev) != len(cur) {
		return 0
	}

	var sum float64

	for i, m := range cur {
		if d := m - prev[i]; d > 0 {
			sum += d
		}
	}

	return sum / float64(len(cur))
}

// Fundamental estimates the fundamental frequency as the magnitude-maximum
// bin within the lowest quarter of the spectrum. This is a deliberately
// cheap estimator for live display, not a pitch tracker. Returns 0 when the
// low spectrum is silent.
func Fundamental(linear []float64, sampleRate float64) float64 {
	n := len(linear)

	limit := n / 4
	if limit == 0 {
		limit = n
	}

	maxBin := 0
	maxVal := 0.0

	for i := 0; i < limit; i++ {
		if linear[i] > maxVal {
			maxVal = linear[i]
			maxBin = i
		}
	}

	if maxVal == 0 {
		return 0
	}

	return BinFrequency(maxBin, sampleRate, n)
}

// Harmonics returns the magnitudes at the bins nearest fundamental*2 up to
// fundamental*(count+1). Harmonics beyond the spectrum edge are omitted.
// Returns nil when fundamental is not positive.
func Harmonics(linear []float64, sampleRate, fundamental float64, count int) []float64 {
	n := len(linear)
	if n == 0 || fundamental <= 0 || count <= 0 {
		return nil
	}

	width := BinWidth(sampleRate, n)
	if width == 0 {
		return nil
	}

	out := make([]float64, 0, count)

	for k := 2; k <= count+1; k++ {
		bin := int(math.Round(fundamental * float64(k) / width))
		if bin >= n {
			break
		}

		out = append(out, linear[bin])
	}

	return out
}

// NoiseFloor returns the 10th-percentile value of the magnitude spectrum.
func NoiseFloor(linear []float64) float64 {
	n := len(linear)
	if n == 0 {
		return 0
	}

	sorted := append([]float64(nil), linear...)
	sort.Float64s(sorted)

	return sorted[n/10]
}

// Balance holds the spectral energy share per perceptual band.
type Balance struct {
	Bass     float64 // below 250 Hz
	Midrange float64 // 250 Hz to 4 kHz
	Treble   float64 // above 4 kHz
}

// TonalBalance returns each band's share of total squared-magnitude energy.
// All shares are zero on silence.
func TonalBalance(linear []float64, sampleRate float64) Balance {
	const (
		bassLimit   = 250.0
		trebleLimit = 4000.0
	)

	n := len(linear)

	var b Balance

	var total float64

	for i, m := range linear {
		e := m * m
		total += e

		f := BinFrequency(i, sampleRate, n)

		switch {
		case f < bassLimit:
			b.Bass += e
		case f <= trebleLimit:
			b.Midrange += e
		default:
			b.Treble += e
		}
	}

	if total == 0 {
		return Balance{}
	}

	b.Bass /= total
	b.Midrange /= total
	b.Treble /= total

	return b
}
