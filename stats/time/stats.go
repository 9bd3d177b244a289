// Package time computes time-domain descriptors of an audio block.
package time

import "math"

// Stats holds time-domain descriptors for one block of samples in [-1, 1].
type Stats struct {
	Length           int
	RMS              float64
	Peak             float64 // max(|x|)
	ZeroCrossingRate float64 // fraction of adjacent pairs crossing zero
	DynamicRangeDB   float64 // 20*log10(peak/rms), 0 when either is 0
}

// Calculate computes all descriptors in a single pass.
func Calculate(samples []float64) Stats {
	n := len(samples)
	if n == 0 {
		return Stats{}
	}

	var (
		sumSq     float64
		peak      float64
		crossings int
	)

	for i, x := range samples {
		sumSq += x * x

		a := math.Abs(x)
		if a > peak {
			peak = a
		}

		if i > 0 && samples[i-1]*x < 0 {
			crossings++
		}
	}

	s := Stats{
		Length: n,
		RMS:    math.Sqrt(sumSq / float64(n)),
		Peak:   peak,
	}

	if n > 1 {
		s.ZeroCrossingRate = float64(crossings) / float64(n-1)
	}

	if s.Peak > 0 && s.RMS > 0 {
		s.DynamicRangeDB = 20 * math.Log10(s.Peak/s.RMS)
	}

	return s
}

// RMS returns the root-mean-square of the block.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range samples {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(samples)))
}

// Peak returns the peak absolute amplitude of the block.
func Peak(samples []float64) float64 {
	var peak float64

	for _, x := range samples {
		a := math.Abs(x)
		if a > peak {
			peak = a
		}
	}

	return peak
}

// ZeroCrossingRate returns the fraction of adjacent sample pairs whose
// signs differ. Blocks shorter than two samples have a rate of zero.
func ZeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}

	var crossings int

	for i := 1; i < len(samples); i++ {
		if samples[i-1]*samples[i] < 0 {
			crossings++
		}
	}

	return float64(crossings) / float64(len(samples)-1)
}
