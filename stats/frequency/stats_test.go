package frequency

import (
	"math"
	"testing"
)

const testSampleRate = 48000.0

// singleBinSpectrum returns a spectrum with one hot bin.
func singleBinSpectrum(binCount, bin int, mag float64) []float64 {
	out := make([]float64, binCount)
	out[bin] = mag

	return out
}

func TestCentroidSingleTone(t *testing.T) {
	const binCount = 1024

	bin := 100
	spec := singleBinSpectrum(binCount, bin, 1)

	got := Centroid(spec, testSampleRate)
	want := BinFrequency(bin, testSampleRate, binCount)

	if math.Abs(got-want) > BinWidth(testSampleRate, binCount) {
		t.Fatalf("centroid = %v, want within one bin of %v", got, want)
	}
}

func TestCentroidSilence(t *testing.T) {
	if got := Centroid(make([]float64, 512), testSampleRate); got != 0 {
		t.Fatalf("silent centroid = %v, want 0", got)
	}
}

func TestRolloff(t *testing.T) {
	const binCount = 512

	// All energy in bin 10: rolloff must land exactly there.
	spec := singleBinSpectrum(binCount, 10, 2)

	got := Rolloff(spec, testSampleRate, DefaultRolloffFraction)
	want := BinFrequency(10, testSampleRate, binCount)

	if got != want {
		t.Fatalf("rolloff = %v, want %v", got, want)
	}
}

func TestRolloffSilence(t *testing.T) {
	if got := Rolloff(make([]float64, 512), testSampleRate, 0.85); got != 0 {
		t.Fatalf("silent rolloff = %v, want 0", got)
	}
}

func TestFlux(t *testing.T) {
	prev := []float64{1, 1, 1, 1}
	cur := []float64{2, 0.5, 1, 3}

	// Positive rises: 1 and 2, averaged over 4 bins.
	if got := Flux(cur, prev); got != 0.75 {
		t.Fatalf("flux = %v, want 0.75", got)
	}
}

func TestFluxNoPriorFrame(t *testing.T) {
	if got := Flux([]float64{1, 2}, nil); got != 0 {
		t.Fatalf("flux without prior frame = %v, want 0", got)
	}
}

func TestFundamentalSingleTone(t *testing.T) {
	const binCount = 1024

	bin := 40 // inside the lowest quarter
	spec := singleBinSpectrum(binCount, bin, 1)

	got := Fundamental(spec, testSampleRate)
	want := BinFrequency(bin, testSampleRate, binCount)

	if math.Abs(got-want) > BinWidth(testSampleRate, binCount) {
		t.Fatalf("fundamental = %v, want within one bin of %v", got, want)
	}
}

func TestFundamentalIgnoresUpperSpectrum(t *testing.T) {
	const binCount = 1024

	spec := make([]float64, binCount)
	spec[30] = 0.5
	spec[800] = 10 // outside the lowest quarter, must not win

	got := Fundamental(spec, testSampleRate)
	want := BinFrequency(30, testSampleRate, binCount)

	if got != want {
		t.Fatalf("fundamental = %v, want %v", got, want)
	}
}

func TestHarmonics(t *testing.T) {
	const binCount = 1024

	width := BinWidth(testSampleRate, binCount)
	f0 := 20 * width // exactly bin 20

	spec := make([]float64, binCount)
	for k := 2; k <= 8; k++ {
		spec[20*k] = float64(k)
	}

	got := Harmonics(spec, testSampleRate, f0, 7)
	if len(got) != 7 {
		t.Fatalf("harmonic count = %d, want 7", len(got))
	}

	for i, m := range got {
		if m != float64(i+2) {
			t.Fatalf("harmonic %d = %v, want %v", i+2, m, float64(i+2))
		}
	}
}

func TestHarmonicsWithoutFundamental(t *testing.T) {
	if got := Harmonics(make([]float64, 64), testSampleRate, 0, 7); got != nil {
		t.Fatalf("harmonics without fundamental = %v, want nil", got)
	}
}

func TestNoiseFloor(t *testing.T) {
	spec := make([]float64, 100)
	for i := range spec {
		spec[i] = float64(i)
	}

	// 10th percentile of 0..99 is index 10 after sorting.
	if got := NoiseFloor(spec); got != 10 {
		t.Fatalf("noise floor = %v, want 10", got)
	}
}

func TestTonalBalance(t *testing.T) {
	const binCount = 1024

	spec := make([]float64, binCount)

	// One unit of energy per band.
	bassBin := int(100 / BinWidth(testSampleRate, binCount))
	midBin := int(1000 / BinWidth(testSampleRate, binCount))
	trebleBin := int(8000 / BinWidth(testSampleRate, binCount))

	spec[bassBin] = 1
	spec[midBin] = 1
	spec[trebleBin] = 1

	b := TonalBalance(spec, testSampleRate)

	third := 1.0 / 3.0
	for name, got := range map[string]float64{
		"bass":   b.Bass,
		"mid":    b.Midrange,
		"treble": b.Treble,
	} {
		if math.Abs(got-third) > 1e-9 {
			t.Fatalf("%s share = %v, want %v", name, got, third)
		}
	}
}

func TestTonalBalanceSilence(t *testing.T) {
	if b := TonalBalance(make([]float64, 256), testSampleRate); b != (Balance{}) {
		t.Fatalf("silent balance = %+v, want zeros", b)
	}
}

func TestFromBytes(t *testing.T) {
	dst := make([]float64, 3)
	FromBytes(dst, []byte{255, 0, 128})

	if dst[0] != 1 {
		t.Fatalf("byte 255 = %v, want 1", dst[0])
	}

	if math.Abs(dst[1]-1e-4) > 1e-12 {
		t.Fatalf("byte 0 = %v, want 1e-4", dst[1])
	}

	want := math.Pow(10, (128.0-255)/255*4)
	if dst[2] != want {
		t.Fatalf("byte 128 = %v, want %v", dst[2], want)
	}
}
