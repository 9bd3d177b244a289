package softunit

import (
	"math"
	"testing"

	"github.com/stemstation/audiocore/dsp/unit"
	"github.com/stemstation/audiocore/internal/testutil"
	timestats "github.com/stemstation/audiocore/stats/time"
)

func newTestEnv(t *testing.T) *Environment {
	t.Helper()

	env, err := NewEnvironment(44100)
	if err != nil {
		t.Fatal(err)
	}

	return env
}

func render(u unit.Unit, src []float64) []float64 {
	dst := make([]float64, len(src))
	u.Render(dst, src)

	return dst
}

func TestGainScalesSignal(t *testing.T) {
	env := newTestEnv(t)

	g := env.NewGain(0.5)

	out := render(g, testutil.DC(0.8, 16))
	testutil.RequireSliceNearlyEqual(t, out, testutil.DC(0.4, 16), 1e-12)

	g.SetLevel(2)

	if g.Level() != 2 {
		t.Fatalf("level = %v, want 2", g.Level())
	}
}

func TestOscillatorFrequency(t *testing.T) {
	env := newTestEnv(t)

	osc := env.NewOscillator(441)

	out := render(osc, make([]float64, 44100))

	zcr := timestats.ZeroCrossingRate(out)
	testutil.RequireNear(t, zcr*44100, 2*441, 5)
}

func TestOscillatorResetRestartsPhase(t *testing.T) {
	env := newTestEnv(t)

	osc := env.NewOscillator(1000)

	first := render(osc, make([]float64, 256))

	osc.Reset()

	second := render(osc, make([]float64, 256))
	testutil.RequireSliceNearlyEqual(t, first, second, 1e-12)
}

func TestFilterLowpassAttenuatesHighFrequencies(t *testing.T) {
	env := newTestEnv(t)

	f := env.NewFilter(unit.FilterLowpass, 500, 0.707, 0)

	low := testutil.DeterministicSine(100, 44100, 1, 44100)
	high := testutil.DeterministicSine(10000, 44100, 1, 44100)

	// Skip the transient before measuring.
	lowOut := render(f, low)[4410:]

	f.Reset()

	highOut := render(f, high)[4410:]

	lowRMS := timestats.RMS(lowOut)
	highRMS := timestats.RMS(highOut)

	if highRMS > lowRMS*0.05 {
		t.Fatalf("lowpass barely attenuates: low RMS %v, high RMS %v", lowRMS, highRMS)
	}
}

func TestFilterPeakingBoostsBand(t *testing.T) {
	env := newTestEnv(t)

	f := env.NewFilter(unit.FilterPeaking, 1000, 1, 12)

	in := testutil.DeterministicSine(1000, 44100, 0.1, 44100)
	out := render(f, in)[4410:]

	gain := timestats.RMS(out) / timestats.RMS(in[4410:])
	testutil.RequireNear(t, 20*math.Log10(gain), 12, 0.5)
}

func TestFilterHighpassPassesHighFrequencies(t *testing.T) {
	env := newTestEnv(t)

	f := env.NewFilter(unit.FilterHighpass, 5000, 0.707, 0)

	dc := render(f, testutil.DC(1, 44100))[4410:]
	if rms := timestats.RMS(dc); rms > 0.01 {
		t.Fatalf("highpass passes DC: RMS %v", rms)
	}
}

func TestCompressorReducesLoudSignal(t *testing.T) {
	env := newTestEnv(t)

	c := env.NewCompressor()
	c.SetThresholdDB(-20)
	c.SetRatio(8)
	c.SetAttackSeconds(0.001)
	c.SetReleaseSeconds(0.05)
	c.SetKneeDB(0)

	loud := testutil.DeterministicSine(1000, 44100, 1, 44100)
	out := render(c, loud)[4410:]

	if rms := timestats.RMS(out); rms > 0.25 {
		t.Fatalf("compressor barely reduces: RMS %v", rms)
	}
}

func TestCompressorPassesQuietSignal(t *testing.T) {
	env := newTestEnv(t)

	c := env.NewCompressor()
	c.SetThresholdDB(-20)
	c.SetRatio(8)
	c.SetKneeDB(0)

	quiet := testutil.DeterministicSine(1000, 44100, 0.01, 8820)
	out := render(c, quiet)[4410:]

	gain := timestats.RMS(out) / timestats.RMS(quiet[4410:])
	testutil.RequireNear(t, gain, 1, 0.05)
}

func TestDelayLineDelaysImpulse(t *testing.T) {
	env := newTestEnv(t)

	d := env.NewDelayLine(1)
	d.SetDelaySeconds(100.0 / 44100)

	out := render(d, testutil.Impulse(256, 0))

	for i, v := range out {
		want := 0.0
		if i == 100 {
			want = 1
		}

		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, v, want)
		}
	}
}

func TestDelayLineClampsToMax(t *testing.T) {
	env := newTestEnv(t)

	d := env.NewDelayLine(0.5)
	d.SetDelaySeconds(2)

	testutil.RequireNear(t, d.DelaySeconds(), 0.5, 1e-12)
	testutil.RequireNear(t, d.MaxDelaySeconds(), 0.5, 1e-12)
}

func TestDelayLineModulationStaysBounded(t *testing.T) {
	env := newTestEnv(t)

	d := env.NewDelayLine(0.1)
	d.SetDelaySeconds(0.02)
	d.Modulate(env.NewOscillator(2), 0.005)

	out := render(d, testutil.DeterministicSine(440, 44100, 0.5, 44100))
	testutil.RequireFinite(t, out)

	if peak := timestats.Peak(out); peak > 0.6 {
		t.Fatalf("modulated delay exceeds input peak: %v", peak)
	}
}

func TestWaveshaperIdentityCurve(t *testing.T) {
	env := newTestEnv(t)

	curve := make([]float64, 1024)
	for i := range curve {
		curve[i] = float64(i)/float64(len(curve)-1)*2 - 1
	}

	w := env.NewWaveshaper(curve)

	in := testutil.DeterministicSine(440, 44100, 0.9, 1024)
	out := render(w, in)
	testutil.RequireSliceNearlyEqual(t, out, in, 1e-2)
}

func TestWaveshaperNilCurvePassesThrough(t *testing.T) {
	env := newTestEnv(t)

	w := env.NewWaveshaper(nil)

	in := testutil.DeterministicSine(440, 44100, 0.9, 256)
	out := render(w, in)
	testutil.RequireSliceNearlyEqual(t, out, in, 1e-12)
}

func TestWaveshaperClampsOutOfRangeInput(t *testing.T) {
	env := newTestEnv(t)

	curve := []float64{-0.5, 0, 0.5}
	w := env.NewWaveshaper(curve)

	out := render(w, []float64{-3, 3})
	testutil.RequireSliceNearlyEqual(t, out, []float64{-0.5, 0.5}, 1e-12)
}

func TestConvolverIdentityImpulse(t *testing.T) {
	env := newTestEnv(t)

	c := env.NewConvolver(testutil.Impulse(1, 0))

	in := testutil.DeterministicSine(440, 44100, 0.5, 512)
	out := render(c, in)
	testutil.RequireSliceNearlyEqual(t, out, in, 1e-12)
}

func TestConvolverDirectShift(t *testing.T) {
	env := newTestEnv(t)

	// IR delays by 3 samples and halves the level.
	ir := make([]float64, 4)
	ir[3] = 0.5
	c := env.NewConvolver(ir)

	out := render(c, testutil.Impulse(16, 0))

	for i, v := range out {
		want := 0.0
		if i == 3 {
			want = 0.5
		}

		testutil.RequireNear(t, v, want, 1e-12)
	}
}

func TestConvolverPartitionedMatchesDirect(t *testing.T) {
	env := newTestEnv(t)

	ir := testutil.DeterministicNoise(7, 0.1, 6000)
	in := testutil.DeterministicNoise(11, 0.5, 3*partSize)

	long := env.NewConvolver(ir) // partitioned path

	got := render(long, in)

	// Reference via time-domain accumulation, accounting for the
	// partition buffering latency.
	latency := partSize - 1
	want := make([]float64, len(in))

	for i := range want {
		srcIdx := i - latency
		if srcIdx < 0 {
			continue
		}

		var acc float64

		for j, h := range ir {
			if srcIdx-j < 0 {
				break
			}

			acc += h * in[srcIdx-j]
		}

		want[i] = acc
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-6)
}

func TestConvolverEmptyImpulsePassesThrough(t *testing.T) {
	env := newTestEnv(t)

	c := env.NewConvolver(nil)

	in := testutil.DeterministicSine(440, 44100, 0.5, 128)
	out := render(c, in)
	testutil.RequireSliceNearlyEqual(t, out, in, 1e-12)
}

func TestAnalyzerRejectsBadConfig(t *testing.T) {
	env := newTestEnv(t)

	cases := []unit.AnalyzerConfig{
		{FFTSize: 1000, MinDecibels: -100, MaxDecibels: -30},
		{FFTSize: 16, MinDecibels: -100, MaxDecibels: -30},
		{FFTSize: 2048, MinDecibels: -30, MaxDecibels: -100},
	}

	for _, cfg := range cases {
		if _, err := env.NewAnalyzer(cfg); err == nil {
			t.Errorf("config %+v: expected error", cfg)
		}
	}
}

func TestAnalyzerFrequencyPeakBin(t *testing.T) {
	env := newTestEnv(t)

	a, err := env.NewAnalyzer(unit.AnalyzerConfig{
		FFTSize:     2048,
		Smoothing:   0,
		MinDecibels: -100,
		MaxDecibels: 0,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Bin-centered frequency avoids leakage into neighbors.
	freq := 100 * 44100.0 / 2048

	in := testutil.DeterministicSine(freq, 44100, 0.5, 4096)
	render(a, in)

	freqBytes := make([]byte, a.BinCount())
	if n := a.FrequencyBytes(freqBytes); n != a.BinCount() {
		t.Fatalf("wrote %d bytes, want %d", n, a.BinCount())
	}

	peakBin := 0
	for i, b := range freqBytes {
		if b > freqBytes[peakBin] {
			peakBin = i
		}
	}

	if peakBin != 100 {
		t.Fatalf("peak bin = %d, want 100", peakBin)
	}

	if freqBytes[peakBin] == 0 || freqBytes[peakBin] == 255 {
		t.Fatalf("peak byte saturated: %d", freqBytes[peakBin])
	}
}

func TestAnalyzerTimeBytesSilenceCentered(t *testing.T) {
	env := newTestEnv(t)

	a, err := env.NewAnalyzer(unit.AnalyzerConfig{
		FFTSize:     128,
		MinDecibels: -100,
		MaxDecibels: -30,
	})
	if err != nil {
		t.Fatal(err)
	}

	render(a, make([]float64, 128))

	timeBytes := make([]byte, a.FFTSize())
	a.TimeBytes(timeBytes)

	for i, b := range timeBytes {
		if b != 128 {
			t.Fatalf("index %d: byte %d, want 128", i, b)
		}
	}
}

func TestAnalyzerSmoothingHoldsDecay(t *testing.T) {
	env := newTestEnv(t)

	a, err := env.NewAnalyzer(unit.AnalyzerConfig{
		FFTSize:     1024,
		Smoothing:   0.9,
		MinDecibels: -100,
		MaxDecibels: 0,
	})
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.DeterministicSine(1000, 44100, 0.5, 2048)
	render(a, in)

	first := make([]byte, a.BinCount())
	a.FrequencyBytes(first)

	// Feed silence; smoothed magnitudes must decay, not vanish.
	render(a, make([]float64, 2048))

	second := make([]byte, a.BinCount())
	a.FrequencyBytes(second)

	peak := 0
	for i, b := range first {
		if b > first[peak] {
			peak = i
		}
	}

	if second[peak] == 0 {
		t.Fatal("smoothing discarded history immediately")
	}

	if second[peak] >= first[peak] {
		t.Fatalf("smoothed peak did not decay: %d -> %d", first[peak], second[peak])
	}
}
