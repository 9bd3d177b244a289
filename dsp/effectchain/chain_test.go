package effectchain

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stemstation/audiocore/dsp/param"
	"github.com/stemstation/audiocore/dsp/unit/softunit"
	"github.com/stemstation/audiocore/internal/testutil"
)

func newTestChain(t *testing.T) (*Chain, *softunit.Environment, *Catalog) {
	t.Helper()

	env, err := softunit.NewEnvironment(44100)
	if err != nil {
		t.Fatal(err)
	}

	catalog := NewCatalog()
	RegisterBuiltins(catalog)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	chain := New(env, catalog, DefaultRegistry(), WithLogger(quiet))

	return chain, env, catalog
}

func TestEnableUnknownEffect(t *testing.T) {
	chain, _, _ := newTestChain(t)

	if chain.Enable("missing") {
		t.Fatal("expected false for unknown id")
	}
}

func TestEnableAppendsToChainOrder(t *testing.T) {
	chain, _, _ := newTestChain(t)

	if !chain.Enable("equalizer") || !chain.Enable("compressor") {
		t.Fatal("enable failed for built-in effects")
	}

	want := []string{"equalizer", "compressor"}
	if got := chain.GetChainOrder(); !reflect.DeepEqual(got, want) {
		t.Fatalf("chain order = %v, want %v", got, want)
	}
}

func TestDisableRemovesExactlyItsUnits(t *testing.T) {
	chain, _, _ := newTestChain(t)

	chain.Enable("equalizer")
	chain.Enable("compressor")

	ids, total := chain.LiveUnits()
	if !reflect.DeepEqual(ids, []string{"equalizer", "compressor"}) {
		t.Fatalf("live effects = %v", ids)
	}

	if total != 5 { // 3 filter sections + compressor + makeup
		t.Fatalf("live unit count = %d, want 5", total)
	}

	chain.Disable("equalizer")

	ids, total = chain.LiveUnits()
	if !reflect.DeepEqual(ids, []string{"compressor"}) {
		t.Fatalf("live effects after disable = %v", ids)
	}

	if total != 2 {
		t.Fatalf("live unit count after disable = %d, want 2", total)
	}

	// Chain order keeps the disabled effect's position.
	want := []string{"equalizer", "compressor"}
	if got := chain.GetChainOrder(); !reflect.DeepEqual(got, want) {
		t.Fatalf("chain order = %v, want %v", got, want)
	}
}

func TestSetParameterClampRoundTrip(t *testing.T) {
	chain, _, catalog := newTestChain(t)

	cases := []struct {
		value float64
		want  float64
	}{
		{6, 6},
		{100, 12},
		{-100, -12},
	}

	for _, tc := range cases {
		if !chain.SetParameter("equalizer", "lowGain", tc.value) {
			t.Fatalf("SetParameter(%v) returned false", tc.value)
		}

		got := catalog.Get("equalizer").Parameter("lowGain").Value
		if got != tc.want {
			t.Fatalf("write %v: stored %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestSetParameterUnknownIDs(t *testing.T) {
	chain, _, _ := newTestChain(t)

	if chain.SetParameter("missing", "lowGain", 0) {
		t.Fatal("expected false for unknown effect")
	}

	if chain.SetParameter("equalizer", "missing", 0) {
		t.Fatal("expected false for unknown parameter")
	}
}

func TestSetParameterAppliesToLiveUnits(t *testing.T) {
	chain, env, _ := newTestChain(t)

	chain.Enable("distortion")
	chain.SetParameter("distortion", "level", 0.25)

	src := env.NewGain(1)
	chain.ConnectSource(src)

	in := testutil.DC(0.5, 256)
	out := make([]float64, 256)
	env.RenderBlock(src, chain.Output(), in, out)

	testutil.RequireFinite(t, out)
}

func TestLoadPresetSubsetLeavesOthers(t *testing.T) {
	chain, _, catalog := newTestChain(t)

	chain.SetParameter("equalizer", "lowQ", 2.5)

	if !chain.LoadPreset("equalizer", "loudness") {
		t.Fatal("LoadPreset returned false")
	}

	def := catalog.Get("equalizer")

	if got := def.Parameter("lowGain").Value; got != 6 {
		t.Fatalf("lowGain = %v, want 6", got)
	}

	// Not listed in the preset: untouched.
	if got := def.Parameter("lowQ").Value; got != 2.5 {
		t.Fatalf("lowQ = %v, want 2.5", got)
	}
}

func TestLoadPresetUnknownIDs(t *testing.T) {
	chain, _, _ := newTestChain(t)

	if chain.LoadPreset("missing", "flat") {
		t.Fatal("expected false for unknown effect")
	}

	if chain.LoadPreset("equalizer", "missing") {
		t.Fatal("expected false for unknown preset")
	}
}

func TestLoadPresetSkipsInvalidFields(t *testing.T) {
	chain, _, catalog := newTestChain(t)

	def := catalog.Get("equalizer")
	def.Presets = append(def.Presets, param.Preset{
		ID:   "broken",
		Name: "Broken",
		Values: map[string]float64{
			"lowGain":   -6,
			"noSuchKey": 99,
		},
	})

	if !chain.LoadPreset("equalizer", "broken") {
		t.Fatal("expected best-effort preset application to succeed")
	}

	if got := def.Parameter("lowGain").Value; got != -6 {
		t.Fatalf("lowGain = %v, want -6", got)
	}
}

func TestSetChainOrderRejectsUnknownID(t *testing.T) {
	chain, _, _ := newTestChain(t)

	chain.Enable("equalizer")
	chain.Enable("compressor")

	before := chain.GetChainOrder()

	if chain.SetChainOrder([]string{"compressor", "missing"}) {
		t.Fatal("expected false for unknown id in order")
	}

	if got := chain.GetChainOrder(); !reflect.DeepEqual(got, before) {
		t.Fatalf("order changed on rejected call: %v", got)
	}
}

func TestSetChainOrderReordersLiveChain(t *testing.T) {
	chain, _, _ := newTestChain(t)

	chain.Enable("equalizer")
	chain.Enable("compressor")

	if !chain.SetChainOrder([]string{"compressor", "equalizer"}) {
		t.Fatal("SetChainOrder returned false")
	}

	ids, _ := chain.LiveUnits()
	if !reflect.DeepEqual(ids, []string{"compressor", "equalizer"}) {
		t.Fatalf("live order = %v", ids)
	}
}

func TestBypassBridgesEffect(t *testing.T) {
	chain, _, _ := newTestChain(t)

	chain.Enable("equalizer")
	chain.Enable("compressor")

	if !chain.Bypass("equalizer", true) {
		t.Fatal("Bypass returned false")
	}

	ids, total := chain.LiveUnits()
	if !reflect.DeepEqual(ids, []string{"compressor"}) {
		t.Fatalf("live effects while bypassed = %v", ids)
	}

	if total != 2 {
		t.Fatalf("live unit count while bypassed = %d, want 2", total)
	}

	chain.Bypass("equalizer", false)

	ids, _ = chain.LiveUnits()
	if !reflect.DeepEqual(ids, []string{"equalizer", "compressor"}) {
		t.Fatalf("live effects after un-bypass = %v", ids)
	}
}

func TestUnsupportedEffectTypeContributesNothing(t *testing.T) {
	chain, _, catalog := newTestChain(t)

	catalog.Register(&Definition{ID: "mystery", Name: "Mystery", Type: "granular"})

	chain.Enable("mystery")
	chain.Enable("compressor")

	ids, _ := chain.LiveUnits()
	if !reflect.DeepEqual(ids, []string{"compressor"}) {
		t.Fatalf("live effects = %v", ids)
	}
}

func TestChainPassesAudioThrough(t *testing.T) {
	chain, env, _ := newTestChain(t)

	src := env.NewGain(1)
	out := chain.ConnectSource(src)

	in := testutil.DeterministicSine(440, 44100, 0.5, 512)
	got := make([]float64, 512)
	env.RenderBlock(src, out, in, got)

	// Empty chain is a pass-through.
	testutil.RequireSliceNearlyEqual(t, got, in, 1e-12)
}

func TestChainProcessesEnabledEffect(t *testing.T) {
	chain, env, _ := newTestChain(t)

	src := env.NewGain(1)
	out := chain.ConnectSource(src)

	chain.Enable("distortion")
	chain.SetParameter("distortion", "type", 3) // fuzz
	chain.SetParameter("distortion", "level", 1)

	in := testutil.DeterministicSine(440, 44100, 0.5, 4096)
	got := make([]float64, 4096)
	env.RenderBlock(src, out, in, got)

	testutil.RequireFinite(t, got)

	// Fuzz drives the signal toward a square wave; output must differ
	// audibly from the input.
	var diff float64
	for i := range got {
		d := got[i] - in[i]
		diff += d * d
	}

	if diff < 1 {
		t.Fatalf("distortion left signal nearly unchanged (diff energy %v)", diff)
	}
}

func TestDisconnectReleasesUnits(t *testing.T) {
	chain, env, _ := newTestChain(t)

	src := env.NewGain(1)
	out := chain.ConnectSource(src)

	chain.Enable("equalizer")
	chain.Disconnect()

	in := testutil.DC(1, 64)
	got := make([]float64, 64)
	env.RenderBlock(src, out, in, got)

	testutil.RequireSliceNearlyEqual(t, got, make([]float64, 64), 1e-12)
}

func TestPerformanceMetrics(t *testing.T) {
	chain, _, _ := newTestChain(t)

	chain.Enable("equalizer")
	chain.Enable("reverb")

	m := chain.PerformanceMetrics()

	if m.Rebuilds < 2 {
		t.Fatalf("rebuilds = %d, want >= 2", m.Rebuilds)
	}

	if m.TotalUnits != 8 { // 3 eq + 5 reverb
		t.Fatalf("total units = %d, want 8", m.TotalUnits)
	}

	if len(m.Effects) != 2 || m.Effects[0].ID != "equalizer" || m.Effects[1].ID != "reverb" {
		t.Fatalf("per-effect metrics = %+v", m.Effects)
	}

	if m.TotalCPUUsage <= 0 || m.TotalLatency <= 0 {
		t.Fatalf("totals not aggregated: cpu %v latency %v", m.TotalCPUUsage, m.TotalLatency)
	}
}
