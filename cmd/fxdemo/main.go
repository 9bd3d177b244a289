// Command fxdemo synthesizes a test tone, runs it through a configurable
// effects chain, and prints spectral analysis snapshots. With -play the
// processed audio streams to the default output device.
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/stemstation/audiocore/dsp/analysis"
	"github.com/stemstation/audiocore/dsp/effectchain"
	"github.com/stemstation/audiocore/dsp/unit"
	"github.com/stemstation/audiocore/dsp/unit/softunit"
)

const blockSize = 2048

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "processing sample rate")
		freq       = flag.Float64("freq", 220, "test tone frequency in Hz")
		seconds    = flag.Float64("seconds", 3, "signal duration")
		chainSpec  = flag.String("chain", "distortion,delay", "comma-separated effect ids to enable")
		presetSpec = flag.String("preset", "", "preset to load, as effectID:presetID")
		play       = flag.Bool("play", false, "stream the processed audio to the output device")
		export     = flag.String("export", "", "write the final analysis document to this file")
	)
	flag.Parse()

	env, err := softunit.NewEnvironment(float64(*sampleRate))
	if err != nil {
		log.Fatal(err)
	}

	catalog := effectchain.NewCatalog()
	effectchain.RegisterBuiltins(catalog)

	chain := effectchain.New(env, catalog, effectchain.DefaultRegistry())

	for _, id := range strings.Split(*chainSpec, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		if !chain.Enable(id) {
			log.Fatalf("unknown effect %q", id)
		}
	}

	if *presetSpec != "" {
		effectID, presetID, ok := strings.Cut(*presetSpec, ":")
		if !ok || !chain.LoadPreset(effectID, presetID) {
			log.Fatalf("unknown preset %q", *presetSpec)
		}
	}

	src := env.NewGain(1)
	out := chain.ConnectSource(src)

	engine := analysis.NewEngine(env)
	if err := engine.ConnectSource(out); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("chain: %s\n", strings.Join(chain.GetChainOrder(), " -> "))

	processed := renderTone(env, src, out, engine, *freq, *seconds, float64(*sampleRate))

	if snap, ok := engine.Latest(); ok {
		printSnapshot(snap)
	}

	metrics := chain.PerformanceMetrics()
	fmt.Printf("live units: %d, rebuilds: %d, est. cpu: %.1f%%\n",
		metrics.TotalUnits, metrics.Rebuilds, metrics.TotalCPUUsage)

	if *export != "" {
		doc, err := engine.ExportJSON()
		if err != nil {
			log.Fatal(err)
		}

		if err := os.WriteFile(*export, doc, 0o644); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("analysis written to %s\n", *export)
	}

	if *play {
		if err := playSamples(processed, *sampleRate); err != nil {
			log.Fatal(err)
		}
	}
}

// renderTone drives a sine through the chain block by block, ticking the
// analysis engine once per block, and returns the processed samples.
func renderTone(
	env *softunit.Environment,
	src, out unit.Unit,
	engine *analysis.Engine,
	freq, seconds, sampleRate float64,
) []float64 {
	total := int(seconds * sampleRate)
	processed := make([]float64, 0, total)

	in := make([]float64, blockSize)
	block := make([]float64, blockSize)

	phase := 0.0
	step := 2 * math.Pi * freq / sampleRate

	for rendered := 0; rendered < total; rendered += blockSize {
		for i := range in {
			in[i] = 0.5 * math.Sin(phase)
			phase += step
		}

		env.RenderBlock(src, out, in, block)
		processed = append(processed, block...)

		engine.Tick(time.Now())
	}

	return processed
}

func printSnapshot(snap analysis.Snapshot) {
	fmt.Printf("centroid: %.0f Hz  rolloff: %.0f Hz  flux: %.4f\n",
		snap.SpectralCentroid, snap.SpectralRolloff, snap.SpectralFlux)
	fmt.Printf("rms: %.3f  peak: %.3f  dynamic range: %.1f dB  zcr: %.4f\n",
		snap.RMS, snap.Peak, snap.DynamicRange, snap.ZeroCrossingRate)
	fmt.Printf("fundamental: %.0f Hz  harmonics: %d  noise floor: %.5f\n",
		snap.FundamentalFreq, len(snap.Harmonics), snap.NoiseLevel)
	fmt.Printf("balance: bass %.2f  mid %.2f  treble %.2f\n",
		snap.TonalBalance.Bass, snap.TonalBalance.Midrange, snap.TonalBalance.Treble)
}

// playSamples streams the processed buffer through the default output.
func playSamples(samples []float64, sampleRate int) error {
	pcm := make([]byte, len(samples)*4)
	for i, v := range samples {
		bits := math.Float32bits(float32(v))
		binary.LittleEndian.PutUint32(pcm[i*4:], bits)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("audio context: %w", err)
	}

	<-ready

	player := ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	return player.Close()
}
