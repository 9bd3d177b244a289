package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/stemstation/audiocore/dsp/unit"
	"github.com/stemstation/audiocore/stats/frequency"
	timestats "github.com/stemstation/audiocore/stats/time"
)

// spectrogramCap bounds the spectrogram history FIFO.
const spectrogramCap = 200

// harmonicCount is how many harmonics are reported (fundamental x2..x8).
const harmonicCount = 7

// Engine samples an analyzer tap on a periodic clock and publishes
// metric snapshots. It produces nothing until a source is connected.
//
// All public methods are safe for concurrent use; analysis passes and
// reconfiguration serialize on one mutex, so no pass ever observes
// partial state.
type Engine struct {
	env unit.Environment

	mu       sync.Mutex
	settings Settings
	analyzer unit.Analyzer
	source   unit.Unit

	freqBytes  []byte
	timeBytes  []byte
	linear     []float64
	prevLinear []float64
	hasPrev    bool
	timeData   []float64

	peakHold    []float64
	spectrogram [][]float64

	latest    Snapshot
	hasLatest bool
	lastPass  time.Time

	subs    map[int]chan Snapshot
	nextSub int

	running bool
	ticker  *time.Ticker
	quit    chan struct{}
	loop    sync.WaitGroup
}

// NewEngine creates an engine with default settings. The analyzer unit is
// created lazily on the first ConnectSource or Configure call.
func NewEngine(env unit.Environment) *Engine {
	return &Engine{
		env:      env,
		settings: DefaultSettings(),
		subs:     make(map[int]chan Snapshot),
	}
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.settings
}

// Configure applies new settings. When FFTSize, the decibel range, or the
// window change, the analyzer unit and all size-dependent buffers are
// recreated; the run state is preserved either way, and a running ticker
// loop retunes immediately when the update rate changes.
func (e *Engine) Configure(s Settings) error {
	if err := s.validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rebuild := e.settings.needsRebuild(s) || e.analyzer == nil
	retune := e.running && e.settings.UpdateRate != s.UpdateRate

	e.settings = s

	if retune {
		e.ticker.Reset(s.tickInterval())
	}

	if !rebuild {
		if e.analyzer != nil {
			e.analyzer.SetSmoothing(s.SmoothingTimeConstant)
		}

		return nil
	}

	return e.rebuildAnalyzer()
}

// ConnectSource taps src into the engine's analyzer. The analyzer is
// created on first use.
func (e *Engine) ConnectSource(src unit.Unit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.source = src

	if e.analyzer == nil {
		if err := e.rebuildAnalyzer(); err != nil {
			e.source = nil

			return err
		}

		return nil
	}

	e.env.Connect(src, e.analyzer)

	return nil
}

// rebuildAnalyzer recreates the analyzer unit and the size-dependent
// buffers for the current settings. Caller holds the mutex.
func (e *Engine) rebuildAnalyzer() error {
	if e.analyzer != nil {
		e.env.Disconnect(e.analyzer)
	}

	analyzer, err := e.env.NewAnalyzer(unit.AnalyzerConfig{
		FFTSize:     e.settings.FFTSize,
		Smoothing:   e.settings.SmoothingTimeConstant,
		MinDecibels: e.settings.MinDecibels,
		MaxDecibels: e.settings.MaxDecibels,
		Window:      e.settings.Window,
	})
	if err != nil {
		return err
	}

	e.analyzer = analyzer

	if e.source != nil {
		e.env.Connect(e.source, e.analyzer)
	}

	bins := analyzer.BinCount()

	e.freqBytes = make([]byte, bins)
	e.timeBytes = make([]byte, analyzer.FFTSize())
	e.linear = make([]float64, bins)
	e.prevLinear = make([]float64, bins)
	e.hasPrev = false
	e.timeData = make([]float64, analyzer.FFTSize())
	e.peakHold = make([]float64, bins)
	e.spectrogram = nil

	return nil
}

// Run processes ticks from the given channel until ctx is done. Ticks
// arriving faster than the update rate are skipped, not queued.
func (e *Engine) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-ticks:
			if !ok {
				return
			}

			e.Tick(now)
		}
	}
}

// Tick runs one analysis pass if the throttle interval has elapsed.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.lastPass.IsZero() && now.Sub(e.lastPass) < e.settings.tickInterval() {
		return
	}

	e.lastPass = now
	e.pass(now)
}

// Start begins an internal ticker loop at the update rate. The peak-hold
// buffer resets on every restart. No-op when already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return
	}

	for i := range e.peakHold {
		e.peakHold[i] = 0
	}

	e.ticker = time.NewTicker(e.settings.tickInterval())
	e.quit = make(chan struct{})
	e.running = true

	e.loop.Add(1)

	go func(ticker *time.Ticker, quit chan struct{}) {
		defer e.loop.Done()

		for {
			select {
			case <-quit:
				return
			case now := <-ticker.C:
				e.Tick(now)
			}
		}
	}(e.ticker, e.quit)
}

// Stop cancels future ticks. A pass already in progress completes and
// publishes its snapshot before Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()

	if !e.running {
		e.mu.Unlock()

		return
	}

	e.ticker.Stop()
	close(e.quit)
	e.running = false
	e.mu.Unlock()

	e.loop.Wait()
}

// Running reports whether the internal ticker loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.running
}

// Latest returns the most recent snapshot, if any.
func (e *Engine) Latest() (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.latest, e.hasLatest
}

// Subscribe registers a snapshot channel. Publishes are non-blocking:
// a subscriber that falls behind misses snapshots rather than stalling
// the analysis loop. The returned function cancels the subscription.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++

	ch := make(chan Snapshot, 1)
	e.subs[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if _, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}

// PeakHold returns a copy of the peak-hold buffer.
func (e *Engine) PeakHold() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]float64(nil), e.peakHold...)
}

// SpectrogramLen returns the number of frames currently held.
func (e *Engine) SpectrogramLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.spectrogram)
}

// pass executes one analysis pass. Caller holds the mutex.
func (e *Engine) pass(now time.Time) {
	if e.analyzer == nil || e.source == nil {
		return
	}

	sr := e.env.SampleRate()

	e.analyzer.FrequencyBytes(e.freqBytes)
	e.analyzer.TimeBytes(e.timeBytes)

	frequency.FromBytes(e.linear, e.freqBytes)

	for i, b := range e.timeBytes {
		e.timeData[i] = (float64(b) - 128) / 128
	}

	snap := Snapshot{
		Timestamp:     now,
		FrequencyData: append([]byte(nil), e.freqBytes...),
		TimeData:      append([]byte(nil), e.timeBytes...),

		SpectralCentroid: frequency.Centroid(e.linear, sr),
		SpectralRolloff:  frequency.Rolloff(e.linear, sr, frequency.DefaultRolloffFraction),
	}

	if e.hasPrev {
		snap.SpectralFlux = frequency.Flux(e.linear, e.prevLinear)
	}

	ts := timestats.Calculate(e.timeData)
	snap.ZeroCrossingRate = ts.ZeroCrossingRate
	snap.RMS = ts.RMS
	snap.Peak = ts.Peak
	snap.DynamicRange = ts.DynamicRangeDB

	snap.FundamentalFreq = frequency.Fundamental(e.linear, sr)
	if e.settings.ShowHarmonics && snap.FundamentalFreq > 0 {
		snap.Harmonics = frequency.Harmonics(e.linear, sr, snap.FundamentalFreq, harmonicCount)
	}

	snap.NoiseLevel = frequency.NoiseFloor(e.linear)
	snap.TonalBalance = frequency.TonalBalance(e.linear, sr)

	e.average(&snap)

	if e.settings.PeakHold {
		for i, m := range e.linear {
			held := e.peakHold[i] * 0.95
			if m > held {
				held = m
			}

			e.peakHold[i] = held
		}
	}

	if e.settings.ShowSpectrogram {
		frame := append([]float64(nil), e.linear...)

		e.spectrogram = append(e.spectrogram, frame)
		if len(e.spectrogram) > spectrogramCap {
			e.spectrogram = e.spectrogram[1:]
		}
	}

	copy(e.prevLinear, e.linear)
	e.hasPrev = true

	e.latest = snap
	e.hasLatest = true

	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// average blends scalar metrics with the previous snapshot when the
// averaging setting is active.
func (e *Engine) average(snap *Snapshot) {
	a := e.settings.Averaging
	if a <= 0 || !e.hasLatest {
		return
	}

	blend := func(prev, cur float64) float64 {
		return a*prev + (1-a)*cur
	}

	snap.SpectralCentroid = blend(e.latest.SpectralCentroid, snap.SpectralCentroid)
	snap.SpectralRolloff = blend(e.latest.SpectralRolloff, snap.SpectralRolloff)
	snap.SpectralFlux = blend(e.latest.SpectralFlux, snap.SpectralFlux)
	snap.RMS = blend(e.latest.RMS, snap.RMS)
	snap.Peak = blend(e.latest.Peak, snap.Peak)
	snap.NoiseLevel = blend(e.latest.NoiseLevel, snap.NoiseLevel)
}
