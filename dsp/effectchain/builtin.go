package effectchain

import "github.com/stemstation/audiocore/dsp/param"

// Built-in effect type names.
const (
	TypeEqualizer  = "equalizer"
	TypeCompressor = "compressor"
	TypeReverb     = "reverb"
	TypeDelay      = "delay"
	TypeChorus     = "chorus"
	TypeDistortion = "distortion"
)

// DefaultRegistry returns a Registry pre-populated with the six built-in
// effect processors.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(TypeEqualizer, NewEqualizerProcessor)
	r.MustRegister(TypeCompressor, NewCompressorProcessor)
	r.MustRegister(TypeReverb, NewReverbProcessor)
	r.MustRegister(TypeDelay, NewDelayProcessor)
	r.MustRegister(TypeChorus, NewChorusProcessor)
	r.MustRegister(TypeDistortion, NewDistortionProcessor)

	return r
}

// Builtins returns fresh definitions for the six built-in effects, each
// with its parameter set and named presets. Call once per engine
// instance; definitions are mutable state owned by the catalog.
func Builtins() []*Definition {
	return []*Definition{
		equalizerDefinition(),
		compressorDefinition(),
		reverbDefinition(),
		delayDefinition(),
		chorusDefinition(),
		distortionDefinition(),
	}
}

// RegisterBuiltins registers all built-in definitions into the catalog.
func RegisterBuiltins(c *Catalog) {
	for _, def := range Builtins() {
		c.Register(def)
	}
}

func equalizerDefinition() *Definition {
	return &Definition{
		ID:       "equalizer",
		Name:     "Equalizer",
		Type:     TypeEqualizer,
		Category: CategoryEQ,
		Parameters: []*param.Parameter{
			param.New("lowGain", "Low Gain", 0, -12, 12).WithUnit("dB").WithStep(0.1),
			param.New("lowFreq", "Low Frequency", 100, 20, 500).WithUnit("Hz").WithCurve(param.CurveLogarithmic),
			param.New("lowQ", "Low Q", 1, 0.1, 10),
			param.New("midGain", "Mid Gain", 0, -12, 12).WithUnit("dB").WithStep(0.1),
			param.New("midFreq", "Mid Frequency", 1000, 200, 5000).WithUnit("Hz").WithCurve(param.CurveLogarithmic),
			param.New("midQ", "Mid Q", 1, 0.1, 10),
			param.New("highGain", "High Gain", 0, -12, 12).WithUnit("dB").WithStep(0.1),
			param.New("highFreq", "High Frequency", 10000, 2000, 20000).WithUnit("Hz").WithCurve(param.CurveLogarithmic),
			param.New("highQ", "High Q", 1, 0.1, 10),
		},
		Presets: []param.Preset{
			{
				ID:     "flat",
				Name:   "Flat",
				Values: map[string]float64{"lowGain": 0, "midGain": 0, "highGain": 0},
				Tags:   []string{"neutral"},
			},
			{
				ID:          "loudness",
				Name:        "Loudness",
				Description: "Smile curve for low-level listening",
				Values:      map[string]float64{"lowGain": 6, "midGain": -2, "highGain": 4},
				Tags:        []string{"tone"},
			},
		},
		CPUUsage: 0.5,
	}
}

func compressorDefinition() *Definition {
	return &Definition{
		ID:       "compressor",
		Name:     "Compressor",
		Type:     TypeCompressor,
		Category: CategoryDynamics,
		Parameters: []*param.Parameter{
			param.New("threshold", "Threshold", -24, -60, 0).WithUnit("dB"),
			param.New("ratio", "Ratio", 4, 1, 20),
			param.New("attack", "Attack", 10, 0.1, 100).WithUnit("ms").WithCurve(param.CurveExponential),
			param.New("release", "Release", 250, 10, 1000).WithUnit("ms").WithCurve(param.CurveExponential),
			param.New("knee", "Knee", 30, 0, 40).WithUnit("dB"),
			param.New("makeup", "Makeup Gain", 0, 0, 24).WithUnit("dB"),
		},
		Presets: []param.Preset{
			{
				ID:     "gentle",
				Name:   "Gentle",
				Values: map[string]float64{"threshold": -18, "ratio": 2, "attack": 20, "release": 250, "makeup": 2},
				Tags:   []string{"bus"},
			},
			{
				ID:          "slam",
				Name:        "Slam",
				Description: "Aggressive leveling",
				Values:      map[string]float64{"threshold": -30, "ratio": 10, "attack": 1, "release": 100, "makeup": 6},
				Tags:        []string{"drums"},
			},
		},
		CPUUsage: 0.8,
	}
}

func reverbDefinition() *Definition {
	return &Definition{
		ID:       "reverb",
		Name:     "Reverb",
		Type:     TypeReverb,
		Category: CategorySpatial,
		Parameters: []*param.Parameter{
			param.New("roomSize", "Room Size", 0.5, 0, 1),
			param.New("damping", "Damping", 0.5, 0, 1),
			param.New("wetLevel", "Wet Level", 0.3, 0, 1),
			param.New("dryLevel", "Dry Level", 0.7, 0, 1),
		},
		Presets: []param.Preset{
			{
				ID:     "room",
				Name:   "Room",
				Values: map[string]float64{"roomSize": 0.3, "damping": 0.6, "wetLevel": 0.25},
				Tags:   []string{"space"},
			},
			{
				ID:          "hall",
				Name:        "Hall",
				Description: "Long, dark tail",
				Values:      map[string]float64{"roomSize": 0.85, "damping": 0.3, "wetLevel": 0.4},
				Tags:        []string{"space"},
			},
		},
		CPUUsage: 5,
		Latency:  4096.0 / 44100,
	}
}

func delayDefinition() *Definition {
	return &Definition{
		ID:       "delay",
		Name:     "Delay",
		Type:     TypeDelay,
		Category: CategoryModulation,
		Parameters: []*param.Parameter{
			param.New("delayTime", "Delay Time", 250, 1, 2000).WithUnit("ms").WithCurve(param.CurveLogarithmic),
			param.New("feedback", "Feedback", 0.4, 0, 0.95),
			param.New("mix", "Mix", 0.3, 0, 1),
			param.New("highCut", "High Cut", 8000, 200, 20000).WithUnit("Hz").WithCurve(param.CurveLogarithmic),
			param.New("lowCut", "Low Cut", 100, 20, 2000).WithUnit("Hz").WithCurve(param.CurveLogarithmic),
		},
		Presets: []param.Preset{
			{
				ID:     "slapback",
				Name:   "Slapback",
				Values: map[string]float64{"delayTime": 110, "feedback": 0.15, "mix": 0.25},
				Tags:   []string{"vocal"},
			},
			{
				ID:          "dub",
				Name:        "Dub",
				Description: "Regenerating filtered echoes",
				Values:      map[string]float64{"delayTime": 420, "feedback": 0.65, "mix": 0.45, "highCut": 3500},
				Tags:        []string{"fx"},
			},
		},
		CPUUsage: 0.6,
	}
}

func chorusDefinition() *Definition {
	return &Definition{
		ID:       "chorus",
		Name:     "Chorus",
		Type:     TypeChorus,
		Category: CategoryModulation,
		Parameters: []*param.Parameter{
			param.New("rate", "Rate", 1.5, 0.1, 10).WithUnit("Hz").WithCurve(param.CurveLogarithmic),
			param.New("depth", "Depth", 0.5, 0, 1),
			param.New("delayMs", "Base Delay", 20, 5, 50).WithUnit("ms"),
			param.New("voices", "Voices", 3, 1, 4).WithStep(1),
			param.New("wetLevel", "Wet Level", 0.5, 0, 1),
		},
		Presets: []param.Preset{
			{
				ID:     "subtle",
				Name:   "Subtle",
				Values: map[string]float64{"rate": 0.8, "depth": 0.25, "voices": 2, "wetLevel": 0.3},
				Tags:   []string{"clean"},
			},
			{
				ID:          "lush",
				Name:        "Lush",
				Description: "Wide four-voice ensemble",
				Values:      map[string]float64{"rate": 1.2, "depth": 0.7, "voices": 4, "wetLevel": 0.6},
				Tags:        []string{"wide"},
			},
		},
		CPUUsage: 1.5,
	}
}

func distortionDefinition() *Definition {
	return &Definition{
		ID:       "distortion",
		Name:     "Distortion",
		Type:     TypeDistortion,
		Category: CategoryDistortion,
		Parameters: []*param.Parameter{
			param.New("drive", "Drive", 10, 0, 40).WithUnit("dB"),
			param.New("type", "Curve Type", 0, 0, 3).WithStep(1),
			param.New("tone", "Tone", 0.5, 0, 1),
			param.New("level", "Output Level", 0.8, 0, 1),
		},
		Presets: []param.Preset{
			{
				ID:     "warm",
				Name:   "Warm",
				Values: map[string]float64{"drive": 8, "type": 0, "tone": 0.4},
				Tags:   []string{"saturation"},
			},
			{
				ID:          "fuzz",
				Name:        "Fuzz",
				Description: "Square-law fuzz with tamed output",
				Values:      map[string]float64{"drive": 30, "type": 3, "tone": 0.7, "level": 0.5},
				Tags:        []string{"extreme"},
			},
		},
		CPUUsage: 0.7,
	}
}
