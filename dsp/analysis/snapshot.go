package analysis

import (
	"time"

	"github.com/stemstation/audiocore/stats/frequency"
)

// Snapshot is one immutable analysis result, produced once per tick.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	FrequencyData []byte `json:"frequencyData"`
	TimeData      []byte `json:"timeData"`

	SpectralCentroid float64 `json:"spectralCentroid"`
	SpectralRolloff  float64 `json:"spectralRolloff"`
	SpectralFlux     float64 `json:"spectralFlux"`

	ZeroCrossingRate float64 `json:"zeroCrossingRate"`
	RMS              float64 `json:"rms"`
	Peak             float64 `json:"peak"`
	DynamicRange     float64 `json:"dynamicRange"`

	FundamentalFreq float64   `json:"fundamentalFreq"`
	Harmonics       []float64 `json:"harmonics,omitempty"`

	NoiseLevel   float64           `json:"noiseLevel"`
	TonalBalance frequency.Balance `json:"tonalBalance"`
}
