package analysis

import "encoding/json"

// exportDocument is the serialized form of the engine state: current
// settings, the latest snapshot, and the recent spectrogram history.
type exportDocument struct {
	Settings    Settings    `json:"settings"`
	Snapshot    *Snapshot   `json:"snapshot,omitempty"`
	Spectrogram [][]float64 `json:"spectrogram,omitempty"`
}

// ExportJSON serializes the latest snapshot plus settings and spectrogram
// history. The document layout is for external consumers (dashboards,
// debugging), not a stability contract.
func (e *Engine) ExportJSON() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := exportDocument{Settings: e.settings}

	if e.hasLatest {
		snap := e.latest
		doc.Snapshot = &snap
	}

	if len(e.spectrogram) > 0 {
		doc.Spectrogram = make([][]float64, len(e.spectrogram))
		for i, frame := range e.spectrogram {
			doc.Spectrogram[i] = append([]float64(nil), frame...)
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}
