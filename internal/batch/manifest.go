package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest describes one batch run.
type Manifest struct {
	RunID    string          `json:"run_id"`
	Created  time.Time       `json:"created"`
	Rendered int             `json:"rendered"`
	Failed   int             `json:"failed"`
	Entries  []ManifestEntry `json:"entries"`
}

// ManifestEntry represents one rendered frame in the output manifest.
type ManifestEntry struct {
	Rig   string `json:"rig"`
	Frame string `json:"frame"`
	Image string `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewManifest summarizes results under a fresh run id.
func NewManifest(results []Result) Manifest {
	m := Manifest{
		RunID:   uuid.NewString(),
		Created: time.Now().UTC(),
		Entries: make([]ManifestEntry, len(results)),
	}
	for i, r := range results {
		m.Entries[i] = ManifestEntry{Rig: r.Rig, Frame: r.Frame, Image: r.Image, Error: r.Error}
		if r.Success {
			m.Rendered++
		} else {
			m.Failed++
		}
	}
	return m
}

// WriteManifest writes manifest.json to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
