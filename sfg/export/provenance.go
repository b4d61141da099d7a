package export

import (
	"time"

	"github.com/google/uuid"
)

// Provenance identifies the run that produced an exported spectrum.
type Provenance struct {
	Script      string
	W1          float64 // visible wavelength in nm
	RunID       string
	ProcessedAt time.Time
}

// NewProvenance stamps a fresh run id and the current UTC time.
func NewProvenance(script string, w1 float64) Provenance {
	return Provenance{
		Script:      script,
		W1:          w1,
		RunID:       uuid.New().String(),
		ProcessedAt: time.Now().UTC(),
	}
}

// fields returns the provenance as ordered key/value pairs for one source.
func (p Provenance) fields(source string) [][2]string {
	return [][2]string{
		{"source", source},
		{"script", p.Script},
		{"w1_wavelength", formatFloat(p.W1)},
		{"run_id", p.RunID},
		{"processed_at", p.ProcessedAt.Format(time.RFC3339)},
	}
}
