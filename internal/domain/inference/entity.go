package inference

import (
	"time"

	"github.com/bryanwahyu/invasive-watch/internal/domain/features"
	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
)

// Fingerprint identifies one inference input. Identical fingerprint is always
// treated as an identical request; it is the cache key.
type Fingerprint string

// Request carries everything the reasoning model needs for one period. Never
// the raw pixel grids: prompt size stays independent of raster resolution.
type Request struct {
	Region   imagery.Region
	Window   imagery.DateWindow
	Features features.Vector
}

// SpeciesCandidate is one species named by the model with its confidence.
// Confidence is an opaque model output in [0,100]; validated, never computed here.
type SpeciesCandidate struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Result is the validated, structured model output for one period.
type Result struct {
	Detected           bool               `json:"detected"`
	Species            []SpeciesCandidate `json:"species,omitempty"`
	Rationale          string             `json:"rationale"`
	RecommendedActions []string           `json:"recommended_actions,omitempty"`
	AnalyzedAt         time.Time          `json:"analyzed_at"`
}
