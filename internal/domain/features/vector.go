package features

import (
	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
)

// Vector holds per-period aggregate spectral statistics for one region.
// Band order is fixed and identical across periods for a region so deltas can
// be computed band by band.
type Vector struct {
	RegionID imagery.RegionID   `json:"region_id"`
	Window   imagery.DateWindow `json:"window"`
	Bands    []string           `json:"bands"`

	Mean   map[string]float64 `json:"mean"`
	StdDev map[string]float64 `json:"std_dev"`
	P10    map[string]float64 `json:"p10"`
	P90    map[string]float64 `json:"p90"`

	// NDVI derived from mean B8/B4 reflectance; 0 when those bands are absent.
	NDVI float64 `json:"ndvi"`

	// DeltaPct is the signed percentage change of the band mean versus the
	// immediately preceding period. Nil for the first period (no prior).
	DeltaPct map[string]float64 `json:"delta_pct,omitempty"`

	SceneCount        int     `json:"scene_count"`
	CloudFreeFraction float64 `json:"cloud_free_fraction"`
}
