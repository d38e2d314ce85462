package imagery

import (
	"fmt"
	"time"
)

// RegionID tipe untuk Region
type RegionID string

// BoundingBox is a lat/lon rectangle in WGS84.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Region is a named monitoring site. Immutable once defined; pipeline stages
// only ever read it.
type Region struct {
	ID      RegionID    `json:"id"`
	Name    string      `json:"name"`
	Bounds  BoundingBox `json:"bounds"`
	Species []string    `json:"species,omitempty"` // species of interest, hint for the model
}

// DateWindow is one observation period, inclusive of Start, exclusive of End.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Key returns a stable identifier for the window, usable in cache keys and DB rows.
func (w DateWindow) Key() string {
	return fmt.Sprintf("%s_%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// MonthlyWindows splits [start, end) into consecutive calendar-month windows.
func MonthlyWindows(start, end time.Time) []DateWindow {
	var out []DateWindow
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for cur.Before(end) {
		next := cur.AddDate(0, 1, 0)
		out = append(out, DateWindow{Start: cur, End: next})
		cur = next
	}
	return out
}

// Scene is a single acquisition returned by the imagery catalog. Pixel grids
// are row-major, one slice per band, all of length Width*Height. Cloud-masked
// pixels are NaN.
type Scene struct {
	ID            string
	AcquiredAt    time.Time
	CloudFraction float64 // 0..1
	Width         int
	Height        int
	Bands         []string
	Pixels        map[string][]float64
}

// Composite is a cloud-filtered median summary of one region over one window.
// Read-only after BuildComposite; discarded after feature extraction.
type Composite struct {
	RegionID          RegionID
	Window            DateWindow
	Width             int
	Height            int
	Bands             []string
	Pixels            map[string][]float64 // per-band per-pixel median
	CloudFreeFraction float64              // fraction of pixels with >=1 clear sample
	SceneCount        int
}
