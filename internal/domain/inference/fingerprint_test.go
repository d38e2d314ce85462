package inference

import (
	"testing"
	"time"

	"github.com/bryanwahyu/invasive-watch/internal/domain/features"
	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
)

func fingerprintRequest() Request {
	window := imagery.DateWindow{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	return Request{
		Region: imagery.Region{ID: "delta-west", Name: "Delta West"},
		Window: window,
		Features: features.Vector{
			RegionID: "delta-west",
			Window:   window,
			Bands:    []string{"B8", "B4"},
			Mean:     map[string]float64{"B8": 0.41, "B4": 0.12},
			StdDev:   map[string]float64{"B8": 0.05, "B4": 0.02},
			DeltaPct: map[string]float64{"B8": 54.2, "B4": -3.1},
		},
	}
}

func TestNewFingerprintDeterministic(t *testing.T) {
	t.Parallel()

	a := NewFingerprint(fingerprintRequest())
	b := NewFingerprint(fingerprintRequest())
	if a != b {
		t.Fatalf("fingerprints differ for identical requests: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestNewFingerprintBandOrderIndependent(t *testing.T) {
	t.Parallel()

	req := fingerprintRequest()
	swapped := fingerprintRequest()
	swapped.Features.Bands = []string{"B4", "B8"}

	if NewFingerprint(req) != NewFingerprint(swapped) {
		t.Error("band declaration order must not change the fingerprint")
	}
}

func TestNewFingerprintSensitivity(t *testing.T) {
	t.Parallel()

	base := NewFingerprint(fingerprintRequest())

	other := fingerprintRequest()
	other.Features.Mean["B8"] = 0.42
	if NewFingerprint(other) == base {
		t.Error("changed band mean must change the fingerprint")
	}

	other = fingerprintRequest()
	other.Window.Start = other.Window.Start.AddDate(0, 1, 0)
	other.Window.End = other.Window.End.AddDate(0, 1, 0)
	if NewFingerprint(other) == base {
		t.Error("changed window must change the fingerprint")
	}

	other = fingerprintRequest()
	other.Region.ID = "delta-east"
	if NewFingerprint(other) == base {
		t.Error("changed region must change the fingerprint")
	}
}

func TestNewFingerprintNilDelta(t *testing.T) {
	t.Parallel()

	withDelta := fingerprintRequest()

	noDelta := fingerprintRequest()
	noDelta.Features.DeltaPct = nil

	if NewFingerprint(withDelta) == NewFingerprint(noDelta) {
		t.Error("a first period without deltas must not collide with a later one")
	}

	// nil delta map must not panic
	_ = NewFingerprint(noDelta)
}
