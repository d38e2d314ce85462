package features

import (
	"math"
	"testing"
	"time"

	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
)

func comp(month time.Month, pixels map[string][]float64) *imagery.Composite {
	bands := make([]string, 0, len(pixels))
	width := 0
	for b, px := range pixels {
		bands = append(bands, b)
		width = len(px)
	}
	start := time.Date(2025, month, 1, 0, 0, 0, 0, time.UTC)
	return &imagery.Composite{
		RegionID:          "mangrove-east",
		Window:            imagery.DateWindow{Start: start, End: start.AddDate(0, 1, 0)},
		Width:             width,
		Height:            1,
		Bands:             bands,
		Pixels:            pixels,
		CloudFreeFraction: 1,
		SceneCount:        2,
	}
}

func TestExtractLengthAndFirstDelta(t *testing.T) {
	t.Parallel()

	in := []*imagery.Composite{
		comp(time.January, map[string][]float64{"B8": {0.2, 0.4}}),
		comp(time.February, map[string][]float64{"B8": {0.3, 0.5}}),
		comp(time.March, map[string][]float64{"B8": {0.1, 0.2}}),
	}

	out := Extract(in)
	if len(out) != len(in) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(in))
	}
	if out[0].DeltaPct != nil {
		t.Errorf("first period DeltaPct = %v, want nil", out[0].DeltaPct)
	}
	for i := 1; i < len(out); i++ {
		if out[i].DeltaPct == nil {
			t.Errorf("period %d DeltaPct is nil", i)
		}
	}
}

func TestExtractEmptyInput(t *testing.T) {
	t.Parallel()

	out := Extract(nil)
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0", len(out))
	}
}

func TestExtractDeltaFiftyPercentRise(t *testing.T) {
	t.Parallel()

	in := []*imagery.Composite{
		comp(time.January, map[string][]float64{"B8": {0.2, 0.2}}),
		comp(time.February, map[string][]float64{"B8": {0.3, 0.3}}),
	}

	out := Extract(in)
	got := out[1].DeltaPct["B8"]
	if math.Abs(got-50.0) > 1e-9 {
		t.Errorf("DeltaPct[B8] = %v, want 50.0", got)
	}
}

func TestExtractDeltaAgainstZeroPrior(t *testing.T) {
	t.Parallel()

	in := []*imagery.Composite{
		comp(time.January, map[string][]float64{"B8": {0.0, 0.0}}),
		comp(time.February, map[string][]float64{"B8": {0.3, 0.3}}),
	}

	out := Extract(in)
	if got := out[1].DeltaPct["B8"]; got != 0 {
		t.Errorf("DeltaPct against zero prior = %v, want 0", got)
	}
}

func TestExtractStats(t *testing.T) {
	t.Parallel()

	in := []*imagery.Composite{
		comp(time.January, map[string][]float64{"B8": {0.1, 0.2, 0.3, 0.4}}),
	}

	out := Extract(in)
	v := out[0]
	if math.Abs(v.Mean["B8"]-0.25) > 1e-9 {
		t.Errorf("Mean = %v, want 0.25", v.Mean["B8"])
	}
	wantStd := math.Sqrt((0.15*0.15 + 0.05*0.05 + 0.05*0.05 + 0.15*0.15) / 4)
	if math.Abs(v.StdDev["B8"]-wantStd) > 1e-9 {
		t.Errorf("StdDev = %v, want %v", v.StdDev["B8"], wantStd)
	}
	if v.P10["B8"] >= v.P90["B8"] {
		t.Errorf("P10 %v must be below P90 %v", v.P10["B8"], v.P90["B8"])
	}
}

func TestExtractIgnoresMaskedPixels(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	in := []*imagery.Composite{
		comp(time.January, map[string][]float64{"B8": {nan, 0.2, nan, 0.4}}),
	}

	out := Extract(in)
	if got := out[0].Mean["B8"]; math.Abs(got-0.3) > 1e-9 {
		t.Errorf("Mean = %v, want 0.3 (NaN pixels excluded)", got)
	}
}

func TestExtractNDVI(t *testing.T) {
	t.Parallel()

	in := []*imagery.Composite{
		comp(time.January, map[string][]float64{
			"B8": {0.6, 0.6},
			"B4": {0.2, 0.2},
		}),
	}

	out := Extract(in)
	want := (0.6 - 0.2) / (0.6 + 0.2)
	if math.Abs(out[0].NDVI-want) > 1e-9 {
		t.Errorf("NDVI = %v, want %v", out[0].NDVI, want)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	t.Parallel()

	in := []*imagery.Composite{
		comp(time.January, map[string][]float64{"B8": {0.2, 0.4}}),
		comp(time.February, map[string][]float64{"B8": {0.3, 0.5}}),
	}

	a := Extract(in)
	b := Extract(in)
	if a[1].DeltaPct["B8"] != b[1].DeltaPct["B8"] {
		t.Error("repeated extraction over the same input must agree")
	}
	if a[0].Mean["B8"] != b[0].Mean["B8"] {
		t.Error("repeated extraction over the same input must agree")
	}
}
