package imagery

import (
	"errors"
	"math"
	"testing"
	"time"
)

func testWindow() DateWindow {
	return DateWindow{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testRegion() Region {
	return Region{
		ID:     "mangrove-east",
		Name:   "Mangrove East",
		Bounds: BoundingBox{MinLat: -6.2, MinLon: 106.8, MaxLat: -6.1, MaxLon: 106.9},
	}
}

func scene(id string, cloud float64, pixels map[string][]float64) Scene {
	bands := make([]string, 0, len(pixels))
	for b := range pixels {
		bands = append(bands, b)
	}
	width := 0
	for _, px := range pixels {
		width = len(px)
		break
	}
	return Scene{
		ID:            id,
		CloudFraction: cloud,
		Width:         width,
		Height:        1,
		Bands:         bands,
		Pixels:        pixels,
	}
}

func TestBuildCompositeMedian(t *testing.T) {
	t.Parallel()

	scenes := []Scene{
		scene("a", 0.0, map[string][]float64{"B8": {0.1, 0.4}}),
		scene("b", 0.1, map[string][]float64{"B8": {0.3, 0.6}}),
		scene("c", 0.1, map[string][]float64{"B8": {0.2, 0.8}}),
	}

	comp, err := BuildComposite(testRegion(), testWindow(), scenes, 0.2)
	if err != nil {
		t.Fatalf("BuildComposite: %v", err)
	}
	if comp.SceneCount != 3 {
		t.Errorf("SceneCount = %d, want 3", comp.SceneCount)
	}
	if got := comp.Pixels["B8"][0]; got != 0.2 {
		t.Errorf("pixel 0 median = %v, want 0.2", got)
	}
	if got := comp.Pixels["B8"][1]; got != 0.6 {
		t.Errorf("pixel 1 median = %v, want 0.6", got)
	}
	if comp.CloudFreeFraction != 1.0 {
		t.Errorf("CloudFreeFraction = %v, want 1.0", comp.CloudFreeFraction)
	}
}

func TestBuildCompositeFiltersCloudyScenes(t *testing.T) {
	t.Parallel()

	scenes := []Scene{
		scene("clear", 0.1, map[string][]float64{"B8": {0.5}}),
		scene("cloudy", 0.9, map[string][]float64{"B8": {99.0}}),
	}

	comp, err := BuildComposite(testRegion(), testWindow(), scenes, 0.2)
	if err != nil {
		t.Fatalf("BuildComposite: %v", err)
	}
	if comp.SceneCount != 1 {
		t.Errorf("SceneCount = %d, want 1", comp.SceneCount)
	}
	if got := comp.Pixels["B8"][0]; got != 0.5 {
		t.Errorf("median = %v, cloudy scene must not contribute", got)
	}
}

func TestBuildCompositeNoUsableScenes(t *testing.T) {
	t.Parallel()

	scenes := []Scene{
		scene("cloudy", 0.8, map[string][]float64{"B8": {0.5}}),
	}

	_, err := BuildComposite(testRegion(), testWindow(), scenes, 0.2)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}

	_, err = BuildComposite(testRegion(), testWindow(), nil, 0.2)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable for empty input", err)
	}
}

func TestBuildCompositeMaskedPixels(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	scenes := []Scene{
		scene("a", 0.1, map[string][]float64{"B8": {nan, 0.2}}),
		scene("b", 0.1, map[string][]float64{"B8": {0.4, nan}}),
		scene("c", 0.1, map[string][]float64{"B8": {nan, nan}}),
	}

	comp, err := BuildComposite(testRegion(), testWindow(), scenes, 0.2)
	if err != nil {
		t.Fatalf("BuildComposite: %v", err)
	}
	// masked samples are ignored per pixel, not per scene
	if got := comp.Pixels["B8"][0]; got != 0.4 {
		t.Errorf("pixel 0 = %v, want 0.4", got)
	}
	if got := comp.Pixels["B8"][1]; got != 0.2 {
		t.Errorf("pixel 1 = %v, want 0.2", got)
	}
}

func TestBuildCompositeAllMaskedPixelStaysNaN(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	scenes := []Scene{
		scene("a", 0.1, map[string][]float64{"B8": {nan, 0.3}}),
		scene("b", 0.1, map[string][]float64{"B8": {nan, 0.5}}),
	}

	comp, err := BuildComposite(testRegion(), testWindow(), scenes, 0.2)
	if err != nil {
		t.Fatalf("BuildComposite: %v", err)
	}
	if !math.IsNaN(comp.Pixels["B8"][0]) {
		t.Errorf("pixel with no clear sample must stay NaN, got %v", comp.Pixels["B8"][0])
	}
	if comp.CloudFreeFraction != 0.5 {
		t.Errorf("CloudFreeFraction = %v, want 0.5", comp.CloudFreeFraction)
	}
}

func TestBuildCompositeDimensionMismatch(t *testing.T) {
	t.Parallel()

	a := scene("a", 0.1, map[string][]float64{"B8": {0.1, 0.2}})
	b := scene("b", 0.1, map[string][]float64{"B8": {0.1, 0.2, 0.3}})

	if _, err := BuildComposite(testRegion(), testWindow(), []Scene{a, b}, 0.2); err == nil {
		t.Fatal("expected error for mismatched scene grids")
	}
}

func TestMonthlyWindows(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	windows := MonthlyWindows(start, end)
	if len(windows) != 3 {
		t.Fatalf("len = %d, want 3", len(windows))
	}
	for i := 1; i < len(windows); i++ {
		if !windows[i].Start.Equal(windows[i-1].End) {
			t.Errorf("window %d is not contiguous with its predecessor", i)
		}
	}
	if windows[0].Key() != "2025-01-01_2025-02-01" {
		t.Errorf("Key = %q", windows[0].Key())
	}
}
