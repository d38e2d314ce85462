package sentinel

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
)

func testRegion() imagery.Region {
	return imagery.Region{
		ID:     "delta-west",
		Bounds: imagery.BoundingBox{MinLat: -6.2, MinLon: 106.8, MaxLat: -6.1, MaxLon: 106.9},
	}
}

func testWindow() imagery.DateWindow {
	return imagery.DateWindow{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSearchScenes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scenes/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Collection != "sentinel-2-l2a" {
			t.Errorf("collection = %q", req.Collection)
		}
		// bbox order is lon-first
		if req.BBox[0] != 106.8 || req.BBox[1] != -6.2 {
			t.Errorf("bbox = %v", req.BBox)
		}

		json.NewEncoder(w).Encode(searchResponse{Scenes: []sceneDoc{
			{
				ID:            "S2A_20250305",
				AcquiredAt:    time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC),
				CloudFraction: 0.12,
				Width:         2,
				Height:        1,
				BandOrder:     []string{"B8", "B4"},
				Bands: map[string][]float64{
					"B8": {0.4, -9999},
					"B4": {0.1, 0.2},
				},
			},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "", []string{"B8", "B4"}, 5*time.Second)
	scenes, err := c.SearchScenes(context.Background(), testRegion(), testWindow())
	if err != nil {
		t.Fatalf("SearchScenes: %v", err)
	}
	if len(scenes) != 1 {
		t.Fatalf("scenes = %d, want 1", len(scenes))
	}
	sc := scenes[0]
	if sc.ID != "S2A_20250305" || sc.CloudFraction != 0.12 {
		t.Errorf("scene = %+v", sc)
	}
	if len(sc.Bands) != 2 || sc.Bands[0] != "B8" {
		t.Errorf("bands = %v", sc.Bands)
	}
	if !math.IsNaN(sc.Pixels["B8"][1]) {
		t.Errorf("sentinel-masked pixel must decode to NaN, got %v", sc.Pixels["B8"][1])
	}
	if sc.Pixels["B8"][0] != 0.4 {
		t.Errorf("pixel = %v", sc.Pixels["B8"][0])
	}
}

func TestSearchScenesProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", nil, 5*time.Second)
	if _, err := c.SearchScenes(context.Background(), testRegion(), testWindow()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestBandOrderFallsBackSorted(t *testing.T) {
	t.Parallel()

	doc := sceneDoc{Bands: map[string][]float64{"B8": nil, "B11": nil, "B4": nil}}
	got := bandOrder(doc)
	want := []string{"B11", "B4", "B8"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bandOrder = %v, want %v", got, want)
		}
	}
}
