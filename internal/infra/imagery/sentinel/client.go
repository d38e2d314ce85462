package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
)

const DefaultCollection = "sentinel-2-l2a"

// Client talks to a scene-search service over HTTP. The pipeline only needs
// this one capability: scenes for a bbox and date range with named spectral
// bands, so any STAC-style backend can sit behind the endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	collection string
	bands      []string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey, collection string, bands []string, timeout time.Duration) *Client {
	if collection == "" {
		collection = DefaultCollection
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		collection: collection,
		bands:      bands,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Collection string    `json:"collection"`
	BBox       []float64 `json:"bbox"` // minLon, minLat, maxLon, maxLat
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Bands      []string  `json:"bands,omitempty"`
}

type sceneDoc struct {
	ID            string               `json:"id"`
	AcquiredAt    time.Time            `json:"acquired_at"`
	CloudFraction float64              `json:"cloud_fraction"`
	Width         int                  `json:"width"`
	Height        int                  `json:"height"`
	BandOrder     []string             `json:"band_order"`
	Bands         map[string][]float64 `json:"bands"`
}

type searchResponse struct {
	Scenes []sceneDoc `json:"scenes"`
}

// SearchScenes implements imagery.Catalog.
func (c *Client) SearchScenes(ctx context.Context, region imagery.Region, window imagery.DateWindow) ([]imagery.Scene, error) {
	reqBody := searchRequest{
		Collection: c.collection,
		BBox:       []float64{region.Bounds.MinLon, region.Bounds.MinLat, region.Bounds.MaxLon, region.Bounds.MaxLat},
		Start:      window.Start.Format(time.RFC3339),
		End:        window.End.Format(time.RFC3339),
		Bands:      c.bands,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scene search: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/scenes/search", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create scene search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scene search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagery provider returned status: %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode scene search response: %w", err)
	}

	scenes := make([]imagery.Scene, 0, len(sr.Scenes))
	for _, doc := range sr.Scenes {
		scenes = append(scenes, imagery.Scene{
			ID:            doc.ID,
			AcquiredAt:    doc.AcquiredAt,
			CloudFraction: doc.CloudFraction,
			Width:         doc.Width,
			Height:        doc.Height,
			Bands:         bandOrder(doc),
			Pixels:        maskNulls(doc.Bands),
		})
	}
	return scenes, nil
}

func bandOrder(doc sceneDoc) []string {
	if len(doc.BandOrder) > 0 {
		return doc.BandOrder
	}
	out := make([]string, 0, len(doc.Bands))
	for band := range doc.Bands {
		out = append(out, band)
	}
	sort.Strings(out)
	return out
}

// maskNulls keeps masked pixels as NaN. JSON null decodes to 0 through the
// float64 slice, so providers encode masked pixels as a sentinel instead.
func maskNulls(bands map[string][]float64) map[string][]float64 {
	for _, px := range bands {
		for i, v := range px {
			if v <= sentinelMasked {
				px[i] = math.NaN()
			}
		}
	}
	return bands
}

// reflectance is non-negative; anything at or below this marks a masked pixel
const sentinelMasked = -9999
