package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/invasive-watch/internal/domain/inference"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a remote-sensing ecologist specialized in detecting invasive plant species from multispectral satellite statistics. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- invasive_detected is a boolean, true only when the spectral evidence supports an invasive outbreak.
- Each species entry has a confidence between 0 and 100.
- rationale explains the spectral reasoning in plain language; keep it concise.
- recommended_actions is an array of short, concrete field actions; may be empty.

Schema (example with empty values):
{
  "invasive_detected": false,
  "species": [
    {"name": "<string>", "confidence": 0}
  ],
  "rationale": "<string>",
  "recommended_actions": ["<string>"]
}`
}

// payload is the bounded statistics block embedded in the user prompt. Only
// aggregate statistics, never pixel grids: prompt size stays flat no matter
// the raster resolution.
type payload struct {
	Region            string             `json:"region"`
	Window            string             `json:"window"`
	Bands             []string           `json:"bands"`
	Mean              map[string]float64 `json:"mean"`
	StdDev            map[string]float64 `json:"std_dev"`
	P10               map[string]float64 `json:"p10"`
	P90               map[string]float64 `json:"p90"`
	NDVI              float64            `json:"ndvi"`
	DeltaPct          map[string]float64 `json:"delta_pct_vs_prior,omitempty"`
	SceneCount        int                `json:"scene_count"`
	CloudFreeFraction float64            `json:"cloud_free_fraction"`
}

// GetUserPrompt builds a compact user message around one period's statistics.
func GetUserPrompt(req inference.Request) string {
	p := payload{
		Region:            fmt.Sprintf("%s (%s)", req.Region.Name, req.Region.ID),
		Window:            req.Window.Key(),
		Bands:             req.Features.Bands,
		Mean:              req.Features.Mean,
		StdDev:            req.Features.StdDev,
		P10:               req.Features.P10,
		P90:               req.Features.P90,
		NDVI:              req.Features.NDVI,
		DeltaPct:          req.Features.DeltaPct,
		SceneCount:        req.Features.SceneCount,
		CloudFreeFraction: req.Features.CloudFreeFraction,
	}
	stats, err := json.Marshal(p)
	if err != nil {
		stats = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("Analyze this cloud-filtered median composite of Sentinel-2 surface reflectance for invasive plant species. ")
	sb.WriteString("delta_pct_vs_prior is the signed percentage change per band versus the immediately preceding period; it is absent for the first period.\n")
	if len(req.Region.Species) > 0 {
		fmt.Fprintf(&sb, "Species of particular interest: %s\n", strings.Join(req.Region.Species, ", "))
	}
	sb.WriteString("Statistics:\n")
	sb.Write(stats)
	sb.WriteString("\nRespond with the JSON per schema.")
	return sb.String()
}
