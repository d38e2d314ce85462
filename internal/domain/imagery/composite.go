package imagery

import (
	"fmt"
	"math"
	"sort"
)

// BuildComposite filters scenes by cloud fraction and reduces the survivors to
// a per-pixel, per-band median. Median rather than mean: transient cloud and
// shadow outliers that slip past the mask should not drag the composite.
func BuildComposite(region Region, window DateWindow, scenes []Scene, maxCloudFraction float64) (*Composite, error) {
	var kept []Scene
	for _, sc := range scenes {
		if sc.CloudFraction <= maxCloudFraction {
			kept = append(kept, sc)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("region %s window %s: %w", region.ID, window.Key(), ErrDataUnavailable)
	}

	width, height := kept[0].Width, kept[0].Height
	bands := kept[0].Bands
	size := width * height
	for _, sc := range kept {
		if sc.Width != width || sc.Height != height {
			return nil, fmt.Errorf("scene %s grid is %dx%d, want %dx%d", sc.ID, sc.Width, sc.Height, width, height)
		}
	}

	comp := &Composite{
		RegionID:   region.ID,
		Window:     window,
		Width:      width,
		Height:     height,
		Bands:      bands,
		Pixels:     make(map[string][]float64, len(bands)),
		SceneCount: len(kept),
	}

	clearPx := make([]bool, size)
	samples := make([]float64, 0, len(kept))
	for _, band := range bands {
		grid := make([]float64, size)
		for i := 0; i < size; i++ {
			samples = samples[:0]
			for _, sc := range kept {
				px, ok := sc.Pixels[band]
				if !ok || i >= len(px) {
					continue
				}
				if !math.IsNaN(px[i]) {
					samples = append(samples, px[i])
				}
			}
			if len(samples) == 0 {
				grid[i] = math.NaN()
				continue
			}
			grid[i] = median(samples)
			clearPx[i] = true
		}
		comp.Pixels[band] = grid
	}

	clearCount := 0
	for _, ok := range clearPx {
		if ok {
			clearCount++
		}
	}
	if size > 0 {
		comp.CloudFreeFraction = float64(clearCount) / float64(size)
	}
	return comp, nil
}

// median mutates its argument by sorting it.
func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}
