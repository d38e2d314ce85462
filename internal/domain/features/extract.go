package features

import (
	"math"
	"sort"

	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
)

// Extract computes per-period band statistics for an ordered sequence of
// composites, plus month-over-month deltas relative to the immediately
// preceding element. Pure function: no network, no disk, deterministic.
// len(out) == len(in) always; out[0].DeltaPct is nil.
func Extract(composites []*imagery.Composite) []Vector {
	out := make([]Vector, 0, len(composites))
	for idx, comp := range composites {
		v := Vector{
			RegionID:          comp.RegionID,
			Window:            comp.Window,
			Bands:             comp.Bands,
			Mean:              make(map[string]float64, len(comp.Bands)),
			StdDev:            make(map[string]float64, len(comp.Bands)),
			P10:               make(map[string]float64, len(comp.Bands)),
			P90:               make(map[string]float64, len(comp.Bands)),
			SceneCount:        comp.SceneCount,
			CloudFreeFraction: comp.CloudFreeFraction,
		}

		for _, band := range comp.Bands {
			mean, std, p10, p90 := bandStats(comp.Pixels[band])
			v.Mean[band] = mean
			v.StdDev[band] = std
			v.P10[band] = p10
			v.P90[band] = p90
		}

		// NDVI = (NIR - Red) / (NIR + Red) from the band means
		nir, okNIR := v.Mean["B8"]
		red, okRed := v.Mean["B4"]
		if okNIR && okRed && nir+red != 0 {
			v.NDVI = (nir - red) / (nir + red)
		}

		if idx > 0 {
			prev := out[idx-1]
			v.DeltaPct = make(map[string]float64, len(comp.Bands))
			for _, band := range comp.Bands {
				pm := prev.Mean[band]
				if pm == 0 {
					v.DeltaPct[band] = 0
					continue
				}
				v.DeltaPct[band] = (v.Mean[band] - pm) / pm * 100
			}
		}

		out = append(out, v)
	}
	return out
}

// bandStats ignores NaN pixels (cloud-masked holes in the composite).
func bandStats(grid []float64) (mean, std, p10, p90 float64) {
	valid := make([]float64, 0, len(grid))
	for _, px := range grid {
		if !math.IsNaN(px) {
			valid = append(valid, px)
		}
	}
	n := float64(len(valid))
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, px := range valid {
		sum += px
	}
	mean = sum / n

	var sq float64
	for _, px := range valid {
		d := px - mean
		sq += d * d
	}
	std = math.Sqrt(sq / n)

	sort.Float64s(valid)
	p10 = percentile(valid, 0.10)
	p90 = percentile(valid, 0.90)
	return mean, std, p10, p90
}

// percentile expects sorted input; nearest-rank with linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
