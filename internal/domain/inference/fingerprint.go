package inference

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// NewFingerprint derives the cache key for a request from region identity,
// window and feature statistics. Deterministic: same input, same fingerprint.
func NewFingerprint(req Request) Fingerprint {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%s|", req.Region.ID, req.Window.Key())

	bands := append([]string(nil), req.Features.Bands...)
	sort.Strings(bands)
	for _, band := range bands {
		delta, hasDelta := req.Features.DeltaPct[band]
		fmt.Fprintf(&sb, "%s:%.6f:%.6f:%t:%.6f|",
			band, req.Features.Mean[band], req.Features.StdDev[band], hasDelta, delta)
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return Fingerprint(fmt.Sprintf("%x", sum))
}
