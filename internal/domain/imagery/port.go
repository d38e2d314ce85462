package imagery

import "context"

// Catalog port (interface untuk imagery provider)
type Catalog interface {
	// SearchScenes returns every scene intersecting the region bounds inside
	// the window, regardless of cloud cover. Filtering is the builder's job.
	SearchScenes(ctx context.Context, region Region, window DateWindow) ([]Scene, error)
}
