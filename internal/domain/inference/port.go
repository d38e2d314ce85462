package inference

import "context"

// Analyzer port (interface untuk reasoning model). Returns the raw model
// output; parsing and validation happen at the gateway boundary.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (string, error)
}
