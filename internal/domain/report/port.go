package report

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, r *Run) error
	Get(ctx context.Context, tenant string, id RunID) (*Run, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Run, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (total, detected, skipped int, err error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Run, error)
}

// ArtifactStore port (interface untuk penyimpanan laporan)
type ArtifactStore interface {
	UploadJSON(ctx context.Context, key string, payload any) (string, error)
}
