package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/invasive-watch/internal/domain/analyses"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts or updates an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO inference_analyses
  (id, tenant_id, run_id, region_id, window_key, fingerprint, detected, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  tenant_id=EXCLUDED.tenant_id,
  run_id=EXCLUDED.run_id,
  region_id=EXCLUDED.region_id,
  window_key=EXCLUDED.window_key,
  fingerprint=EXCLUDED.fingerprint,
  detected=EXCLUDED.detected,
  result_json=EXCLUDED.result_json;
`
	tenant := stringOrDash(a.TenantID)
	region := stringOrDash(a.RegionID)
	result := a.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, a.ID, tenant, a.RunID, region, a.WindowKey, a.Fingerprint, a.Detected, result, createdAt)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, run_id, region_id, window_key, fingerprint, detected, result_json, created_at
FROM inference_analyses
WHERE tenant_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		var a domain.Analysis
		if err := rows.Scan(&a.ID, &a.TenantID, &a.RunID, &a.RegionID, &a.WindowKey, &a.Fingerprint, &a.Detected, &a.Result, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// LatestByRegion returns the latest analysis for a given region
func (r *AnalysisRepository) LatestByRegion(ctx context.Context, tenant string, regionID string) (*domain.Analysis, error) {
	const q = `
SELECT id, tenant_id, run_id, region_id, window_key, fingerprint, detected, result_json, created_at
FROM inference_analyses
WHERE tenant_id=$1 AND region_id=$2
ORDER BY created_at DESC, id DESC
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, regionID)
	var a domain.Analysis
	if err := row.Scan(&a.ID, &a.TenantID, &a.RunID, &a.RegionID, &a.WindowKey, &a.Fingerprint, &a.Detected, &a.Result, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
