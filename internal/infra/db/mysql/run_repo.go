package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/invasive-watch/internal/domain/report"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save insert/update SurveyRun record
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	const q = `
INSERT INTO survey_runs
(id, tenant_id, triggered_at, regions, windows, status,
 analyzed, detected, skipped, periods_total,
 model, artifact_url, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 analyzed=VALUES(analyzed), detected=VALUES(detected), skipped=VALUES(skipped),
 periods_total=VALUES(periods_total),
 model=VALUES(model), artifact_url=VALUES(artifact_url), duration_ms=VALUES(duration_ms);
`
	// Ensure non-nullable string fields have safe defaults
	tenant := stringOrDash(run.TenantID)
	status := stringOrDash(string(run.Status))
	triggered := run.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		run.ID, tenant, triggered, run.Regions, run.Windows, status,
		run.Counts.Analyzed, run.Counts.Detected, run.Counts.Skipped, run.Counts.Total,
		run.Model, run.ArtifactURL, run.DurationMS,
	)
	return err
}

// Get by ID + Tenant
func (r *RunRepository) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Run, error) {
	const q = `
SELECT id, tenant_id, triggered_at, regions, windows, status,
       analyzed, detected, skipped, periods_total,
       model, artifact_url, duration_ms
FROM survey_runs
WHERE tenant_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	return scanRun(row.Scan)
}

// Latest runs per tenant
func (r *RunRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, triggered_at, regions, windows, status,
       analyzed, detected, skipped, periods_total,
       model, artifact_url, duration_ms
FROM survey_runs
WHERE tenant_id=? ORDER BY triggered_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRuns(rows)
}

// Paginate run history ordered by triggered_at desc
func (r *RunRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Run, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, triggered_at, regions, windows, status,
       analyzed, detected, skipped, periods_total,
       model, artifact_url, duration_ms
FROM survey_runs
WHERE tenant_id=?
ORDER BY triggered_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRuns(rows)
}

// Summary counts survey periods since N days
func (r *RunRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT COALESCE(SUM(periods_total),0), COALESCE(SUM(detected),0), COALESCE(SUM(skipped),0)
FROM survey_runs
WHERE tenant_id=? AND triggered_at >= DATE_SUB(NOW(), INTERVAL ? DAY);
`
	var total, detected, skipped int
	if err := r.db.QueryRowContext(ctx, q, tenant, sinceDays).Scan(&total, &detected, &skipped); err != nil {
		return 0, 0, 0, err
	}
	return total, detected, skipped, nil
}

func scanRun(scan func(dest ...any) error) (*domain.Run, error) {
	var run domain.Run
	if err := scan(
		&run.ID, &run.TenantID, &run.TriggeredAt, &run.Regions, &run.Windows, &run.Status,
		&run.Counts.Analyzed, &run.Counts.Detected, &run.Counts.Skipped, &run.Counts.Total,
		&run.Model, &run.ArtifactURL, &run.DurationMS,
	); err != nil {
		return nil, err
	}
	return &run, nil
}

func collectRuns(rows *sql.Rows) ([]*domain.Run, error) {
	var out []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
