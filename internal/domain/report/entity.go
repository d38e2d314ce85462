package report

import (
	"time"

	"github.com/bryanwahyu/invasive-watch/internal/domain/features"
	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
	"github.com/bryanwahyu/invasive-watch/internal/domain/inference"
)

// RunID tipe untuk SurveyRun
type RunID string

// Status enum for a whole run
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// PeriodStatus tracks one (region, window) pair through the pipeline.
type PeriodStatus string

const (
	PeriodPending     PeriodStatus = "pending"
	PeriodCompositing PeriodStatus = "compositing"
	PeriodExtracting  PeriodStatus = "extracting"
	PeriodInferring   PeriodStatus = "inferring"
	PeriodDone        PeriodStatus = "done"
	PeriodSkipped     PeriodStatus = "skipped"
)

// SurveyCounts value object
type SurveyCounts struct {
	Analyzed int `json:"analyzed"`
	Detected int `json:"detected"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// Period is the outcome for one (region, window) pair. A skipped period keeps
// its reason so a consumer can tell "no invasion detected" apart from "could
// not be analyzed".
type Period struct {
	Window     imagery.DateWindow `json:"window"`
	Status     PeriodStatus       `json:"status"`
	SkipReason string             `json:"skip_reason,omitempty"`
	Features   *features.Vector   `json:"features,omitempty"`
	Result     *inference.Result  `json:"result,omitempty"`
}

// RegionSeries is one region's periods in chronological order.
type RegionSeries struct {
	RegionID imagery.RegionID `json:"region_id"`
	Name     string           `json:"name"`
	Periods  []Period         `json:"periods"`
}

// SiteReport is the fully-resolved output of one pipeline run. Immutable once
// emitted; no lazy fields, any renderer can consume it without re-invoking the
// pipeline.
type SiteReport struct {
	RunID       RunID          `json:"run_id"`
	TenantID    string         `json:"tenant_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Counts      SurveyCounts   `json:"counts"`
	Regions     []RegionSeries `json:"regions"`
	ArtifactURL string         `json:"artifact_url,omitempty"`
	DurationMS  int64          `json:"duration_ms"`
}

// Aggregate root persisted per run; the full SiteReport goes to object storage.
type Run struct {
	ID          RunID        `json:"id"`
	TenantID    string       `json:"tenant_id"`
	TriggeredAt time.Time    `json:"triggered_at"`
	Regions     int          `json:"regions"`
	Windows     int          `json:"windows"`
	Status      Status       `json:"status"`
	Counts      SurveyCounts `json:"counts"`
	Model       string       `json:"model,omitempty"`
	ArtifactURL string       `json:"artifact_url,omitempty"`
	DurationMS  int64        `json:"duration_ms"`
}
