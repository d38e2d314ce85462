package survey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/invasive-watch/internal/application"
	"github.com/bryanwahyu/invasive-watch/internal/domain/analyses"
	"github.com/bryanwahyu/invasive-watch/internal/domain/features"
	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
	dominf "github.com/bryanwahyu/invasive-watch/internal/domain/inference"
	"github.com/bryanwahyu/invasive-watch/internal/domain/report"
	"github.com/bryanwahyu/invasive-watch/internal/domain/runlog"
)

const (
	DefaultMaxCloudFraction = 0.2
	DefaultWorkers          = 4
)

// Inferrer is the gateway the orchestrator calls per period.
type Inferrer interface {
	Infer(ctx context.Context, req dominf.Request) (*dominf.Result, error)
}

// ResultCache memoizes gateway calls by fingerprint.
type ResultCache interface {
	GetOrCompute(ctx context.Context, fp dominf.Fingerprint, compute func(context.Context) (*dominf.Result, error)) (*dominf.Result, error)
}

// Service implements use-cases untuk survey runs.
// Regions are fanned out over a bounded worker pool; within one region the
// windows are processed strictly in chronological order because each period's
// deltas depend on the previous one. Repo/Analyses/RunLog/Artifacts may be nil
// (the CLI can run without persistence); the pipeline itself never is.
type Service struct {
	Catalog   imagery.Catalog
	Gateway   Inferrer
	Cache     ResultCache
	Repo      report.Repository
	Analyses  analyses.Repository
	RunLog    runlog.Repository
	Artifacts report.ArtifactStore
	Clock     application.Clock

	MaxCloudFraction float64
	Workers          int
	Model            string
}

// Command untuk trigger survey
type RunSurveyCommand struct {
	TenantID string
	Regions  []imagery.Region
	Windows  []imagery.DateWindow
}

// RunSurveyUntilDone → jalanin survey dengan context.Background()
// cocok dipanggil dari goroutine di router supaya gak kena context canceled
func (s *Service) RunSurveyUntilDone(cmd RunSurveyCommand) (*report.SiteReport, error) {
	return s.RunSurvey(context.Background(), cmd)
}

// RunSurvey executes the whole pipeline for every (region, window) pair and
// aggregates a SiteReport. One bad period never aborts the run: it is recorded
// as a skipped period with its reason and processing continues.
func (s *Service) RunSurvey(ctx context.Context, cmd RunSurveyCommand) (*report.SiteReport, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	runID := report.RunID(uuid.New().String())

	initial := &report.Run{
		ID:          runID,
		TenantID:    cmd.TenantID,
		TriggeredAt: now,
		Regions:     len(cmd.Regions),
		Windows:     len(cmd.Windows),
		Status:      report.StatusRunning,
		Model:       s.Model,
	}
	if s.Repo != nil {
		if err := s.Repo.Save(ctx, initial); err != nil {
			return nil, err
		}
	}

	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	series := make([]report.RegionSeries, len(cmd.Regions))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, region := range cmd.Regions {
		// no new region is dispatched once cancellation is observed
		select {
		case <-ctx.Done():
			series[i] = cancelledSeries(region, cmd.Windows)
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, region imagery.Region) {
			defer wg.Done()
			defer func() { <-sem }()
			series[i] = s.surveyRegion(ctx, cmd.TenantID, runID, region, cmd.Windows)
		}(i, region)
	}
	wg.Wait()

	rep := &report.SiteReport{
		RunID:       runID,
		TenantID:    cmd.TenantID,
		GeneratedAt: s.Clock.Now(),
		Regions:     series,
		DurationMS:  s.Clock.Now().Sub(now).Milliseconds(),
	}
	rep.Counts = countPeriods(series)

	if s.Artifacts != nil {
		key := fmt.Sprintf("%s/%s.json", cmd.TenantID, runID)
		url, err := s.Artifacts.UploadJSON(ctx, key, rep)
		if err != nil {
			_ = s.saveFinal(ctx, rep, report.StatusFailed, now)
			return rep, err
		}
		rep.ArtifactURL = url
	}

	if err := s.saveFinal(ctx, rep, report.StatusSuccess, now); err != nil {
		return rep, err
	}
	return rep, nil
}

func (s *Service) saveFinal(ctx context.Context, rep *report.SiteReport, status report.Status, triggered time.Time) error {
	if s.Repo == nil {
		return nil
	}
	return s.Repo.Save(ctx, &report.Run{
		ID:          rep.RunID,
		TenantID:    rep.TenantID,
		TriggeredAt: triggered,
		Regions:     len(rep.Regions),
		Windows:     windowsPerRegion(rep),
		Status:      status,
		Counts:      rep.Counts,
		Model:       s.Model,
		ArtifactURL: rep.ArtifactURL,
		DurationMS:  rep.DurationMS,
	})
}

func windowsPerRegion(rep *report.SiteReport) int {
	if len(rep.Regions) == 0 {
		return 0
	}
	return len(rep.Regions[0].Periods)
}

// surveyRegion walks one region through all windows. Compositing happens for
// every window first (deltas need the full chronological series), then each
// successful period goes through the cache-checked inference gateway.
func (s *Service) surveyRegion(ctx context.Context, tenant string, runID report.RunID, region imagery.Region, windows []imagery.DateWindow) report.RegionSeries {
	periods := make([]report.Period, len(windows))
	for i, w := range windows {
		periods[i] = report.Period{Window: w, Status: report.PeriodPending}
	}

	comps := make([]*imagery.Composite, 0, len(windows))
	compPeriod := make([]int, 0, len(windows))
	for i, w := range windows {
		if ctx.Err() != nil {
			s.skip(&periods[i], tenant, runID, region, "composite", ctx.Err())
			continue
		}
		periods[i].Status = report.PeriodCompositing
		scenes, err := s.Catalog.SearchScenes(ctx, region, w)
		if err != nil {
			s.skip(&periods[i], tenant, runID, region, "composite", err)
			continue
		}
		comp, err := imagery.BuildComposite(region, w, scenes, s.maxCloud())
		if err != nil {
			s.skip(&periods[i], tenant, runID, region, "composite", err)
			continue
		}
		periods[i].Status = report.PeriodExtracting
		comps = append(comps, comp)
		compPeriod = append(compPeriod, i)
	}

	vectors := features.Extract(comps)
	for j := range vectors {
		i := compPeriod[j]
		vec := vectors[j]
		periods[i].Features = &vec
		if ctx.Err() != nil {
			s.skip(&periods[i], tenant, runID, region, "inference", ctx.Err())
			continue
		}
		periods[i].Status = report.PeriodInferring

		req := dominf.Request{Region: region, Window: vec.Window, Features: vec}
		res, err := s.infer(ctx, req)
		if err != nil {
			s.skip(&periods[i], tenant, runID, region, "inference", err)
			continue
		}
		periods[i].Status = report.PeriodDone
		periods[i].Result = res
		s.saveAnalysis(ctx, tenant, runID, region, req, res)
	}

	return report.RegionSeries{RegionID: region.ID, Name: region.Name, Periods: periods}
}

func (s *Service) infer(ctx context.Context, req dominf.Request) (*dominf.Result, error) {
	if s.Cache == nil {
		return s.Gateway.Infer(ctx, req)
	}
	fp := dominf.NewFingerprint(req)
	return s.Cache.GetOrCompute(ctx, fp, func(cctx context.Context) (*dominf.Result, error) {
		return s.Gateway.Infer(cctx, req)
	})
}

func (s *Service) skip(p *report.Period, tenant string, runID report.RunID, region imagery.Region, stage string, cause error) {
	p.Status = report.PeriodSkipped
	p.SkipReason = skipReason(cause)
	if s.RunLog == nil {
		return
	}
	_ = s.RunLog.Save(context.Background(), &runlog.RunError{
		TenantID:  tenant,
		RunID:     string(runID),
		RegionID:  string(region.ID),
		WindowKey: p.Window.Key(),
		Stage:     stage,
		Message:   cause.Error(),
	})
}

func (s *Service) saveAnalysis(ctx context.Context, tenant string, runID report.RunID, region imagery.Region, req dominf.Request, res *dominf.Result) {
	if s.Analyses == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	_ = s.Analyses.Save(ctx, &analyses.Analysis{
		ID:          analyses.AnalysisID(uuid.New().String()),
		TenantID:    tenant,
		RunID:       string(runID),
		RegionID:    string(region.ID),
		WindowKey:   req.Window.Key(),
		Fingerprint: dominf.NewFingerprint(req),
		Detected:    res.Detected,
		Result:      string(payload),
		CreatedAt:   res.AnalyzedAt,
	})
}

func (s *Service) maxCloud() float64 {
	if s.MaxCloudFraction <= 0 {
		return DefaultMaxCloudFraction
	}
	return s.MaxCloudFraction
}

// Latest ambil N run terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*report.Run, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get ambil 1 run by id
func (s *Service) Get(ctx context.Context, tenant string, id report.RunID) (*report.Run, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Paginate run history
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*report.Run, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}

// Summary rekap hasil survey N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (map[string]any, error) {
	total, detected, skipped, err := s.Repo.Summary(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_periods": total,
		"detected":      detected,
		"skipped":       skipped,
	}, nil
}

// RunErrors lists the persisted gaps for one run
func (s *Service) RunErrors(ctx context.Context, tenant string, runID string, limit int) ([]*runlog.RunError, error) {
	if s.RunLog == nil {
		return nil, nil
	}
	return s.RunLog.ListByRun(ctx, tenant, runID, limit)
}

func validateCommand(cmd RunSurveyCommand) error {
	if len(cmd.Regions) == 0 {
		return errors.New("no regions to survey")
	}
	if len(cmd.Windows) == 0 {
		return errors.New("no date windows to survey")
	}
	for i := 1; i < len(cmd.Windows); i++ {
		if cmd.Windows[i].Start.Before(cmd.Windows[i-1].Start) {
			return fmt.Errorf("date windows out of order at index %d", i)
		}
	}
	return nil
}

func cancelledSeries(region imagery.Region, windows []imagery.DateWindow) report.RegionSeries {
	periods := make([]report.Period, len(windows))
	for i, w := range windows {
		periods[i] = report.Period{Window: w, Status: report.PeriodSkipped, SkipReason: "cancelled"}
	}
	return report.RegionSeries{RegionID: region.ID, Name: region.Name, Periods: periods}
}

func countPeriods(series []report.RegionSeries) report.SurveyCounts {
	var c report.SurveyCounts
	for _, rs := range series {
		for _, p := range rs.Periods {
			c.Total++
			switch p.Status {
			case report.PeriodDone:
				c.Analyzed++
				if p.Result != nil && p.Result.Detected {
					c.Detected++
				}
			case report.PeriodSkipped:
				c.Skipped++
			}
		}
	}
	return c
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, imagery.ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, dominf.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, dominf.ErrTimeout):
		return "timeout"
	case errors.Is(err, dominf.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		var malformed *dominf.MalformedResponseError
		if errors.As(err, &malformed) {
			return "malformed_response"
		}
		return "error: " + err.Error()
	}
}
