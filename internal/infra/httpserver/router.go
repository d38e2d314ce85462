package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalyses "github.com/bryanwahyu/invasive-watch/internal/application/analyses"
	appsurvey "github.com/bryanwahyu/invasive-watch/internal/application/survey"
	imagery "github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
	dominf "github.com/bryanwahyu/invasive-watch/internal/domain/inference"
	report "github.com/bryanwahyu/invasive-watch/internal/domain/report"
	"github.com/bryanwahyu/invasive-watch/internal/middleware"
)

type Router struct {
	surveySvc   *appsurvey.Service
	analysesSvc *appanalyses.Service
	regions     []imagery.Region
}

func NewRouter(surveySvc *appsurvey.Service, analysesSvc *appanalyses.Service, regions []imagery.Region) http.Handler {
	r := &Router{surveySvc: surveySvc, analysesSvc: analysesSvc, regions: regions}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/surveys", r.wrap(r.handleTriggerSurvey))
		rt.Get("/surveys", r.wrap(r.handleSurveyList))
		rt.Get("/surveys/latest", r.wrap(r.handleLatest))
		rt.Get("/surveys/{id}", r.wrap(r.handleGet))
		rt.Get("/surveys/{id}/errors", r.wrap(r.handleRunErrors))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Get("/analyses", r.wrap(r.handleAnalysesList))
		rt.Get("/analyses/latest", r.wrap(r.handleAnalysisLatest))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, dominf.ErrRateLimited) {
				http.Error(w, "inference provider rate limited", http.StatusTooManyRequests)
				return
			}
			if errors.Is(err, imagery.ErrDataUnavailable) {
				http.Error(w, "no usable imagery for period", http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/surveys
// Body: {"regions": ["mangrove-east"], "start": "2025-01-01", "end": "2025-06-01"}
// Regions omitted means every configured region. Windows are calendar months.
func (r *Router) handleTriggerSurvey(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return err
	}

	var body struct {
		Regions []string `json:"regions"`
		Start   string   `json:"start"`
		End     string   `json:"end"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateDateRange(body.Start, body.End); err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", body.Start)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", body.End)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	regions, err := r.selectRegions(body.Regions)
	if err != nil {
		return err
	}
	windows := imagery.MonthlyWindows(start, end)
	if len(windows) == 0 {
		return fmt.Errorf("empty date range: %s..%s", body.Start, body.End)
	}

	cmd := appsurvey.RunSurveyCommand{
		TenantID: tenant,
		Regions:  regions,
		Windows:  windows,
	}

	// 🚀 Jalankan di background, biar jalan sampai selesai
	go func() {
		middleware.IncrementSurveys()
		middleware.IncrementSurveysRunning()
		defer middleware.DecrementSurveysRunning()

		rep, err := r.surveySvc.RunSurveyUntilDone(cmd)
		if err != nil {
			middleware.IncrementSurveysFailed()
			fmt.Printf("background survey error for tenant=%s regions=%d: %v\n",
				tenant, len(regions), err)
			return
		}
		fmt.Printf("survey finished: tenant=%s run=%s analyzed=%d detected=%d skipped=%d\n",
			tenant, rep.RunID, rep.Counts.Analyzed, rep.Counts.Detected, rep.Counts.Skipped)
	}()

	// 🔙 langsung balikin respons ke client
	resp := map[string]any{
		"status":   "queued",
		"tenant":   tenant,
		"regions":  len(regions),
		"windows":  len(windows),
		"message":  "survey started in background",
		"queuedAt": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

func (r *Router) selectRegions(ids []string) ([]imagery.Region, error) {
	if len(ids) == 0 {
		return r.regions, nil
	}
	byID := make(map[imagery.RegionID]imagery.Region, len(r.regions))
	for _, reg := range r.regions {
		byID[reg.ID] = reg
	}
	out := make([]imagery.Region, 0, len(ids))
	for _, id := range ids {
		if err := middleware.ValidateRegionID(id); err != nil {
			return nil, err
		}
		reg, ok := byID[imagery.RegionID(id)]
		if !ok {
			return nil, fmt.Errorf("unknown region: %s", id)
		}
		out = append(out, reg)
	}
	return out, nil
}

// GET /v1/{tenant}/surveys?page=&page_size=
func (r *Router) handleSurveyList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	list, err := r.surveySvc.Paginate(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(report.NewPaginatedResult(list, page, size))
}

// GET /v1/{tenant}/surveys/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit := middleware.ValidateLimit(atoiQuery(req, "limit"))

	list, err := r.surveySvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/surveys/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	run, err := r.surveySvc.Get(req.Context(), tenant, report.RunID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(run)
}

// GET /v1/{tenant}/surveys/{id}/errors?limit=50
func (r *Router) handleRunErrors(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRunID(id); err != nil {
		return err
	}
	limit := middleware.ValidateLimit(atoiQuery(req, "limit"))

	list, err := r.surveySvc.RunErrors(req.Context(), tenant, id, limit)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days := middleware.ValidateDays(atoiQuery(req, "days"))

	summary, err := r.surveySvc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// GET /v1/{tenant}/analyses?page=&page_size=
func (r *Router) handleAnalysesList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.analysesSvc.Paginate(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/analyses/latest?region=<id>
func (r *Router) handleAnalysisLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	regionID := req.URL.Query().Get("region")
	if regionID == "" {
		return fmt.Errorf("region query param is required")
	}

	a, err := r.analysesSvc.LatestByRegion(req.Context(), tenant, regionID)
	if err != nil {
		return err
	}
	if a == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

func atoiQuery(req *http.Request, key string) int {
	n, _ := strconv.Atoi(req.URL.Query().Get(key))
	return n
}
