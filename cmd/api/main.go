package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/bryanwahyu/invasive-watch/internal/application"
	appanalyses "github.com/bryanwahyu/invasive-watch/internal/application/analyses"
	appinference "github.com/bryanwahyu/invasive-watch/internal/application/inference"
	appsurvey "github.com/bryanwahyu/invasive-watch/internal/application/survey"
	"github.com/bryanwahyu/invasive-watch/internal/config"
	"github.com/bryanwahyu/invasive-watch/internal/domain/analyses"
	"github.com/bryanwahyu/invasive-watch/internal/domain/report"
	"github.com/bryanwahyu/invasive-watch/internal/domain/runlog"
	openaiClient "github.com/bryanwahyu/invasive-watch/internal/infra/ai/openai"
	"github.com/bryanwahyu/invasive-watch/internal/infra/cache"
	mysqlp "github.com/bryanwahyu/invasive-watch/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/invasive-watch/internal/infra/db/postgres"
	"github.com/bryanwahyu/invasive-watch/internal/infra/httpserver"
	"github.com/bryanwahyu/invasive-watch/internal/infra/imagery/sentinel"
	minioStore "github.com/bryanwahyu/invasive-watch/internal/infra/storage"
	"github.com/bryanwahyu/invasive-watch/internal/middleware"
)

func main() {
	// .env opsional, env asli tetap menang
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validate error: %v", err)
	}

	ctx := context.Background()

	// connect DB per driver
	var (
		db          *sql.DB
		runRepo     report.Repository
		analysisRep analyses.Repository
		runLogRepo  runlog.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		runRepo = postgresp.NewRunRepository(db)
		analysisRep = postgresp.NewAnalysisRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		runRepo = mysqlp.NewRunRepository(db)
		analysisRep = mysqlp.NewAnalysisRepository(db)
		runLogRepo = mysqlp.NewRunErrorRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init imagery catalog client
	catalog := sentinel.NewClient(
		cfg.Imagery.Endpoint,
		cfg.Imagery.APIKey,
		cfg.Imagery.Collection,
		cfg.Imagery.Bands,
		time.Duration(cfg.Imagery.TimeoutSeconds)*time.Second,
	)

	// init inference gateway
	gateway := appinference.NewService(openaiClient.NewClient(cfg.AI.APIKey, cfg.AI.Model))
	if cfg.AI.TimeoutSeconds > 0 {
		gateway.Timeout = time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	}
	if cfg.AI.MaxAttempts > 0 {
		gateway.MaxAttempts = cfg.AI.MaxAttempts
	}
	if cfg.AI.BackoffSeconds > 0 {
		gateway.Backoff = time.Duration(cfg.AI.BackoffSeconds) * time.Second
	}

	// init service
	svc := &appsurvey.Service{
		Catalog:          catalog,
		Gateway:          gateway,
		Cache:            cache.NewResultCache(time.Duration(cfg.Pipeline.CacheTTLSeconds) * time.Second),
		Repo:             runRepo,
		Analyses:         analysisRep,
		RunLog:           runLogRepo,
		Artifacts:        store,
		Clock:            application.SystemClock{},
		MaxCloudFraction: cfg.Pipeline.MaxCloudFraction,
		Workers:          cfg.Pipeline.Workers,
		Model:            cfg.AI.Model,
	}
	analysesSvc := appanalyses.NewService(analysisRep)

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(60, 1))
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(svc, analysesSvc, cfg.SurveyRegions()))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
