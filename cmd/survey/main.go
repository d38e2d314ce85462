// invasive-watch survey CLI, one-shot pipeline runs without the HTTP server.
//
// Usage:
//   survey run --config config.yaml --start 2025-01-01 --end 2025-06-01
//   survey run --regions mangrove-east,delta-west --skip-upload
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/bryanwahyu/invasive-watch/internal/application"
	appinference "github.com/bryanwahyu/invasive-watch/internal/application/inference"
	appsurvey "github.com/bryanwahyu/invasive-watch/internal/application/survey"
	"github.com/bryanwahyu/invasive-watch/internal/config"
	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
	openaiClient "github.com/bryanwahyu/invasive-watch/internal/infra/ai/openai"
	"github.com/bryanwahyu/invasive-watch/internal/infra/cache"
	"github.com/bryanwahyu/invasive-watch/internal/infra/imagery/sentinel"
	minioStore "github.com/bryanwahyu/invasive-watch/internal/infra/storage"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "survey",
		Usage: "Run one invasive species survey over configured regions",
		Commands: []*cli.Command{
			runCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute the full pipeline and print the site report as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "Path to config file",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:     "start",
				Usage:    "Survey range start (YYYY-MM-DD)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "end",
				Usage:    "Survey range end (YYYY-MM-DD, exclusive)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "regions",
				Usage: "Comma-separated region IDs (default: all configured)",
			},
			&cli.StringFlag{
				Name:  "tenant",
				Value: "cli",
				Usage: "Tenant ID recorded on the report",
			},
			&cli.BoolFlag{
				Name:  "skip-upload",
				Usage: "Do not upload the report artifact to object storage",
			},
		},
		Action: runSurvey,
	}
}

func runSurvey(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validate: %w", err)
	}

	start, err := time.Parse("2006-01-02", c.String("start"))
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.Parse("2006-01-02", c.String("end"))
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	regions, err := selectRegions(cfg.SurveyRegions(), c.String("regions"))
	if err != nil {
		return err
	}
	windows := imagery.MonthlyWindows(start, end)
	if len(windows) == 0 {
		return fmt.Errorf("empty date range: %s..%s", c.String("start"), c.String("end"))
	}

	ctx := context.Background()

	catalog := sentinel.NewClient(
		cfg.Imagery.Endpoint,
		cfg.Imagery.APIKey,
		cfg.Imagery.Collection,
		cfg.Imagery.Bands,
		time.Duration(cfg.Imagery.TimeoutSeconds)*time.Second,
	)

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

	// CLI jalan tanpa DB, report cuma diprint (dan opsional diupload)
	svc := &appsurvey.Service{
		Catalog:          catalog,
		Gateway:          gateway,
		Cache:            cache.NewResultCache(time.Duration(cfg.Pipeline.CacheTTLSeconds) * time.Second),
		Clock:            application.SystemClock{},
		MaxCloudFraction: cfg.Pipeline.MaxCloudFraction,
		Workers:          cfg.Pipeline.Workers,
		Model:            cfg.AI.Model,
	}

	if !c.Bool("skip-upload") {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		svc.Artifacts = store
	}

	rep, err := svc.RunSurvey(ctx, appsurvey.RunSurveyCommand{
		TenantID: c.String("tenant"),
		Regions:  regions,
		Windows:  windows,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func selectRegions(configured []imagery.Region, csv string) ([]imagery.Region, error) {
	if strings.TrimSpace(csv) == "" {
		return configured, nil
	}
	byID := make(map[imagery.RegionID]imagery.Region, len(configured))
	for _, reg := range configured {
		byID[reg.ID] = reg
	}
	var out []imagery.Region
	for _, id := range strings.Split(csv, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		reg, ok := byID[imagery.RegionID(id)]
		if !ok {
			return nil, fmt.Errorf("unknown region: %s", id)
		}
		out = append(out, reg)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no regions selected")
	}
	return out, nil
}
