package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/invasive-watch/internal/domain/imagery"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		APIKey         string `yaml:"apiKey"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
		MaxAttempts    int    `yaml:"maxAttempts"`
		BackoffSeconds int    `yaml:"backoffSeconds"`
	} `yaml:"ai"`

	Imagery struct {
		Endpoint       string   `yaml:"endpoint"`
		APIKey         string   `yaml:"apiKey"`
		Collection     string   `yaml:"collection"`
		Bands          []string `yaml:"bands"`
		TimeoutSeconds int      `yaml:"timeoutSeconds"`
	} `yaml:"imagery"`

	Pipeline struct {
		Workers          int     `yaml:"workers"`
		MaxCloudFraction float64 `yaml:"maxCloudFraction"`
		CacheTTLSeconds  int     `yaml:"cacheTTLSeconds"`
	} `yaml:"pipeline"`

	Auth struct {
		// key -> tenant, empty map disables auth
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	Regions []RegionConfig `yaml:"regions"`
}

type RegionConfig struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	MinLat  float64  `yaml:"minLat"`
	MinLon  float64  `yaml:"minLon"`
	MaxLat  float64  `yaml:"maxLat"`
	MaxLon  float64  `yaml:"maxLon"`
	Species []string `yaml:"species"`
}

// Load baca file config.yaml, env vars menang untuk secrets
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// secrets boleh di-override lewat env
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("IMAGERY_API_KEY"); v != "" {
		cfg.Imagery.APIKey = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Minio.SecretKey = v
	}

	return &cfg, nil
}

// Validate is the startup gate: a config this fails on never reaches the pipeline.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	switch c.Database.Driver {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.apiKey is required")
	}
	if c.Imagery.Endpoint == "" {
		return fmt.Errorf("imagery.endpoint is required")
	}
	if c.Pipeline.MaxCloudFraction < 0 || c.Pipeline.MaxCloudFraction > 1 {
		return fmt.Errorf("pipeline.maxCloudFraction must be within [0,1]")
	}
	if len(c.Regions) == 0 {
		return fmt.Errorf("at least one region is required")
	}
	seen := make(map[string]bool, len(c.Regions))
	for _, r := range c.Regions {
		if r.ID == "" {
			return fmt.Errorf("region without id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate region id: %s", r.ID)
		}
		seen[r.ID] = true
		if r.MinLat >= r.MaxLat || r.MinLon >= r.MaxLon {
			return fmt.Errorf("region %s: degenerate bounding box", r.ID)
		}
	}
	return nil
}

// SurveyRegions converts configured regions into domain values
func (c *Config) SurveyRegions() []imagery.Region {
	out := make([]imagery.Region, 0, len(c.Regions))
	for _, r := range c.Regions {
		out = append(out, imagery.Region{
			ID:   imagery.RegionID(r.ID),
			Name: r.Name,
			Bounds: imagery.BoundingBox{
				MinLat: r.MinLat,
				MinLon: r.MinLon,
				MaxLat: r.MaxLat,
				MaxLon: r.MaxLon,
			},
			Species: r.Species,
		})
	}
	return out
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
