package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port     int    `yaml:"port" json:"port" validate:"min=1,max=65535"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		LogLevel string `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	} `yaml:"app" json:"app"`

	Enrichment struct {
		ConvexURL      string `yaml:"convex_url" json:"convex_url" validate:"omitempty,url"`
		EndpointPath   string `yaml:"endpoint_path" json:"endpoint_path" validate:"required,startswith=/"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds" validate:"min=1,max=120"`
		MaxCompanies   int    `yaml:"max_companies" json:"max_companies" validate:"min=1,max=50"`
		RateLimit      struct {
			MaxPerWindow  int `yaml:"max_per_window" json:"max_per_window" validate:"min=1"`
			WindowSeconds int `yaml:"window_seconds" json:"window_seconds" validate:"min=1"`
		} `yaml:"rate_limit" json:"rate_limit"`
	} `yaml:"enrichment" json:"enrichment"`

	Scan struct {
		DebounceMs     int `yaml:"debounce_ms" json:"debounce_ms" validate:"min=0"`
		InitialDelayMs int `yaml:"initial_delay_ms" json:"initial_delay_ms" validate:"min=0"`
		BatchSize      int `yaml:"batch_size" json:"batch_size" validate:"min=1,max=50"`
		BatchPauseMs   int `yaml:"batch_pause_ms" json:"batch_pause_ms" validate:"min=0"`
		PollSeconds    int `yaml:"poll_seconds" json:"poll_seconds" validate:"min=1"`
	} `yaml:"scan" json:"scan"`

	Autofill struct {
		FieldPauseMs int `yaml:"field_pause_ms" json:"field_pause_ms" validate:"min=0"`
	} `yaml:"autofill" json:"autofill"`

	Fetch struct {
		ReqPerSec      float64 `yaml:"req_per_sec" json:"req_per_sec" validate:"gt=0"`
		Burst          int     `yaml:"burst" json:"burst" validate:"min=1"`
		TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds" validate:"min=1"`
		UseBrowser     bool    `yaml:"use_browser" json:"use_browser"`
	} `yaml:"fetch" json:"fetch"`
}

// Default carries the agent's documented constants.
func Default() Config {
	var c Config
	c.App.Port = 38471
	c.App.DataDir = "."
	c.App.LogLevel = "info"

	c.Enrichment.EndpointPath = "/api/action"
	c.Enrichment.TimeoutSeconds = 15
	c.Enrichment.MaxCompanies = 50
	c.Enrichment.RateLimit.MaxPerWindow = 10
	c.Enrichment.RateLimit.WindowSeconds = 60

	c.Scan.DebounceMs = 1000
	c.Scan.InitialDelayMs = 2000
	c.Scan.BatchSize = 10
	c.Scan.BatchPauseMs = 500
	c.Scan.PollSeconds = 30

	c.Autofill.FieldPauseMs = 100

	c.Fetch.ReqPerSec = 0.5
	c.Fetch.Burst = 1
	c.Fetch.TimeoutSeconds = 20
	return c
}

// Load reads path over the defaults, so a partial file is fine.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (c Config) Debounce() time.Duration     { return ms(c.Scan.DebounceMs) }
func (c Config) InitialDelay() time.Duration { return ms(c.Scan.InitialDelayMs) }
func (c Config) BatchPause() time.Duration   { return ms(c.Scan.BatchPauseMs) }
func (c Config) FieldPause() time.Duration   { return ms(c.Autofill.FieldPauseMs) }
func (c Config) PollInterval() time.Duration { return time.Duration(c.Scan.PollSeconds) * time.Second }
func (c Config) RateWindow() time.Duration {
	return time.Duration(c.Enrichment.RateLimit.WindowSeconds) * time.Second
}
func (c Config) EnrichmentTimeout() time.Duration {
	return time.Duration(c.Enrichment.TimeoutSeconds) * time.Second
}
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
