package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Company struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name,omitempty"`
}

// RoleRule groups the phrases that identify one role category. Rules
// without a tag still match the filter; their hits are counted under
// the catch-all category.
type RoleRule struct {
	Tag string   `yaml:"tag,omitempty"`
	Any []string `yaml:"any"`
}

type SourceConfig struct {
	Enabled   bool      `yaml:"enabled"`
	Companies []Company `yaml:"companies"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scraper struct {
		RequestDelayMS     int `yaml:"request_delay_ms"`
		RequestTimeoutSecs int `yaml:"request_timeout_seconds"`
		MaxRetries         int `yaml:"max_retries"`
		MaxConcurrent      int `yaml:"max_concurrent_fetches"`
		PerPage            int `yaml:"per_page"`
		RunTimeoutSecs     int `yaml:"run_timeout_seconds"`
		DedupeWindowHours  int `yaml:"dedupe_window_hours"`
	} `yaml:"scraper"`

	Polling struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"polling"`

	Sources struct {
		Greenhouse SourceConfig `yaml:"greenhouse"`
		Lever      SourceConfig `yaml:"lever"`
		RemoteOK   SourceConfig `yaml:"remoteok"`
	} `yaml:"sources"`

	Filters struct {
		RemoteOK  bool       `yaml:"remote_ok"`
		Locations []string   `yaml:"locations"`
		Roles     []RoleRule `yaml:"roles"`
	} `yaml:"filters"`
}

func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.Scraper.RequestDelayMS) * time.Millisecond
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Scraper.RequestTimeoutSecs) * time.Second
}

func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Scraper.RunTimeoutSecs) * time.Second
}

func (c Config) DedupeWindow() time.Duration {
	return time.Duration(c.Scraper.DedupeWindowHours) * time.Hour
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalSeconds) * time.Second
}

// Load reads the YAML config at path. A .env file next to it, when
// present, seeds the process env first so deploy overrides win without
// editing the checked-in YAML. A companies.yml in the same directory
// overrides the per-source company lists.
func Load(path string) (Config, error) {
	dir := filepath.Dir(path)
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if err := OverlayCompanies(&cfg, filepath.Join(dir, "companies.yml")); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv maps the deploy-time knobs onto a loaded config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SCRAPER_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := os.Getenv("SCRAPER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}
	if v := os.Getenv("SCRAPER_REQUEST_DELAY_MS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			cfg.Scraper.RequestDelayMS = d
		}
	}
	if v := os.Getenv("SCRAPER_RUN_TIMEOUT_SECONDS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			cfg.Scraper.RunTimeoutSecs = d
		}
	}
}
