// Package config loads the service configuration from defaults, an optional
// YAML file and environment overrides, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"paraeval/internal/domain"
)

// EnvConfigPath names the variable holding the config file path when no
// --config flag is given.
const EnvConfigPath = "PARAEVAL_CONFIG"

// Storage backends.
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Addr       string        `yaml:"addr"`
	WebDir     string        `yaml:"web_dir"`
	DataDir    string        `yaml:"data_dir"`
	UsersFile  string        `yaml:"users_file"`
	InputFile  string        `yaml:"input_file"`
	ResultsDir string        `yaml:"results_dir"`
	Watch      bool          `yaml:"watch"`
	Models     domain.Models `yaml:"models"`
	Assets     AssetDirs     `yaml:"assets"`
	Session    Session       `yaml:"session"`
	Storage    Storage       `yaml:"storage"`
	Log        Log           `yaml:"log"`
	OIDC       OIDC          `yaml:"oidc"`
}

// AssetDirs maps each asset category to its directory.
type AssetDirs struct {
	Metrics string `yaml:"metrics"`
	Models  string `yaml:"models"`
	Results string `yaml:"results"`
	About   string `yaml:"about"`
}

type Session struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type Storage struct {
	Backend     string `yaml:"backend"`
	DatabaseURL string `yaml:"database_url"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OIDC configures optional single sign-on.
type OIDC struct {
	Enabled      bool   `yaml:"enabled"`
	Issuer       string `yaml:"issuer"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Addr:       ":8080",
		WebDir:     "web",
		DataDir:    ".",
		UsersFile:  "users.csv",
		InputFile:  "input.csv",
		ResultsDir: "H_Evals",
		Watch:      true,
		Models: domain.Models{
			{Name: "gemini 1.5 pro", File: "gemini_15_pro.csv"},
			{Name: "gpt-4o", File: "gpt_4o.csv"},
			{Name: "Llama3 70b", File: "llama3_70b.csv"},
		},
		Assets: AssetDirs{
			Metrics: "metrics_images",
			Models:  "models_images",
			Results: "results_images",
			About:   "about_us",
		},
		Session: Session{TTL: 24 * time.Hour, SweepInterval: 10 * time.Minute},
		Storage: Storage{Backend: BackendCSV},
		Log:     Log{Level: "info", Format: "json"},
	}
}

// Load builds the configuration. An empty path falls back to $PARAEVAL_CONFIG;
// if that is empty too only defaults and the environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Addr = env("ADDR", c.Addr)
	c.WebDir = env("WEB_DIR", c.WebDir)
	c.DataDir = env("DATA_DIR", c.DataDir)
	c.ResultsDir = env("RESULTS_DIR", c.ResultsDir)
	c.Storage.Backend = env("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.DatabaseURL = env("DATABASE_URL", c.Storage.DatabaseURL)
	c.Log.Level = env("LOG_LEVEL", c.Log.Level)
	c.Log.Format = env("LOG_FORMAT", c.Log.Format)

	c.OIDC.Issuer = env("OIDC_ISSUER", c.OIDC.Issuer)
	c.OIDC.ClientID = env("OIDC_CLIENT_ID", c.OIDC.ClientID)
	c.OIDC.ClientSecret = env("OIDC_CLIENT_SECRET", c.OIDC.ClientSecret)
	c.OIDC.RedirectURL = env("OIDC_REDIRECT_URL", c.OIDC.RedirectURL)
	if os.Getenv("OIDC_ISSUER") != "" && os.Getenv("OIDC_CLIENT_ID") != "" {
		c.OIDC.Enabled = true
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Models) == 0 {
		errs = append(errs, errors.New("at least one model is required"))
	}
	seen := map[string]bool{}
	for i, m := range c.Models {
		switch {
		case m.Name == "":
			errs = append(errs, fmt.Errorf("models[%d]: name is required", i))
		case seen[m.Name]:
			errs = append(errs, fmt.Errorf("models[%d]: duplicate name %q", i, m.Name))
		}
		seen[m.Name] = true
		if m.File == "" {
			errs = append(errs, fmt.Errorf("models[%d]: file is required", i))
		}
	}
	if c.InputFile == "" {
		errs = append(errs, errors.New("input_file is required"))
	}
	if c.UsersFile == "" {
		errs = append(errs, errors.New("users_file is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("session.sweep_interval must be positive"))
	}
	switch c.Storage.Backend {
	case BackendCSV:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("storage.database_url is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q", BackendCSV, BackendPostgres, c.Storage.Backend))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.OIDC.Enabled && (c.OIDC.Issuer == "" || c.OIDC.ClientID == "" || c.OIDC.RedirectURL == "") {
		errs = append(errs, errors.New("oidc requires issuer, client_id and redirect_url"))
	}
	return errors.Join(errs...)
}

// Resolve returns p relative to the data directory unless it is absolute.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// UsersPath is the resolved credential file path.
func (c *Config) UsersPath() string { return c.Resolve(c.UsersFile) }

// ResultsPath is the resolved ledger directory.
func (c *Config) ResultsPath() string { return c.Resolve(c.ResultsDir) }

// AssetPaths returns the resolved directory of every asset category.
func (c *Config) AssetPaths() map[domain.AssetCategory]string {
	return map[domain.AssetCategory]string{
		domain.AssetMetrics: c.Resolve(c.Assets.Metrics),
		domain.AssetModels:  c.Resolve(c.Assets.Models),
		domain.AssetResults: c.Resolve(c.Assets.Results),
		domain.AssetAbout:   c.Resolve(c.Assets.About),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
