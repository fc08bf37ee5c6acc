package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paraeval/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvConfigPath, "ADDR", "WEB_DIR", "DATA_DIR", "RESULTS_DIR", "STORAGE_BACKEND",
		"DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT",
		"OIDC_ISSUER", "OIDC_CLIENT_ID", "OIDC_CLIENT_SECRET", "OIDC_REDIRECT_URL",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "paraeval.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "gemini 1.5 pro", cfg.Models.Default())
	assert.Equal(t, "H_Evals", cfg.ResultsPath())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, `
addr: ":9090"
data_dir: /srv/eval
results_dir: out
models:
  - name: gpt-4o
    file: gpt_4o.csv
session:
  ttl: 2h
  sweep_interval: 1m
log:
  level: debug
  format: console
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, domain.Models{{Name: "gpt-4o", File: "gpt_4o.csv"}}, cfg.Models)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, "/srv/eval/out", cfg.ResultsPath())
	assert.Equal(t, "/srv/eval/users.csv", cfg.UsersPath())
	assert.Equal(t, "/srv/eval/about_us", cfg.AssetPaths()[domain.AssetAbout])
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_PathFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, writeConfig(t, "addr: \":7000\"\n"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, "addr: \":9090\"\nlog:\n  level: debug\n")
	t.Setenv("ADDR", ":1234")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/eval")
	t.Setenv("OIDC_ISSUER", "https://id.example.com")
	t.Setenv("OIDC_CLIENT_ID", "paraeval")
	t.Setenv("OIDC_REDIRECT_URL", "https://eval.example.com/api/auth/sso/callback")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":1234", cfg.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.True(t, cfg.OIDC.Enabled)
}

func TestLoad_UnknownField(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "adress: \":9090\"\n"))
	assert.ErrorContains(t, err, "adress")
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no models", func(c *Config) { c.Models = nil }, "at least one model"},
		{"duplicate model", func(c *Config) { c.Models = append(c.Models, c.Models[0]) }, "duplicate name"},
		{"model without file", func(c *Config) { c.Models[0].File = "" }, "file is required"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "session.ttl"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "sqlite" }, "storage.backend"},
		{"postgres without url", func(c *Config) { c.Storage.Backend = BackendPostgres }, "database_url"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"oidc incomplete", func(c *Config) { c.OIDC.Enabled = true }, "oidc requires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
	assert.NoError(t, Default().Validate())
}
