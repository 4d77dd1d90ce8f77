package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.tavily.com", cfg.Tavily.BaseURL)
	assert.Equal(t, "https://api.perplexity.ai", cfg.Perplexity.BaseURL)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 10, cfg.Search.MaxResultsPerQuery)
	assert.Equal(t, "basic", cfg.Search.SearchDepth)
	assert.Equal(t, 15, cfg.Search.TimeoutSecs)
	assert.Equal(t, 8, cfg.Search.MaxConcurrent)
	assert.Equal(t, 8, cfg.Verify.TimeoutSecs)
	assert.Equal(t, 10, cfg.Verify.MaxConcurrent)
	assert.InDelta(t, 2.0, cfg.Verify.RatePerHost, 0.001)
	assert.Equal(t, 6, cfg.Dedup.MaxLeadership)
	assert.Equal(t, 1, cfg.Dedup.YearTolerance)
	assert.Equal(t, 15, cfg.Score.VerifiedBonus)
	assert.Equal(t, 10, cfg.Score.UntypedPenalty)
	assert.Equal(t, 10, cfg.Score.NonReputablePenalty)
	assert.Equal(t, 75, cfg.Score.UnverifiedThreshold)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "intel.db", cfg.Store.Path)
	assert.Equal(t, 24, cfg.Store.ReportTTLHours)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/intel
log:
  level: debug
  format: console
server:
  port: 9090
dedup:
  max_leadership: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/intel", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Dedup.MaxLeadership)
	// Defaults still apply for unset values
	assert.Equal(t, 15, cfg.Search.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("INTEL_STORE_DRIVER", "postgres")
	t.Setenv("INTEL_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("INTEL_SERVER_PORT", "3000")
	t.Setenv("INTEL_TAVILY_KEY", "tvly-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "tvly-test", cfg.Tavily.Key)
}

func TestLoadSecretsFromEnvOnly(t *testing.T) {
	// Env-only deployments carry every secret this way; none of these keys
	// appear in any config file.
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("INTEL_PERPLEXITY_KEY", "pplx-test")
	t.Setenv("INTEL_ANTHROPIC_KEY", "sk-ant-test")
	t.Setenv("INTEL_STORE_DATABASE_URL", "postgres://localhost/intel")
	t.Setenv("INTEL_WORDLISTS_PATH", "/etc/intel/wordlists.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pplx-test", cfg.Perplexity.Key)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.Key)
	assert.Equal(t, "postgres://localhost/intel", cfg.Store.DatabaseURL)
	assert.Equal(t, "/etc/intel/wordlists.yaml", cfg.WordlistsPath)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func TestLoadWordlists_Defaults(t *testing.T) {
	wl, err := LoadWordlists("")
	require.NoError(t, err)

	assert.Contains(t, wl.KnownTitles, "CEO")
	assert.Contains(t, wl.ReputableSources, "reuters.com")
	assert.Contains(t, wl.RegulatoryBodies, "SEC")
	assert.NotEmpty(t, wl.Soft404Markers)
}

func TestLoadWordlists_OverrideReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordlists.yaml")
	yaml := `
reputable_sources:
  - example-news.test
competitor_domains:
  globex:
    - globex.test
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	wl, err := LoadWordlists(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"example-news.test"}, wl.ReputableSources)
	assert.Equal(t, []string{"globex.test"}, wl.CompetitorDomains["globex"])
	// Lists absent from the file keep their defaults.
	assert.Contains(t, wl.KnownTitles, "CEO")
}

func TestLoadWordlists_MissingFile(t *testing.T) {
	_, err := LoadWordlists(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
