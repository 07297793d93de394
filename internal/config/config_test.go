package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.AlphaVantage.APIKey = "demo"
	cfg.Prices.CacheTTL = 30 * time.Minute

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.AlphaVantage.APIKey)
	assert.Equal(t, "https://www.alphavantage.co/query", cfg.AlphaVantage.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.AlphaVantage.Timeout)
	assert.Equal(t, time.Hour, cfg.Prices.CacheTTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("prices:\n  cache_ttl: 15m\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.Prices.CacheTTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.AlphaVantage.Timeout)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "base_url: https://www.alphavantage.co/query")
	assert.Contains(t, contents, "timeout: 10s")
	assert.Contains(t, contents, "cache_ttl: 1h0m0s")
	assert.Contains(t, contents, "level: warn")
}

func TestResolve_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AlphaVantage.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestResolve_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvAPIKey, "")
	require.NoError(t, os.Unsetenv(EnvAPIKey))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvAPIKey+"=from-dotenv\n"), 0o600))

	cfg, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.AlphaVantage.APIKey)
}

func TestResolve_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("log:\n  level: loud\n"), 0o600))

	_, err := Resolve(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("prices.cache_ttl", "2h"))
	v, err := cfg.Get("prices.cache_ttl")
	require.NoError(t, err)
	assert.Equal(t, "2h0m0s", v)

	require.NoError(t, cfg.Set("alphavantage.api_key", "k"))
	assert.Equal(t, "k", cfg.AlphaVantage.APIKey)

	require.NoError(t, cfg.Set("log.level", "Info"))
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestGetSet_EnvAliases(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("ALPHAVANTAGE_API_KEY", "your_key_here"))
	v, err := cfg.Get("alphavantage.api_key")
	require.NoError(t, err)
	assert.Equal(t, "your_key_here", v)

	v, err = cfg.Get(EnvLogLevel)
	require.NoError(t, err)
	assert.Equal(t, "warn", v)
}

func TestSet_Rejects(t *testing.T) {
	cfg := Default()

	assert.ErrorIs(t, cfg.Set("nope", "x"), ErrUnknownKey)
	_, err := cfg.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownKey)

	assert.Error(t, cfg.Set("prices.cache_ttl", "soon"))
	assert.Error(t, cfg.Set("prices.cache_ttl", "-1h"))
	assert.Error(t, cfg.Set("log.level", "loud"))
	assert.Error(t, cfg.Set("alphavantage.base_url", "not a url"))
	assert.Equal(t, Default(), cfg, "failed sets leave settings unchanged")
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Len(t, keys, 5)
	assert.Equal(t, "alphavantage.api_key", keys[0])
	for _, k := range keys {
		_, err := Default().Get(k)
		assert.NoError(t, err, k)
	}
}
