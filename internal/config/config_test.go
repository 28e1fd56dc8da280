package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.Equal(t, "http://localhost:8080", cfg.GetIngestURL(""))
	assert.Equal(t, "https://api.openai.com", cfg.GetClassifyURL(""))
	assert.Equal(t, "gpt-4o-mini", cfg.GetModel(""))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `current_profile: staging
profiles:
  staging:
    ingest_url: https://events.staging.example.com
    classify_url: https://llm.staging.example.com
    model: gpt-4o
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.CurrentProfile)
	assert.Equal(t, "https://events.staging.example.com", cfg.GetIngestURL("staging"))
	assert.Equal(t, "https://llm.staging.example.com", cfg.GetClassifyURL("staging"))
	assert.Equal(t, "gpt-4o", cfg.GetModel("staging"))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RELAY_INGEST_URL", "http://ingest.test:9999")
	t.Setenv("RELAY_MODEL", "llama3")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://ingest.test:9999", cfg.GetIngestURL(""))
	assert.Equal(t, "llama3", cfg.GetModel(""))
}

func TestProfileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `profiles:
  partial:
    ingest_url: http://custom:8080
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://custom:8080", cfg.GetIngestURL("partial"))
	assert.Equal(t, "https://api.openai.com", cfg.GetClassifyURL("partial"))
	assert.Equal(t, "gpt-4o-mini", cfg.GetModel("partial"))
}

func TestUnknownProfileUsesDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:8080", cfg.GetIngestURL("no-such-profile"))
}

func TestSaveProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.SaveProfile("prod", "https://events.example.com", "https://api.openai.com", "gpt-4o"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", reloaded.CurrentProfile)
	assert.Equal(t, "https://events.example.com", reloaded.GetIngestURL("prod"))
	assert.Equal(t, "gpt-4o", reloaded.GetModel("prod"))

	// The current profile resolves without naming it.
	assert.Equal(t, "https://events.example.com", reloaded.GetIngestURL(""))
}

func TestDirHonorsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RELAY_CONFIG_DIR", dir)

	got, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}
