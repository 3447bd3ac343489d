package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8081", cfg.EndpointAddr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, "avatars", cfg.S3Bucket)
	assert.NotEmpty(t, cfg.SecretKey)
}

func TestLoadConfig_Flags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"userservice", "-a", ":9999", "-s", "prod-secret", "-t", "5m", "-r", "120m"}

	cfg := LoadConfig()

	assert.Equal(t, ":9999", cfg.EndpointAddr)
	assert.Equal(t, "prod-secret", cfg.SecretKey)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 120*time.Minute, cfg.RefreshTokenTTL)
}

func TestLoadConfig_SubMinuteTTLSurvivesFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	overlay := map[string]any{"access_token_ttl": "90s"}
	data, err := json.Marshal(overlay)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	// An unrelated flag must not re-round the JSON-set TTL.
	os.Args = []string{"userservice", "-c", path, "-a", ":6666"}

	cfg := LoadConfig()
	assert.Equal(t, 90*time.Second, cfg.AccessTokenTTL)

	// A sub-minute duration is also expressible directly as a flag.
	os.Args = []string{"userservice", "-t", "45s"}
	cfg = LoadConfig()
	assert.Equal(t, 45*time.Second, cfg.AccessTokenTTL)
}

func TestLoadConfig_JSONOverlay(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	overlay := map[string]any{
		"endpoint_addr":     ":7777",
		"secret_key":        "json-secret",
		"access_token_ttl":  "30m",
		"refresh_token_ttl": "48h",
	}
	data, err := json.Marshal(overlay)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	os.Args = []string{"userservice", "-c", path}

	cfg := LoadConfig()

	assert.Equal(t, ":7777", cfg.EndpointAddr)
	assert.Equal(t, "json-secret", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
	// untouched values keep defaults
	assert.Equal(t, "avatars", cfg.S3Bucket)
}

func TestLoadConfig_FlagsWinOverJSON(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	overlay := map[string]any{"endpoint_addr": ":7777"}
	data, err := json.Marshal(overlay)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	os.Args = []string{"userservice", "-c", path, "-a", ":6666"}

	cfg := LoadConfig()
	assert.Equal(t, ":6666", cfg.EndpointAddr)
}
