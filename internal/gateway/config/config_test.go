package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, "http://user-service:8081", cfg.UserServiceURL)
	assert.Contains(t, cfg.ExemptPathPrefixes, "/api/auth/login")
	assert.Contains(t, cfg.ExemptPathPrefixes, "/health")
	assert.NotEmpty(t, cfg.SecretKey)
}

func TestLoadConfig_Flags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"gateway", "-a", ":9999", "-s", "prod-secret", "-u", "http://users:1234"}

	cfg := LoadConfig()

	assert.Equal(t, ":9999", cfg.EndpointAddr)
	assert.Equal(t, "prod-secret", cfg.SecretKey)
	assert.Equal(t, "http://users:1234", cfg.UserServiceURL)
}

func TestLoadConfig_JSONOverlay(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	overlay := map[string]any{
		"endpoint_addr":        ":7777",
		"secret_key":           "json-secret",
		"exempt_path_prefixes": []string{"/ping"},
	}
	data, err := json.Marshal(overlay)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	os.Args = []string{"gateway", "-c", path}

	cfg := LoadConfig()

	assert.Equal(t, ":7777", cfg.EndpointAddr)
	assert.Equal(t, "json-secret", cfg.SecretKey)
	assert.Equal(t, []string{"/ping"}, cfg.ExemptPathPrefixes)
	// untouched values keep defaults
	assert.Equal(t, "http://user-service:8081", cfg.UserServiceURL)
}
