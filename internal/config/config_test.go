package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", c.HTTP.Bind)
	assert.Equal(t, 8080, c.HTTP.Port)
	assert.Equal(t, "finboard-gateway", c.Auth.Issuer)
	assert.Equal(t, 60, c.Auth.SessionTTLMins)
	assert.Equal(t, int64(10<<20), c.Uploads.MaxBytes)
	assert.Equal(t, "info", c.Logging.Level)
}

func TestLoad_Values(t *testing.T) {
	raw := `
http:
  bind: 127.0.0.1
  port: 9090
auth:
  provider_url: https://auth.example.com
  session_secret: s3cret
rates:
  url: https://rates.example.com
  fake_rates: true
logging:
  level: debug
  json: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", c.HTTP.Bind)
	assert.Equal(t, 9090, c.HTTP.Port)
	assert.Equal(t, "https://auth.example.com", c.Auth.ProviderURL)
	assert.True(t, c.Rates.Fake)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.True(t, c.Logging.JSON)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
