package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/api/v1", cfg.Server.BasePath)
	assert.Equal(t, 15*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.Client.BaseURL)
	assert.Equal(t, uint32(5), cfg.Client.BreakerFailures)
	assert.Contains(t, []string{TokenFileName, ".crewboard-token"}, filepath.Base(cfg.Client.TokenFile))
	assert.NoError(t, cfg.ValidateServer())
	assert.NoError(t, cfg.ValidateClient())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("CREWBOARD_API_URL", "https://crew.example.com/api/v1")
	t.Setenv("CREWBOARD_TIMEOUT", "3s")
	t.Setenv("CREWBOARD_TIMEZONE", "Europe/Budapest")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "https://crew.example.com/api/v1", cfg.Client.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)

	loc, err := cfg.Client.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Budapest", loc.String())
}

func TestValidateServer(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.App.Environment = "production"
	assert.Error(t, cfg.ValidateServer(), "default secret must be rejected in production")

	cfg.JWT.Secret = "s3cret"
	assert.NoError(t, cfg.ValidateServer())

	cfg.Server.Port = 0
	assert.Error(t, cfg.ValidateServer())
}

func TestValidateClientRejectsUnknownTimezone(t *testing.T) {
	cfg := &Config{Client: ClientConfig{BaseURL: "http://x", Timeout: time.Second, Timezone: "Mars/Olympus"}}
	assert.Error(t, cfg.ValidateClient())
}
