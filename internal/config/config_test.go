package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SB_LIVEKIT_URL", "ws://localhost:7880")
	t.Setenv("SB_LIVEKIT_API_KEY", "devkey")
	t.Setenv("SB_LIVEKIT_API_SECRET", "devsecret")
	t.Setenv("SB_SESSION_LIFETIME", "30m")
	t.Setenv("SB_API_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.APIListenAddress)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.APIAllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.SessionLifetime)
	assert.Equal(t, 6*time.Hour, cfg.LiveKitTokenTTL)
	assert.Equal(t, 10*time.Second, cfg.PlatformTimeout)
	assert.Equal(t, 10, cfg.CredentialsHashCost)
	assert.False(t, cfg.IsEnvProduction())
	assert.True(t, cfg.IsMetricsEnabled())
}

func TestLoadFromEnvRequiresLiveKit(t *testing.T) {
	for _, key := range []string{"SB_LIVEKIT_URL", "SB_LIVEKIT_API_KEY", "SB_LIVEKIT_API_SECRET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestStringRedactsSecret(t *testing.T) {
	cfg := &Config{LiveKitAPISecret: "topsecret"}
	assert.NotContains(t, cfg.String(), "topsecret")
	assert.Equal(t, "topsecret", cfg.LiveKitAPISecret)
}
