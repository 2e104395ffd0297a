package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Default Values", func(t *testing.T) {
		cfg, err := LoadConfig()
		assert.NoError(t, err)
		assert.Equal(t, "local", cfg.AppEnv)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "memory", cfg.StoreDriver)
		assert.Equal(t, "v18.0", cfg.FBAPIVersion)
		assert.Equal(t, 10, cfg.RateLimitBurst)
	})

	t.Run("Environment Variables", func(t *testing.T) {
		t.Setenv("PORT", "9999")
		t.Setenv("CONFIG_STORE_DRIVER", " Redis ")
		t.Setenv("FB_PIXEL_API_TOKEN", "token-123")

		cfg, err := LoadConfig()
		assert.NoError(t, err)
		assert.Equal(t, "9999", cfg.Port)
		assert.Equal(t, "redis", cfg.StoreDriver)
		assert.Equal(t, "token-123", cfg.FBPixelAPIToken)
	})
}

func TestRestBaseURL(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		_, err := Config{}.RestBaseURL()
		assert.ErrorContains(t, err, "not set")
	})

	t.Run("Strips Leading Equals And Items Suffix", func(t *testing.T) {
		cfg := Config{EdgeConfigRestURL: " =https://api.vercel.com/v1/edge-config/ecfg_1/items/ "}
		base, err := cfg.RestBaseURL()
		require.NoError(t, err)
		assert.Equal(t, "https://api.vercel.com/v1/edge-config/ecfg_1", base.String())
	})

	t.Run("Invalid", func(t *testing.T) {
		cfg := Config{EdgeConfigRestURL: "not a url"}
		_, err := cfg.RestBaseURL()
		assert.ErrorContains(t, err, "is invalid")
	})
}
