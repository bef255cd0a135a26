package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 100, cfg.MaxHistory)
	assert.Equal(t, 100, cfg.FeedCapacity)
	assert.Equal(t, 256, cfg.SendBuffer)
	assert.Equal(t, 1024, cfg.ReadBufferSize)
	assert.Equal(t, 1024, cfg.WriteBufferSize)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOUNGE_HOST", "127.0.0.1")
	t.Setenv("PORT", "8081")
	t.Setenv("MAX_HISTORY", "50")
	t.Setenv("FEED_CAPACITY", "25")
	t.Setenv("SEND_BUFFER", "128")

	cfg := FromEnv()
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 50, cfg.MaxHistory)
	assert.Equal(t, 25, cfg.FeedCapacity)
	assert.Equal(t, 128, cfg.SendBuffer)
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, Default(), cfg)
}

func TestFromEnvInvalidValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("MAX_HISTORY", "-5")

	cfg := FromEnv()
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 100, cfg.MaxHistory)
}
