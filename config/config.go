// Package config holds server configuration and environment loading.
package config

import (
	"os"
	"strconv"
)

// Config holds the lounge server configuration.
type Config struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	MaxHistory      int    `json:"max_history"`
	FeedCapacity    int    `json:"feed_capacity"`
	SendBuffer      int    `json:"send_buffer"`
	ReadBufferSize  int    `json:"read_buffer_size"`
	WriteBufferSize int    `json:"write_buffer_size"`
}

// Default returns the default server configuration.
func Default() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            3000,
		MaxHistory:      100,
		FeedCapacity:    100,
		SendBuffer:      256,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// FromEnv loads configuration from environment variables, falling back to
// defaults for any missing or unparseable values.
func FromEnv() *Config {
	cfg := Default()

	if host := os.Getenv("LOUNGE_HOST"); host != "" {
		cfg.Host = host
	}
	cfg.Port = intEnv("PORT", cfg.Port)
	cfg.MaxHistory = intEnv("MAX_HISTORY", cfg.MaxHistory)
	cfg.FeedCapacity = intEnv("FEED_CAPACITY", cfg.FeedCapacity)
	cfg.SendBuffer = intEnv("SEND_BUFFER", cfg.SendBuffer)
	return cfg
}

func intEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}
