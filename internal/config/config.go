// Package config loads the handful of environment-driven tunables the
// fabric dispatcher and transport layer need at start-up.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Vivekmasona/fmconnect/internal/logging"
)

// Config holds every start-time tunable for the server. All fields have
// sensible defaults and may be overridden by environment variables.
type Config struct {
	Port string

	Croot int
	Cnode int

	HeartbeatTimeout  time.Duration
	HeartbeatSweep    time.Duration
	RebalanceInterval time.Duration

	WSReadLimitBytes int64
	WSWriteTimeout   time.Duration
	WSPongWait       time.Duration
	WSPingInterval   time.Duration
}

// Addr returns the listen address for http.Server, deriving it from Port.
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Load reads Config from the environment, falling back to documented defaults
// for anything unset or unparsable.
func Load() Config {
	pingInterval := envDurationOrDefault("FM_WS_PING_INTERVAL", 20*time.Second)
	pongWait := envDurationOrDefault("FM_WS_PONG_WAIT", 45*time.Second)
	if pingInterval >= pongWait {
		pingInterval = pongWait / 2
	}

	return Config{
		Port: envOrDefault("PORT", "3000"),

		Croot: envIntOrDefault("FM_CROOT", 2),
		Cnode: envIntOrDefault("FM_CNODE", 2),

		HeartbeatTimeout:  envDurationOrDefault("FM_HEARTBEAT_TIMEOUT", 15*time.Second),
		HeartbeatSweep:    envDurationOrDefault("FM_HEARTBEAT_SWEEP", 5*time.Second),
		RebalanceInterval: envDurationOrDefault("FM_REBALANCE_INTERVAL", 8*time.Second),

		WSReadLimitBytes: int64(envIntOrDefault("FM_WS_READ_LIMIT_BYTES", 1024*1024)),
		WSWriteTimeout:   envDurationOrDefault("FM_WS_WRITE_TIMEOUT", 4*time.Second),
		WSPongWait:       pongWait,
		WSPingInterval:   pingInterval,
	}
}

// envLookup trims the named variable and reports whether it was set at
// all, so every typed helper below shares the same blank-means-unset rule.
func envLookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", false
	}
	return v, true
}

func envOrDefault(key, fallback string) string {
	if v, ok := envLookup(key); ok {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	raw, ok := envLookup(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		logging.Printf("config", "invalid int for %s=%q, falling back to %d", key, raw, fallback)
		return fallback
	}
	return parsed
}

func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw, ok := envLookup(key)
	if !ok {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		logging.Printf("config", "invalid duration for %s=%q, falling back to %s", key, raw, fallback)
		return fallback
	}
	return parsed
}
