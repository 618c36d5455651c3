// Package config parses process environment into a typed, immutable Config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every environment-driven knob the server reads at boot.
// Missing variables fall back to their default silently; only a present
// but unparseable integer is a load error.
type Config struct {
	Port              int
	Env               string
	AllowedOrigins    []string
	DisconnectGraceMs int
	TickRate          int
	RespawnDelayMs    int
	World2BaseY       int
	LogPath           string
	TuningPath        string
}

// Default returns the configuration a bare environment produces.
func Default() Config {
	return Config{
		Port:              4000,
		Env:               "development",
		AllowedOrigins:    nil,
		DisconnectGraceMs: 15000,
		TickRate:          60,
		RespawnDelayMs:    1800,
		World2BaseY:       820,
		LogPath:           "app.log",
		TuningPath:        "",
	}
}

// Load reads Config from the process environment, defaulting anything unset.
func Load() (Config, error) {
	cfg := Default()

	if v, ok := os.LookupEnv("PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: PORT: %w", err)
		}
		cfg.Port = n
	}
	if v, ok := os.LookupEnv("NODE_ENV"); ok && v != "" {
		cfg.Env = v
	}
	if v, ok := os.LookupEnv("CLIENT_URL"); ok && v != "" {
		cfg.AllowedOrigins = splitTrim(v)
	}
	if v, ok := os.LookupEnv("DISCONNECT_GRACE_MS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: DISCONNECT_GRACE_MS: %w", err)
		}
		cfg.DisconnectGraceMs = n
	}
	if v, ok := os.LookupEnv("TICK_RATE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: TICK_RATE: %w", err)
		}
		cfg.TickRate = n
	}
	if v, ok := os.LookupEnv("RESPAWN_DELAY_MS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: RESPAWN_DELAY_MS: %w", err)
		}
		cfg.RespawnDelayMs = n
	}
	if v, ok := os.LookupEnv("WORLD2_BASE_Y"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: WORLD2_BASE_Y: %w", err)
		}
		cfg.World2BaseY = n
	}
	if v, ok := os.LookupEnv("LOG_PATH"); ok && v != "" {
		cfg.LogPath = v
	}
	if v, ok := os.LookupEnv("TUNING_PATH"); ok && v != "" {
		cfg.TuningPath = v
	}

	return cfg, nil
}

// IsProduction reports whether Env indicates a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// TickIntervalMs is the wallclock spacing between ticks, floored at 10ms.
func (c Config) TickIntervalMs() int {
	if c.TickRate <= 0 {
		return 1000
	}
	interval := 1000 / c.TickRate
	if interval < 10 {
		return 10
	}
	return interval
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
