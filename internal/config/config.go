package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all tool settings, populated from environment variables.
type Config struct {
	WorkDir   string
	LogLevel  string
	LogFormat string
	LogFile   string

	// MetricsAddr enables the ops HTTP endpoint when non-empty.
	MetricsAddr string

	// Swath upsampling ("explode") configuration.
	Explode       bool
	ExplodeFactor int

	// LonMonotonic applies the antimeridian longitude fix. Opt-in only.
	LonMonotonic bool

	// Swath-ready announcements; disabled when no brokers are configured.
	AnnounceBrokers []string
	AnnounceTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	factor, err := parseExplodeFactor()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		WorkDir:         envOrDefault("WORK_DIR", "."),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		LogFile:         os.Getenv("LOG_FILE"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		Explode:         envBool("EXPLODE"),
		ExplodeFactor:   factor,
		LonMonotonic:    envBool("LON_MONOTONIC"),
		AnnounceBrokers: parseBrokers(os.Getenv("ANNOUNCE_BROKERS")),
		AnnounceTopic:   envOrDefault("ANNOUNCE_TOPIC", "swath-ready"),
	}

	if cfg.WorkDir == "" {
		return nil, errors.New("WORK_DIR is required")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if len(cfg.AnnounceBrokers) > 0 && cfg.AnnounceTopic == "" {
		return nil, errors.New("ANNOUNCE_BROKERS is set but ANNOUNCE_TOPIC is empty")
	}

	return cfg, nil
}

// AnnounceEnabled reports whether swath-ready announcements are configured.
func (c *Config) AnnounceEnabled() bool { return len(c.AnnounceBrokers) > 0 }

func parseExplodeFactor() (int, error) {
	s := os.Getenv("EXPLODE_FACTOR")
	if s == "" {
		return 64, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid EXPLODE_FACTOR %q", s)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	return os.Getenv(key) == "true"
}
