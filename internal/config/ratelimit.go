package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig configures the fixed-window request limiter applied to
// the ticket endpoints.  Limit is the number of requests allowed per
// Window for a single client key.
type RateLimitConfig struct {
    Enabled bool
    Limit   int
    Window  time.Duration
    Prefix  string
}

// LoadRateLimitConfig builds a RateLimitConfig from environment variables,
// clamping nonsensical values back to usable defaults.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Limit:   envInt("RATE_LIMIT_REQUESTS", 60),
        Window:  envDur("RATE_LIMIT_WINDOW", time.Minute),
        Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
    }
    if cfg.Limit < 1 {
        cfg.Limit = 1
    }
    if cfg.Window <= 0 {
        cfg.Window = time.Minute
    }
    return cfg
}

func envBool(k string, d bool) bool {
    switch os.Getenv(k) {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
