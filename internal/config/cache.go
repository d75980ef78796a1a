package config

import (
    "os"
    "strconv"
    "time"
)

// CacheConfig defines settings for the menu response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  TTL controls entry lifetime and MaxBodyBytes caps the size
// of responses worth caching (the menu payloads are small, the cap is a
// safety net).
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        TTL:          parseDur(getenv("CACHE_TTL", "60s")),
        Prefix:       getenv("CACHE_PREFIX", "cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "262144")),
    }
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
