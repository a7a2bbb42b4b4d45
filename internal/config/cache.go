package config

import "time"

// CacheConfig defines settings for the poster response cache.  Caching is
// off when Enabled is false or no Redis client is available.  Responses
// larger than MaxBodyBytes are served but not stored.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 10*time.Minute),
        Prefix:       envStr("CACHE_PREFIX", "cache:posters"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}

// IdempotencyConfig controls the Idempotency-Key guard on booking creation.
type IdempotencyConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
    Methods []string
}

// LoadIdempotencyConfig reads IDEMPOTENCY_* variables.
func LoadIdempotencyConfig() IdempotencyConfig {
    return IdempotencyConfig{
        Enabled: envBool("IDEMPOTENCY_ENABLED", true),
        TTL:     envDur("IDEMPOTENCY_TTL", 24*time.Hour),
        Prefix:  envStr("IDEMPOTENCY_PREFIX", "idem:booking"),
        Methods: envList("IDEMPOTENCY_METHODS", "POST"),
    }
}
