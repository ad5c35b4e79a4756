package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// HostTokenTTL bounds how long a relayed host token is kept. The
	// tokens themselves carry a six-month expiration, so the default
	// matches that window. Zero means no expiry.
	HostTokenTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		HostTokenTTL: 6 * 30 * 24 * time.Hour,
	}
}
