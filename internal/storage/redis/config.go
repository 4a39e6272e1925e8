package redis

import "time"

const defaultKeyPrefix = "settle"

// Config holds Redis connection and retention settings
type Config struct {
	// URL is a redis:// connection URL
	URL string

	PoolSize     int
	MinIdleConns int

	// KeyPrefix namespaces every key. Empty means "settle".
	KeyPrefix string

	// ClosedRoomTTL expires the member list of a closed room after the given
	// duration. The room record itself is kept, so the room still reads as
	// closed with no members. Zero keeps member lists forever.
	ClosedRoomTTL time.Duration
}

// DefaultConfig returns the connection defaults for a local Redis
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		KeyPrefix:    defaultKeyPrefix,
	}
}
