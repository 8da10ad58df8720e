package filtercatalog

import (
	"time"

	"bike-recommender/internal/matching"
)

type Config struct {
	Timeout time.Duration
	// MaxResults caps the matches returned in job variables; 0 returns all.
	// Inputs may ask for fewer.
	MaxResults int
	Policy     matching.UnparsablePolicy
	// CacheEnabled labels load metrics as cache hits or misses.
	CacheEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		MaxResults: 200,
		Policy:     matching.UnparsableReject,
	}
}
