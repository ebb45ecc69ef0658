package config

import (
	"time"

	"github.com/spf13/viper"
)

// CacheConfig controls the Redis response cache on public reads.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	IgnoreQuery  bool // key on the path only
	MaxBodyBytes int  // larger responses are served but not stored
}

// LoadCacheConfig reads CACHE_*.  Writes purge the whole prefix and a read
// that overlapped a purge is not stored, so the TTL only matters when Redis
// failed during a purge.
func LoadCacheConfig(v *viper.Viper) CacheConfig {
	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_TTL", "10s")
	v.SetDefault("CACHE_PREFIX", "rifa:cache")
	v.SetDefault("CACHE_IGNORE_QUERY", false)
	v.SetDefault("CACHE_MAX_BODY_BYTES", 1<<20)

	cc := CacheConfig{
		Enabled:      v.GetBool("CACHE_ENABLED"),
		TTL:          v.GetDuration("CACHE_TTL"),
		Prefix:       v.GetString("CACHE_PREFIX"),
		IgnoreQuery:  v.GetBool("CACHE_IGNORE_QUERY"),
		MaxBodyBytes: v.GetInt("CACHE_MAX_BODY_BYTES"),
	}
	if cc.TTL <= 0 {
		cc.TTL = 10 * time.Second
	}
	return cc
}
