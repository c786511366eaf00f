package cache

import (
	"strings"
	"time"
)

// Config holds the settings for the analysis cache and its Redis backend.
type Config struct {
	// Addr is the host:port of the Redis backend
	Addr string `mapstructure:"addr"`

	// Password is the optional Redis AUTH password
	Password string `mapstructure:"password"`

	// DB selects the Redis logical database
	DB int `mapstructure:"db"`

	// DialTimeout bounds the startup liveness probe and connection dials
	DialTimeout time.Duration `mapstructure:"dial_timeout"`

	// ReadTimeout bounds individual read round trips
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout bounds individual write round trips
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// PoolSize is the maximum number of pooled connections
	PoolSize int `mapstructure:"pool_size"`

	// TTL is the default time-to-live applied to every stored analysis entry
	TTL time.Duration `mapstructure:"ttl"`

	// KeyPrefix namespaces analysis entry keys: <prefix>:<owner>:<resume_fp>:<request_fp>
	KeyPrefix string `mapstructure:"key_prefix"`

	// OwnerIndexPrefix namespaces the per-owner fingerprint sets: <prefix>:<owner>
	OwnerIndexPrefix string `mapstructure:"owner_index_prefix"`

	// ScanCount is the COUNT hint passed to SCAN when enumerating keys
	ScanCount int64 `mapstructure:"scan_count"`
}

// DefaultConfig returns a Config with the defaults used in production:
// a local Redis, 24 hour entry TTL and the analysis/owner_index key layout.
func DefaultConfig() Config {
	return Config{
		Addr:             "localhost:6379",
		DB:               0,
		DialTimeout:      3 * time.Second,
		ReadTimeout:      2 * time.Second,
		WriteTimeout:     2 * time.Second,
		PoolSize:         10,
		TTL:              24 * time.Hour,
		KeyPrefix:        "analysis",
		OwnerIndexPrefix: "owner_index",
		ScanCount:        100,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "must not be empty"}
	}
	if c.DialTimeout <= 0 {
		return &ConfigError{Field: "DialTimeout", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.KeyPrefix == "" {
		return &ConfigError{Field: "KeyPrefix", Message: "must not be empty"}
	}
	if strings.Contains(c.KeyPrefix, keySeparator) {
		return &ConfigError{Field: "KeyPrefix", Message: "must not contain the key separator"}
	}
	if c.OwnerIndexPrefix == "" {
		return &ConfigError{Field: "OwnerIndexPrefix", Message: "must not be empty"}
	}
	if strings.Contains(c.OwnerIndexPrefix, keySeparator) {
		return &ConfigError{Field: "OwnerIndexPrefix", Message: "must not contain the key separator"}
	}
	if c.ScanCount <= 0 {
		return &ConfigError{Field: "ScanCount", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "cache config error in field " + e.Field + ": " + e.Message
}
