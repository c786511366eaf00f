package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "Addr"},
		{"zero dial timeout", func(c *Config) { c.DialTimeout = 0 }, "DialTimeout"},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"negative ttl", func(c *Config) { c.TTL = -time.Hour }, "TTL"},
		{"empty key prefix", func(c *Config) { c.KeyPrefix = "" }, "KeyPrefix"},
		{"separator in key prefix", func(c *Config) { c.KeyPrefix = "analysis:v2" }, "KeyPrefix"},
		{"empty owner index prefix", func(c *Config) { c.OwnerIndexPrefix = "" }, "OwnerIndexPrefix"},
		{"separator in owner index prefix", func(c *Config) { c.OwnerIndexPrefix = "owner:index" }, "OwnerIndexPrefix"},
		{"zero scan count", func(c *Config) { c.ScanCount = 0 }, "ScanCount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
