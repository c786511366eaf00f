// Package config loads the service configuration from a YAML file and
// RESUMATCH_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/resumatch/analysis-cache/pkg/cache"
)

// APIConfig holds the HTTP server settings for the operational API
type APIConfig struct {
	ListenAddress string        `mapstructure:"listen_address"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	BasePath      string        `mapstructure:"base_path"`
	LogRequests   bool          `mapstructure:"log_requests"`
}

// Config holds the complete application configuration
type Config struct {
	API   APIConfig    `mapstructure:"api"`
	Cache cache.Config `mapstructure:"cache"`
}

// Load loads configuration from file and environment variables. The config
// file is optional when the environment provides everything.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	configFile := os.Getenv("RESUMATCH_CONFIG_FILE")
	if configFile == "" {
		configFile = "configs/config.yaml"
	}
	v.SetConfigFile(configFile)

	v.SetEnvPrefix("RESUMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.listen_address", ":8080")
	v.SetDefault("api.read_timeout", 30*time.Second)
	v.SetDefault("api.write_timeout", 30*time.Second)
	v.SetDefault("api.idle_timeout", 90*time.Second)
	v.SetDefault("api.base_path", "/api/v1")
	v.SetDefault("api.log_requests", true)

	// Cache defaults mirror cache.DefaultConfig
	defaults := cache.DefaultConfig()
	v.SetDefault("cache.addr", defaults.Addr)
	v.SetDefault("cache.password", defaults.Password)
	v.SetDefault("cache.db", defaults.DB)
	v.SetDefault("cache.dial_timeout", defaults.DialTimeout)
	v.SetDefault("cache.read_timeout", defaults.ReadTimeout)
	v.SetDefault("cache.write_timeout", defaults.WriteTimeout)
	v.SetDefault("cache.pool_size", defaults.PoolSize)
	v.SetDefault("cache.ttl", defaults.TTL)
	v.SetDefault("cache.key_prefix", defaults.KeyPrefix)
	v.SetDefault("cache.owner_index_prefix", defaults.OwnerIndexPrefix)
	v.SetDefault("cache.scan_count", defaults.ScanCount)
}
