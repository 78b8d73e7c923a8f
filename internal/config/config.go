// Package config loads service configuration from file, environment,
// and defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Dart   DartConfig   `mapstructure:"dart"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DartConfig configures the upstream registry provider.
type DartConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// Load reads configuration from an optional config file, a .env file when
// present, and DARTLENS_-prefixed environment variables, in increasing
// precedence.
func Load(configPath string) (*Config, error) {
	// A .env file in the working directory seeds the environment; absence
	// is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("server.addr", ":8400")
	v.SetDefault("dart.api_key", "")
	v.SetDefault("log.verbose", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("dartlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.dartlens")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("DARTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// overrideFromEnv applies the unprefixed credential and verbosity
// variables, which take precedence over file values.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("DART_API_KEY"); key != "" {
		cfg.Dart.APIKey = key
	}
	if verbose := os.Getenv("LOG_VERBOSE"); verbose != "" {
		cfg.Log.Verbose = verbose == "1" || strings.EqualFold(verbose, "true")
	}
}
