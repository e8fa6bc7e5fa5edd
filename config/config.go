// Package config loads the campus configuration from a file and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/nasdf/campus/ref"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

// EnvPrefix is the prefix of environment variables overriding the configuration.
const EnvPrefix = "CAMPUS"

// Config is the campus configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Server   ServerConfig   `mapstructure:"server"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console, json
}

// ResolverConfig configures document fetches.
type ResolverConfig struct {
	Timeout     time.Duration   `mapstructure:"timeout"`
	Concurrency int             `mapstructure:"concurrency"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig limits document reads.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"` // reads per second
	Burst   int     `mapstructure:"burst"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Options returns the fetcher options described by the configuration.
func (c ResolverConfig) Options() []ref.Option {
	opts := []ref.Option{
		ref.WithTimeout(c.Timeout),
		ref.WithConcurrency(c.Concurrency),
	}
	if c.RateLimit.Enabled && c.RateLimit.Rate > 0 {
		burst := c.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, ref.WithRateLimit(rate.NewLimiter(rate.Limit(c.RateLimit.Rate), burst)))
	}
	return opts
}

// Load reads the configuration from the given file path.
//
// When path is empty a config.yaml in the working directory is used if it
// exists. Environment variables prefixed with CAMPUS override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("resolver.timeout", ref.DefaultTimeout.String())
	v.SetDefault("resolver.concurrency", ref.DefaultConcurrency)
	v.SetDefault("resolver.rate_limit.enabled", false)
	v.SetDefault("resolver.rate_limit.rate", 50)
	v.SetDefault("resolver.rate_limit.burst", 100)

	v.SetDefault("server.addr", "")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
}
