package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds ambient configuration for the checker.
// Values are loaded by Viper from a .env file and/or environment variables;
// per-run parameters (version, loader, input file) come from CLI flags.
type Config struct {
	UserAgent       string `mapstructure:"USERAGENT"`
	ModrinthAPIKey  string `mapstructure:"MODRINTH_API_KEY"`
	CachePath       string `mapstructure:"CACHE_PATH"`
	CacheTTLMinutes int    `mapstructure:"CACHE_TTL_MINUTES"`
	CacheDisabled   bool   `mapstructure:"CACHE_DISABLED"`
}

// CacheTTL returns the response cache lifetime as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)   // Path to look for the config file in
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // REQUIRED if the config file does not have the extension in the name

	vip_err := viper.ReadInConfig()
	if _, ok := vip_err.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vip_err != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vip_err)
	}

	// Bind environment variables automatically.
	viper.AutomaticEnv()

	vip_err = viper.BindEnv("useragent", "USERAGENT")
	if vip_err != nil {
		slog.Warn("Unable to bind USERAGENT env var", "error", vip_err)
	}
	vip_err = viper.BindEnv("modrinth_api_key", "MODRINTH_API_KEY")
	if vip_err != nil {
		slog.Warn("Unable to bind MODRINTH_API_KEY env var", "error", vip_err)
	}
	vip_err = viper.BindEnv("cache_path", "CACHE_PATH")
	if vip_err != nil {
		slog.Warn("Unable to bind CACHE_PATH env var", "error", vip_err)
	}
	vip_err = viper.BindEnv("cache_ttl_minutes", "CACHE_TTL_MINUTES")
	if vip_err != nil {
		slog.Warn("Unable to bind CACHE_TTL_MINUTES env var", "error", vip_err)
	}
	vip_err = viper.BindEnv("cache_disabled", "CACHE_DISABLED")
	if vip_err != nil {
		slog.Warn("Unable to bind CACHE_DISABLED env var", "error", vip_err)
	}

	vip_err = viper.Unmarshal(&config)
	if vip_err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vip_err)
	}

	processConfigDefaults(&config)

	return config, nil
}

// processConfigDefaults fills in defaults for anything the environment left unset.
func processConfigDefaults(config *Config) {
	if config.UserAgent == "" {
		config.UserAgent = "modrinth-mod-checker/dev (unknown-user)"
		slog.Warn("USERAGENT not set in config or environment, using default.")
	}
	if config.CachePath == "" {
		config.CachePath = "modrinth_cache.db"
	}
	if config.CacheTTLMinutes <= 0 {
		config.CacheTTLMinutes = 60
	}

	// Viper doesn't handle bool defaults from env well without explicit SetDefault,
	// so check the raw string value before trusting the unmarshalled field.
	cacheDisabledStr := viper.GetString("CACHE_DISABLED")
	if cacheDisabledStr == "" {
		config.CacheDisabled = false
	} else {
		disabled, err := strconv.ParseBool(cacheDisabledStr)
		if err != nil {
			slog.Warn("Invalid value for CACHE_DISABLED ('"+cacheDisabledStr+"'), defaulting to false.", "error", err)
			config.CacheDisabled = false
		} else {
			config.CacheDisabled = disabled
		}
	}
}
