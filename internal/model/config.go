package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the webhook HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LineConfig holds non-secret LINE Messaging API settings. The channel
// secret and access token are loaded through the credential package.
type LineConfig struct {
	APIBase string `mapstructure:"api_base" yaml:"api_base"`
}

// WeatherConfig holds settings for the CWA open-data weather lookup.
type WeatherConfig struct {
	APIBase    string `mapstructure:"api_base" yaml:"api_base"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// StoreConfig selects the task database. ":memory:" keeps everything in
// process memory, which is the default.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server   ServerConfig  `mapstructure:"server" yaml:"server"`
	Line     LineConfig    `mapstructure:"line" yaml:"line"`
	Weather  WeatherConfig `mapstructure:"weather" yaml:"weather"`
	Store    StoreConfig   `mapstructure:"store" yaml:"store"`
	Log      LogConfig     `mapstructure:"log" yaml:"log"`
	Timezone string        `mapstructure:"timezone" yaml:"timezone"`
}

const (
	defaultServerAddr     = ":5000"
	defaultLineAPIBase    = "https://api.line.me"
	defaultWeatherAPIBase = "https://opendata.cwa.gov.tw/api"
	defaultWeatherTimeout = 10
	defaultStorePath      = ":memory:"
	defaultLogLevel       = "info"
	defaultTimezone       = "Asia/Taipei"
)

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mood-assistant/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mood-assistant", "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Server:   ServerConfig{Addr: defaultServerAddr},
		Line:     LineConfig{APIBase: defaultLineAPIBase},
		Weather:  WeatherConfig{APIBase: defaultWeatherAPIBase, TimeoutSec: defaultWeatherTimeout},
		Store:    StoreConfig{Path: defaultStorePath},
		Log:      LogConfig{Level: defaultLogLevel},
		Timezone: defaultTimezone,
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Every key can be overridden from the environment with the MOOD_ prefix
// (e.g. MOOD_SERVER_ADDR). If the file does not exist, defaults and
// environment overrides are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MOOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.addr", defaultServerAddr)
	v.SetDefault("line.api_base", defaultLineAPIBase)
	v.SetDefault("weather.api_base", defaultWeatherAPIBase)
	v.SetDefault("weather.timeout_sec", defaultWeatherTimeout)
	v.SetDefault("store.path", defaultStorePath)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.development", false)
	v.SetDefault("timezone", defaultTimezone)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Weather.TimeoutSec <= 0 {
		cfg.Weather.TimeoutSec = defaultWeatherTimeout
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("line", cfg.Line)
	v.Set("weather", cfg.Weather)
	v.Set("store", cfg.Store)
	v.Set("log", cfg.Log)
	v.Set("timezone", cfg.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// Location resolves the configured timezone, falling back to the local
// zone when it cannot be loaded.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
