// Package config loads consolectl settings from a YAML file and CONSOLE_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-admin-console/components/listing"
	"github.com/goliatone/go-admin-console/pkg/activity"
	"github.com/goliatone/go-admin-console/pkg/telemetry"
)

// EnvPrefix prefixes every environment override, e.g. CONSOLE_SERVER_ADDR.
const EnvPrefix = "CONSOLE"

var ErrInvalid = errors.New("config: invalid")

// Config holds the console settings.
type Config struct {
	Server struct {
		Addr     string `mapstructure:"addr" yaml:"addr"`
		BasePath string `mapstructure:"base_path" yaml:"base_path"`
	} `mapstructure:"server" yaml:"server"`
	List struct {
		DefaultLimit int `mapstructure:"default_limit" yaml:"default_limit"`
	} `mapstructure:"list" yaml:"list"`
	OTP struct {
		Length        int           `mapstructure:"length" yaml:"length"`
		Cooldown      int           `mapstructure:"cooldown" yaml:"cooldown"`
		VerifyTimeout time.Duration `mapstructure:"verify_timeout" yaml:"verify_timeout"`
		IdleTTL       time.Duration `mapstructure:"idle_ttl" yaml:"idle_ttl"`
		IssuerURL     string        `mapstructure:"issuer_url" yaml:"issuer_url"`
		APIKey        string        `mapstructure:"api_key" yaml:"api_key"`
	} `mapstructure:"otp" yaml:"otp"`
	Fixtures struct {
		Dir string `mapstructure:"dir" yaml:"dir"`
	} `mapstructure:"fixtures" yaml:"fixtures"`
	Chart struct {
		Theme      string        `mapstructure:"theme" yaml:"theme"`
		CacheTTL   time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
		AssetsHost string        `mapstructure:"assets_host" yaml:"assets_host"`
	} `mapstructure:"chart" yaml:"chart"`
	Log struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
	Metrics struct {
		Exporter string        `mapstructure:"exporter" yaml:"exporter"`
		Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	} `mapstructure:"metrics" yaml:"metrics"`
	Activity activity.Config `mapstructure:"activity" yaml:"activity"`
}

var defaults = map[string]any{
	"server.addr":        ":8080",
	"server.base_path":   "/admin",
	"list.default_limit": listing.DefaultLimit,
	"otp.length":         6,
	"otp.cooldown":       30,
	"otp.verify_timeout": "10s",
	"otp.idle_ttl":       "15m",
	"otp.issuer_url":     "",
	"otp.api_key":        "",
	"fixtures.dir":       "",
	"chart.theme":        "",
	"chart.cache_ttl":    "5m",
	"chart.assets_host":  "",
	"log.level":          "info",
	"metrics.exporter":   "",
	"metrics.interval":   "1m",
	"activity.enabled":   true,
	"activity.channel":   activity.DefaultChannel,
}

// Load reads path when it is not empty, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Server.BasePath = normalizeBasePath(cfg.Server.BasePath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, fmt.Errorf("%w: server.addr is required", ErrInvalid))
	}
	if !listing.IsAllowedLimit(c.List.DefaultLimit) {
		errs = append(errs, fmt.Errorf("%w: list.default_limit %d not in %v", ErrInvalid, c.List.DefaultLimit, listing.AllowedLimits))
	}
	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		errs = append(errs, fmt.Errorf("%w: otp.length %d out of range 4..10", ErrInvalid, c.OTP.Length))
	}
	if c.OTP.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("%w: otp.cooldown must not be negative", ErrInvalid))
	}
	if c.OTP.VerifyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: otp.verify_timeout must be positive", ErrInvalid))
	}
	if c.OTP.IdleTTL < 0 {
		errs = append(errs, fmt.Errorf("%w: otp.idle_ttl must not be negative", ErrInvalid))
	}
	switch c.Metrics.Exporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout:
	default:
		errs = append(errs, fmt.Errorf("%w: metrics.exporter %q not in [\"\" stdout]", ErrInvalid, c.Metrics.Exporter))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return level, nil
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	return "/" + strings.Trim(p, "/")
}
