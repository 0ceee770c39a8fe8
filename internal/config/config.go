package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/newthinker/holdings/internal/analytics"
	"github.com/newthinker/holdings/internal/concentration"
	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/quarter"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Data      DataConfig       `mapstructure:"data"`
	Analytics analytics.Config `mapstructure:"analytics"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DataConfig locates the snapshot documents and the sector table.
type DataConfig struct {
	Source      string   `mapstructure:"source"` // "localfs" or "s3"
	Path        string   `mapstructure:"path"`   // For localfs
	Prefix      string   `mapstructure:"prefix"`
	SectorTable string   `mapstructure:"sector_table"`
	S3          S3Config `mapstructure:"s3"` // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix("HOLDINGS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("reading config: %w", err))
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unmarshaling config: %w", err))
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Data: DataConfig{
			Source: "localfs",
			Path:   "./data",
		},
		Analytics: analytics.Config{
			MinCoveragePercent: quarter.DefaultMinCoveragePercent,
			NeutralityBand:     0.01,
			Concentration:      concentration.DefaultThresholds(),
			TopNSectors:        10,
			TopNConcentration:  20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Data source validation
	switch c.Data.Source {
	case "", "localfs":
		if c.Data.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("data path required when source is localfs"))
		}
	case "s3":
		if c.Data.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when source is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("data source must be localfs or s3, got %q", c.Data.Source))
	}

	// Analytics policy validation
	a := c.Analytics
	if a.MinCoveragePercent <= 0 || a.MinCoveragePercent > 100 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_coverage_percent must be in (0, 100], got %g", a.MinCoveragePercent))
	}
	if a.NeutralityBand < 0 || a.NeutralityBand >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("neutrality_band must be in [0, 1), got %g", a.NeutralityBand))
	}
	if t := a.Concentration; t.Medium <= 0 || t.Medium >= t.High || t.High > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("concentration thresholds need 0 < medium < high <= 1, got %g/%g", t.Medium, t.High))
	}
	if a.TopNSectors < 0 || a.TopNConcentration < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("result limits cannot be negative"))
	}

	return nil
}
