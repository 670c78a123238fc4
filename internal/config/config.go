package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/universe"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Analysis  AnalysisConfig    `mapstructure:"analysis"`
	Collector CollectorConfig   `mapstructure:"collector"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Regions   []universe.Region `mapstructure:"regions"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Mode   string `mapstructure:"mode"`
	APIKey string `mapstructure:"api_key"`
}

// AnalysisConfig holds the defaults applied when a request leaves them out.
type AnalysisConfig struct {
	RiskFreeRate float64 `mapstructure:"risk_free_rate"` // annual fraction, 0.06 = 6%
	Period       string  `mapstructure:"period"`
	Region       string  `mapstructure:"region"`
	Interval     string  `mapstructure:"interval"`
}

type CollectorConfig struct {
	Source            string        `mapstructure:"source"` // "yahoo" or "csvfile"
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Path              string        `mapstructure:"path"` // csvfile directory
}

// CacheConfig controls caching of fetched price history.
type CacheConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
	// WarmSchedule is a cron spec for prefetching the universe's history
	// while serving. Empty disables warming.
	WarmSchedule string `mapstructure:"warm_schedule"`
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

// Load reads configuration from file, layered over Defaults. An empty path
// skips the file; PERFSCOPE_* environment variables (and a .env file in the
// working directory) still apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Support environment variable overrides
	v.SetEnvPrefix("PERFSCOPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.api_key", "")
	v.SetDefault("analysis.risk_free_rate", d.Analysis.RiskFreeRate)
	v.SetDefault("analysis.period", d.Analysis.Period)
	v.SetDefault("analysis.region", d.Analysis.Region)
	v.SetDefault("analysis.interval", d.Analysis.Interval)
	v.SetDefault("collector.source", d.Collector.Source)
	v.SetDefault("collector.base_url", "")
	v.SetDefault("collector.timeout", d.Collector.Timeout)
	v.SetDefault("collector.requests_per_second", d.Collector.RequestsPerSecond)
	v.SetDefault("collector.burst", d.Collector.Burst)
	v.SetDefault("collector.path", "")
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.warm_schedule", "")
	v.SetDefault("cache.s3.bucket", "")
	v.SetDefault("cache.s3.endpoint", "")
	v.SetDefault("cache.s3.region", "")
	v.SetDefault("cache.s3.access_key", "")
	v.SetDefault("cache.s3.secret_key", "")
	v.SetDefault("cache.s3.prefix", "")
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Analysis: AnalysisConfig{
			RiskFreeRate: 0.06,
			Period:       "1y",
			Region:       "US",
			Interval:     "1d",
		},
		Collector: CollectorConfig{
			Source:            "yahoo",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 2,
			Burst:             1,
		},
		Cache: CacheConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    ".perfscope/cache",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Universe returns the configured regions, or the built-in ones when none
// are configured.
func (c *Config) Universe() *universe.Universe {
	if len(c.Regions) == 0 {
		return universe.Default()
	}
	return universe.New(c.Regions...)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Analysis validation
	rf := c.Analysis.RiskFreeRate
	if math.IsNaN(rf) || rf < 0 || rf >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk_free_rate must be a fraction in [0, 1), got %v", rf))
	}
	if c.Analysis.Period != "" {
		if _, err := universe.ParsePeriod(c.Analysis.Period); err != nil {
			return core.WrapError(core.ErrConfigInvalid, err)
		}
	}
	if c.Analysis.Region != "" {
		if _, err := c.Universe().Lookup(c.Analysis.Region); err != nil {
			return core.WrapError(core.ErrConfigInvalid, err)
		}
	}
	for _, r := range c.Regions {
		if r.Name == "" || r.Benchmark.Symbol == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("every region needs a name and a benchmark symbol"))
		}
	}

	// Collector validation
	switch c.Collector.Source {
	case "", "yahoo":
	case "csvfile":
		if c.Collector.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("collector path required when source is csvfile"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown collector source %q", c.Collector.Source))
	}
	if c.Collector.RequestsPerSecond < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("requests_per_second cannot be negative, got %v", c.Collector.RequestsPerSecond))
	}

	// Cache validation
	if c.Cache.Enabled {
		switch c.Cache.Type {
		case "localfs":
			if c.Cache.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("cache path required when type is localfs"))
			}
		case "s3":
			if c.Cache.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when cache type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown cache type %q", c.Cache.Type))
		}
		if c.Cache.WarmSchedule != "" {
			if _, err := cron.ParseStandard(c.Cache.WarmSchedule); err != nil {
				return core.WrapError(core.ErrConfigInvalid,
					fmt.Errorf("invalid cache warm_schedule %q: %w", c.Cache.WarmSchedule, err))
			}
		}
	}

	return nil
}
