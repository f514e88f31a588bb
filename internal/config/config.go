// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage, index and notification providers.
const (
	OutputLocal  = "local"
	OutputMemory = "memory"
	OutputGCS    = "gcs"

	IndexFile     = "file"
	IndexPostgres = "postgres"

	NotifyNone   = "none"
	NotifyMemory = "memory"
	NotifyPubSub = "pubsub"
)

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Normalize NormalizeConfig `mapstructure:"normalize"`
	Output    OutputConfig    `mapstructure:"output"`
	Index     IndexConfig     `mapstructure:"index"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// CrawlerConfig governs discovery and fetching.
type CrawlerConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`
	UserAgent       string        `mapstructure:"user_agent"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	Delay           time.Duration `mapstructure:"delay"`
	RespectRobots   bool          `mapstructure:"respect_robots"`
	SitemapPaths    []string      `mapstructure:"sitemap_paths"`
	MaxSitemapDepth int           `mapstructure:"max_sitemap_depth"`
	MaxPages        int           `mapstructure:"max_pages"`
	// MaxRPS caps requests per second per host; 0 disables the limiter.
	MaxRPS float64 `mapstructure:"max_rps"`
	Burst  int     `mapstructure:"burst"`
}

// RetryConfig is the exponential back-off schedule for fetches.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
	Factor     float64       `mapstructure:"factor"`
}

// NormalizeConfig holds regional defaults.
type NormalizeConfig struct {
	DefaultCountryCode  string   `mapstructure:"default_country_code"`
	DefaultCurrency     string   `mapstructure:"default_currency"`
	Timezone            string   `mapstructure:"timezone"`
	KnownCities         []string `mapstructure:"known_cities"`
	LargeGroupThreshold int      `mapstructure:"large_group_threshold"`
}

// OutputConfig selects the artifact blob store.
type OutputConfig struct {
	Provider  string `mapstructure:"provider"`
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// IndexConfig selects where index rows are kept besides index.json.
type IndexConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
}

// NotifyConfig selects the change notification channel.
type NotifyConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MetricsConfig toggles Prometheus collectors.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load builds a Config from disk/environment. Environment variables use the
// KB_ prefix, e.g. KB_CRAWLER_CONCURRENCY.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.concurrency", 3)
	v.SetDefault("crawler.user_agent", "restaurant-knowledge-bot/1.0")
	v.SetDefault("crawler.request_timeout", 15*time.Second)
	v.SetDefault("crawler.delay", 500*time.Millisecond)
	v.SetDefault("crawler.respect_robots", false)
	v.SetDefault("crawler.sitemap_paths", []string{"/sitemap.xml", "/sitemap_index.xml"})
	v.SetDefault("crawler.max_sitemap_depth", 3)
	v.SetDefault("crawler.max_pages", 50)
	v.SetDefault("crawler.max_rps", 2.0)
	v.SetDefault("crawler.burst", 1)
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", 500*time.Millisecond)
	v.SetDefault("retry.max_delay", 10*time.Second)
	v.SetDefault("retry.factor", 2.0)
	v.SetDefault("normalize.default_country_code", "+46")
	v.SetDefault("normalize.default_currency", "SEK")
	v.SetDefault("normalize.timezone", "Europe/Stockholm")
	v.SetDefault("normalize.known_cities", []string{})
	v.SetDefault("normalize.large_group_threshold", 8)
	v.SetDefault("output.provider", OutputLocal)
	v.SetDefault("output.base_dir", "data/out")
	v.SetDefault("output.prefix", "restaurants")
	v.SetDefault("index.provider", IndexFile)
	v.SetDefault("index.table", "restaurant_index")
	v.SetDefault("notify.provider", NotifyNone)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	if c.Crawler.Delay < 0 {
		return fmt.Errorf("crawler.delay must be >= 0")
	}
	if c.Crawler.MaxRPS < 0 {
		return fmt.Errorf("crawler.max_rps must be >= 0")
	}
	if len(c.Crawler.SitemapPaths) == 0 {
		return fmt.Errorf("crawler.sitemap_paths must not be empty")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be >= 0")
	}
	if c.Retry.Factor < 1 {
		return fmt.Errorf("retry.factor must be >= 1")
	}
	switch c.Output.Provider {
	case OutputLocal:
		if c.Output.BaseDir == "" {
			return fmt.Errorf("output.base_dir must be set for the local provider")
		}
	case OutputMemory:
	case OutputGCS:
		if c.Output.GCSBucket == "" {
			return fmt.Errorf("output.gcs_bucket must be set for the gcs provider")
		}
	default:
		return fmt.Errorf("output.provider %q is not supported", c.Output.Provider)
	}
	switch c.Index.Provider {
	case IndexFile:
	case IndexPostgres:
		if c.Index.DSN == "" {
			return fmt.Errorf("index.dsn must be set for the postgres provider")
		}
	default:
		return fmt.Errorf("index.provider %q is not supported", c.Index.Provider)
	}
	switch c.Notify.Provider {
	case NotifyNone, NotifyMemory:
	case NotifyPubSub:
		if c.Notify.ProjectID == "" || c.Notify.Topic == "" {
			return fmt.Errorf("notify.project_id and notify.topic must be set for the pubsub provider")
		}
	default:
		return fmt.Errorf("notify.provider %q is not supported", c.Notify.Provider)
	}
	return nil
}
