package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/haku-324897/askul-navilion/pkg/reconcile"
	"github.com/haku-324897/askul-navilion/pkg/scraper"
	"github.com/haku-324897/askul-navilion/pkg/session"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration for the price check
type Config struct {
	Workers   int             `mapstructure:"workers"`
	Currency  string          `mapstructure:"currency"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Primary   PrimaryConfig   `mapstructure:"primary"`
	Secondary SecondaryConfig `mapstructure:"secondary"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// RateLimitConfig caps requests per site across all workers
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// PrimaryConfig holds the retailer settings
type PrimaryConfig struct {
	ProductURLTemplate string        `mapstructure:"product_url_template"`
	TitleSuffix        string        `mapstructure:"title_suffix"`
	NotFoundTitle      string        `mapstructure:"not_found_title"`
	UnitLabel          string        `mapstructure:"unit_label"`
	BarcodeLabel       string        `mapstructure:"barcode_label"`
	UserAgent          string        `mapstructure:"user_agent"`
	Timeout            time.Duration `mapstructure:"timeout"`
	Delay              time.Duration `mapstructure:"delay"`
}

// SecondaryConfig holds the wholesaler settings
type SecondaryConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	LandingURL         string        `mapstructure:"landing_url"`
	SearchURLTemplate  string        `mapstructure:"search_url_template"`
	ProductURLTemplate string        `mapstructure:"product_url_template"`
	UnitLabel          string        `mapstructure:"unit_label"`
	PackKeywords       []string      `mapstructure:"pack_keywords"`
	UserAgent          string        `mapstructure:"user_agent"`
	Timeout            time.Duration `mapstructure:"timeout"`
	Delay              time.Duration `mapstructure:"delay"`
}

// Load reads configuration from defaults, an optional YAML file and
// PRICECHECK_* environment variables. An empty path searches the working
// directory and ./config for config.yaml; a missing file is not an error
// unless the path was given explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("PRICECHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 2)
	v.SetDefault("currency", "￥")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ratelimit.requests_per_second", 4)
	v.SetDefault("ratelimit.burst", 2)

	v.SetDefault("primary.product_url_template", "https://www.askul.co.jp/p/{id}/")
	v.SetDefault("primary.title_suffix", " - アスクル")
	v.SetDefault("primary.not_found_title", "Not Found")
	v.SetDefault("primary.unit_label", "販売単位")
	v.SetDefault("primary.barcode_label", "JANコード")
	v.SetDefault("primary.user_agent", "Mozilla/5.0")
	v.SetDefault("primary.timeout", "10s")
	v.SetDefault("primary.delay", "500ms")

	v.SetDefault("secondary.base_url", "https://www.ntps-shop.com")
	v.SetDefault("secondary.landing_url", "https://www.ntps-shop.com/shop/wellstech/")
	v.SetDefault("secondary.search_url_template", "https://www.ntps-shop.com/search/res/{barcode}/")
	v.SetDefault("secondary.product_url_template", "https://www.ntps-shop.com/product/{code}/")
	v.SetDefault("secondary.unit_label", "販売単位")
	v.SetDefault("secondary.pack_keywords", []string{"入数", "販売単位", "個数"})
	v.SetDefault("secondary.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("secondary.timeout", "10s")
	v.SetDefault("secondary.delay", "500ms")
}

func validate(config *Config) error {
	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got: %d", config.Workers)
	}

	if _, err := parseLevel(config.Log.Level); err != nil {
		return err
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json', got: %s", config.Log.Format)
	}

	templates := []struct{ key, value, placeholder string }{
		{"primary.product_url_template", config.Primary.ProductURLTemplate, "{id}"},
		{"secondary.search_url_template", config.Secondary.SearchURLTemplate, "{barcode}"},
		{"secondary.product_url_template", config.Secondary.ProductURLTemplate, "{code}"},
	}
	for _, t := range templates {
		if !strings.Contains(t.value, t.placeholder) {
			return fmt.Errorf("%s must contain %s, got: %q", t.key, t.placeholder, t.value)
		}
	}

	if config.Primary.Timeout <= 0 || config.Secondary.Timeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if config.Primary.Delay < 0 || config.Secondary.Delay < 0 {
		return fmt.Errorf("delays must not be negative")
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("unknown log level: %q", s)
	}
	return l, nil
}

// NewLogger builds the process logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *Config) PrimarySession() session.Config {
	return session.Config{
		UserAgent:         c.Primary.UserAgent,
		Timeout:           c.Primary.Timeout,
		Delay:             c.Primary.Delay,
		Parallelism:       c.Workers,
		RequestsPerSecond: c.RateLimit.RequestsPerSecond,
		Burst:             c.RateLimit.Burst,
	}
}

func (c *Config) SecondarySession() session.Config {
	return session.Config{
		UserAgent:         c.Secondary.UserAgent,
		Timeout:           c.Secondary.Timeout,
		Delay:             c.Secondary.Delay,
		Parallelism:       c.Workers,
		RequestsPerSecond: c.RateLimit.RequestsPerSecond,
		Burst:             c.RateLimit.Burst,
	}
}

func (c *Config) PrimaryScraper() scraper.PrimaryConfig {
	return scraper.PrimaryConfig{
		TitleSuffix:   c.Primary.TitleSuffix,
		NotFoundTitle: c.Primary.NotFoundTitle,
		UnitLabel:     c.Primary.UnitLabel,
		BarcodeLabel:  c.Primary.BarcodeLabel,
		Currency:      c.Currency,
	}
}

func (c *Config) SecondaryScraper() scraper.SecondaryConfig {
	return scraper.SecondaryConfig{
		BaseURL:            c.Secondary.BaseURL,
		LandingURL:         c.Secondary.LandingURL,
		SearchURLTemplate:  c.Secondary.SearchURLTemplate,
		ProductURLTemplate: c.Secondary.ProductURLTemplate,
		UnitLabel:          c.Secondary.UnitLabel,
		PackKeywords:       c.Secondary.PackKeywords,
		UserAgent:          c.Secondary.UserAgent,
		Currency:           c.Currency,
	}
}

func (c *Config) Processor() reconcile.Config {
	return reconcile.Config{
		Workers:            c.Workers,
		ProductURLTemplate: c.Primary.ProductURLTemplate,
	}
}
