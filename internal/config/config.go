package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime settings for the CLI and the HTTP API.
type Config struct {
	Addr           string
	LogLevel       string
	LogFormat      string
	MaxPages       int
	MaxUploadBytes int64
	EnableOCR      bool
	CacheTTL       time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// EnvPrefix is prepended to every environment variable, e.g. STMT_ADDR.
const EnvPrefix = "STMT"

var defaults = map[string]any{
	"addr":             ":8080",
	"log_level":        "info",
	"log_format":       "json",
	"max_pages":        3,
	"max_upload_mb":    32,
	"enable_ocr":       false,
	"cache_ttl":        "10m",
	"rate_limit_rps":   10.0,
	"rate_limit_burst": 20,
}

// Load reads an optional .env file, the environment and, when
// STMT_CONFIG_FILE is set, a config file. Environment wins over the file.
func Load() (*Config, error) {
	// A missing or unreadable .env leaves the process environment as is.
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("config_file"); err != nil {
		return nil, err
	}
	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Addr:           v.GetString("addr"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		MaxPages:       v.GetInt("max_pages"),
		MaxUploadBytes: v.GetInt64("max_upload_mb") << 20,
		EnableOCR:      v.GetBool("enable_ocr"),
		CacheTTL:       v.GetDuration("cache_ttl"),
		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1, got %d", c.MaxPages)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_mb must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive, got %v rps burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}
