// Package config loads the service configuration from the environment.
// Every knob has a default so a bare `go run ./cmd/api` works locally.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Port     int
	GinMode  string
	LogLevel string

	RequestTimeout time.Duration

	CacheEnabled  bool
	PDFCacheTTL   time.Duration
	TypstCacheTTL time.Duration

	Redis Redis

	Typst Typst

	JobWorkers       int
	JobQueueCapacity int
	JobTimeout       time.Duration

	MaxPDFSizeBytes int

	RateLimitPerMinute int
	RateLimitBurst     int
}

// Redis is the KV backend connection block.
type Redis struct {
	Host     string
	Port     int
	DB       int
	Password string
	SSL      bool
}

// Addr returns host:port for the client.
func (r Redis) Addr() string { return fmt.Sprintf("%s:%d", r.Host, r.Port) }

// Typst is the compiler binding block.
type Typst struct {
	BinPath        string
	FontDirs       []string
	CompileTimeout time.Duration
	MaxConcurrent  int
	AcquireTimeout time.Duration
}

// Load reads the environment with defaults applied.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 120)

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("PDF_CACHE_TTL", 86400)
	v.SetDefault("TYPST_CACHE_TTL", 43200)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SSL", false)

	v.SetDefault("TYPST_BIN_PATH", "typst")
	v.SetDefault("TYPST_FONT_DIRS", []string{})
	v.SetDefault("TYPST_TIMEOUT_SECONDS", 30)
	v.SetDefault("MAX_WORKERS", 4)
	v.SetDefault("TYPST_ACQUIRE_TIMEOUT_SECONDS", 10)

	v.SetDefault("JOB_WORKERS", 32)
	v.SetDefault("JOB_QUEUE_CAPACITY", 256)
	v.SetDefault("JOB_TIMEOUT_SECONDS", 300)

	v.SetDefault("MAX_PDF_SIZE_BYTES", 26214400)

	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	return &Config{
		Port:           v.GetInt("PORT"),
		GinMode:        v.GetString("GIN_MODE"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,

		CacheEnabled:  v.GetBool("CACHE_ENABLED"),
		PDFCacheTTL:   time.Duration(v.GetInt("PDF_CACHE_TTL")) * time.Second,
		TypstCacheTTL: time.Duration(v.GetInt("TYPST_CACHE_TTL")) * time.Second,

		Redis: Redis{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			DB:       v.GetInt("REDIS_DB"),
			Password: v.GetString("REDIS_PASSWORD"),
			SSL:      v.GetBool("REDIS_SSL"),
		},

		Typst: Typst{
			BinPath:        v.GetString("TYPST_BIN_PATH"),
			FontDirs:       v.GetStringSlice("TYPST_FONT_DIRS"),
			CompileTimeout: time.Duration(v.GetInt("TYPST_TIMEOUT_SECONDS")) * time.Second,
			MaxConcurrent:  v.GetInt("MAX_WORKERS"),
			AcquireTimeout: time.Duration(v.GetInt("TYPST_ACQUIRE_TIMEOUT_SECONDS")) * time.Second,
		},

		JobWorkers:       v.GetInt("JOB_WORKERS"),
		JobQueueCapacity: v.GetInt("JOB_QUEUE_CAPACITY"),
		JobTimeout:       time.Duration(v.GetInt("JOB_TIMEOUT_SECONDS")) * time.Second,

		MaxPDFSizeBytes: v.GetInt("MAX_PDF_SIZE_BYTES"),

		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
	}
}
