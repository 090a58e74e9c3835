package config

import (
	"time"

	"github.com/rpattn/leadcrm/internal/db"
)

// Config is the full process configuration.
type Config struct {
	Database  db.Config
	Server    ServerConfig
	Log       LogConfig
	Ingestion IngestionConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	RunMigrations  bool
}

// LogConfig controls logrus output and file rotation.
type LogConfig struct {
	Level      string
	Format     string // json or text
	Output     string // stdout or file
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
	Caller     bool
}

// IngestionConfig bounds bulk uploads.
type IngestionConfig struct {
	MaxUploadBytes  int64
	DefaultTemplate string
}

// RateLimitConfig throttles the upload endpoint. UploadRPS <= 0 disables it.
type RateLimitConfig struct {
	UploadRPS   float64
	UploadBurst int
}

// MetricsConfig exposes the prometheus handler.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		Database: db.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   120 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:5174"},
			RunMigrations:  true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			FilePath:   "logs/leadcrm.log",
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
		Ingestion: IngestionConfig{
			MaxUploadBytes:  32 << 20,
			DefaultTemplate: "leads",
		},
		RateLimit: RateLimitConfig{
			UploadRPS:   2,
			UploadBurst: 5,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
