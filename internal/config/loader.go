package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. LEADCRM_DATABASE_HOST.
const EnvPrefix = "LEADCRM"

var envFiles = []string{".env", ".env.local"}

// Load reads config.yaml from configPath (optional), then applies .env files
// and environment overrides on top of the defaults.
func Load(configPath string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("database host and dbname are required")
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("invalid database port %d", c.Database.Port)
	}
	if c.Ingestion.MaxUploadBytes <= 0 {
		return fmt.Errorf("ingestion.max_upload_bytes must be positive, got %d", c.Ingestion.MaxUploadBytes)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	if c.RateLimit.UploadRPS > 0 && c.RateLimit.UploadBurst <= 0 {
		return errors.New("ratelimit.upload_burst must be positive when upload_rps is set")
	}
	return nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.dbname", d.Database.DBName)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.max_conns", d.Database.MaxConns)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.run_migrations", d.Server.RunMigrations)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.file_path", d.Log.FilePath)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("log.caller", d.Log.Caller)

	v.SetDefault("ingestion.max_upload_bytes", d.Ingestion.MaxUploadBytes)
	v.SetDefault("ingestion.default_template", d.Ingestion.DefaultTemplate)

	v.SetDefault("ratelimit.upload_rps", d.RateLimit.UploadRPS)
	v.SetDefault("ratelimit.upload_burst", d.RateLimit.UploadBurst)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

func fromViper(v *viper.Viper) Config {
	var cfg Config

	cfg.Database.Host = v.GetString("database.host")
	cfg.Database.Port = v.GetInt("database.port")
	cfg.Database.User = v.GetString("database.user")
	cfg.Database.Password = v.GetString("database.password")
	cfg.Database.DBName = v.GetString("database.dbname")
	cfg.Database.SSLMode = v.GetString("database.sslmode")
	cfg.Database.MaxConns = v.GetInt32("database.max_conns")

	cfg.Server.Addr = v.GetString("server.addr")
	cfg.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	cfg.Server.WriteTimeout = v.GetDuration("server.write_timeout")
	cfg.Server.IdleTimeout = v.GetDuration("server.idle_timeout")
	cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	cfg.Server.RunMigrations = v.GetBool("server.run_migrations")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.Log.Output = v.GetString("log.output")
	cfg.Log.FilePath = v.GetString("log.file_path")
	cfg.Log.MaxSize = v.GetInt("log.max_size")
	cfg.Log.MaxBackups = v.GetInt("log.max_backups")
	cfg.Log.MaxAge = v.GetInt("log.max_age")
	cfg.Log.Compress = v.GetBool("log.compress")
	cfg.Log.Caller = v.GetBool("log.caller")

	cfg.Ingestion.MaxUploadBytes = v.GetInt64("ingestion.max_upload_bytes")
	cfg.Ingestion.DefaultTemplate = v.GetString("ingestion.default_template")

	cfg.RateLimit.UploadRPS = v.GetFloat64("ratelimit.upload_rps")
	cfg.RateLimit.UploadBurst = v.GetInt("ratelimit.upload_burst")

	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	cfg.Metrics.Path = v.GetString("metrics.path")

	return cfg
}
