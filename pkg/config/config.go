package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	CORS     CORSConfig
	Log      LogConfig
	Calendar CalendarConfig
	Import   ImportConfig
	Export   ExportConfig
	Metrics  MetricsConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CalendarConfig seeds the calendar created at boot and caps recurrence
// expansion.
type CalendarConfig struct {
	DefaultName     string
	DefaultTimezone string
	MaxOccurrences  int
}

// ImportConfig bounds CSV imports.
type ImportConfig struct {
	MaxRows int
}

// ExportConfig controls asynchronous export jobs.
type ExportConfig struct {
	StorageDir        string
	WorkerConcurrency int
	WorkerRetries     int
}

// MetricsConfig gates the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Calendar = CalendarConfig{
		DefaultName:     v.GetString("CALENDAR_DEFAULT_NAME"),
		DefaultTimezone: v.GetString("CALENDAR_DEFAULT_TIMEZONE"),
		MaxOccurrences:  v.GetInt("CALENDAR_MAX_OCCURRENCES"),
	}

	cfg.Import = ImportConfig{
		MaxRows: v.GetInt("IMPORT_MAX_ROWS"),
	}

	cfg.Export = ExportConfig{
		StorageDir:        v.GetString("EXPORT_STORAGE_DIR"),
		WorkerConcurrency: v.GetInt("EXPORT_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORT_WORKER_RETRIES"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CALENDAR_DEFAULT_NAME", "default")
	v.SetDefault("CALENDAR_DEFAULT_TIMEZONE", "America/New_York")
	v.SetDefault("CALENDAR_MAX_OCCURRENCES", 5000)

	v.SetDefault("IMPORT_MAX_ROWS", 10000)

	v.SetDefault("EXPORT_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORT_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORT_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_METRICS", true)
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
