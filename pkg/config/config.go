package config

import (
	"errors"
	"strings"
	"time"

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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Windows  WindowConfig
	Weeks    WeekConfig
	Progress ProgressConfig
	Archives ArchiveConfig
	Exports  ExportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// WindowConfig tunes assessment window evaluation defaults.
type WindowConfig struct {
	DefaultGracePeriod time.Duration
	MinDuration        time.Duration
}

// WeekConfig governs caching of derived week data.
type WeekConfig struct {
	CacheTTL time.Duration
}

// ProgressConfig governs progress summary caching.
type ProgressConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ArchiveConfig controls the schedule archive sweep.
type ArchiveConfig struct {
	Enabled   bool
	BatchSize int
}

// ExportConfig controls progress report exports.
type ExportConfig struct {
	Enabled    bool
	MaxRows    int
	PDFTitle   string
	FilePrefix string
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

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Windows = WindowConfig{
		DefaultGracePeriod: parseDuration(v.GetString("WINDOW_DEFAULT_GRACE_PERIOD"), 30*time.Minute),
		MinDuration:        parseDuration(v.GetString("WINDOW_MIN_DURATION"), 15*time.Minute),
	}

	cfg.Weeks = WeekConfig{
		CacheTTL: parseDuration(v.GetString("WEEK_CACHE_TTL"), time.Hour),
	}

	cfg.Progress = ProgressConfig{
		CacheEnabled: v.GetBool("ENABLE_PROGRESS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("PROGRESS_CACHE_TTL"), 5*time.Minute),
	}

	batchSize := v.GetInt("ARCHIVE_BATCH_SIZE")
	if batchSize <= 0 {
		batchSize = 500
	}
	cfg.Archives = ArchiveConfig{
		Enabled:   v.GetBool("ENABLE_ARCHIVES"),
		BatchSize: batchSize,
	}

	cfg.Exports = ExportConfig{
		Enabled:    v.GetBool("ENABLE_EXPORTS"),
		MaxRows:    v.GetInt("EXPORT_MAX_ROWS"),
		PDFTitle:   v.GetString("EXPORT_PDF_TITLE"),
		FilePrefix: v.GetString("EXPORT_FILE_PREFIX"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "lms_schedule")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "lms-schedule-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WINDOW_DEFAULT_GRACE_PERIOD", "30m")
	v.SetDefault("WINDOW_MIN_DURATION", "15m")

	v.SetDefault("WEEK_CACHE_TTL", "1h")
	v.SetDefault("ENABLE_PROGRESS_CACHE", false)
	v.SetDefault("PROGRESS_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_ARCHIVES", false)
	v.SetDefault("ARCHIVE_BATCH_SIZE", 500)

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORT_MAX_ROWS", 5000)
	v.SetDefault("EXPORT_PDF_TITLE", "Progress Report")
	v.SetDefault("EXPORT_FILE_PREFIX", "progress")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
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
