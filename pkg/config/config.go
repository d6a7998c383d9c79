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
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	Storage  StorageConfig
	Geo      GeoConfig
	Capture  CaptureConfig
	Reports  ReportsConfig
	Evidence EvidenceConfig
	Cleanup  CleanupConfig
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
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthConfig holds server-side credential material. Assessor batch
// credentials live in the batches table; this only covers fixed accounts.
type AuthConfig struct {
	AdminUsername     string
	AdminPasswordHash string
	AllowFloating     bool
	FloatingUsername  string
	FloatingPassword  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig selects and configures the photo object store.
type StorageConfig struct {
	Provider string // "cloudinary", "minio" or "local"

	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	LocalDir     string
	LocalBaseURL string

	UploadTimeout time.Duration
}

// GeoConfig tunes the geolocation tracker and reverse geocoder.
type GeoConfig struct {
	GeocoderBaseURL string
	GeocodeInterval time.Duration
	GeocodeTimeout  time.Duration
	UserAgent       string
}

// CaptureConfig bounds capture session lifetimes.
type CaptureConfig struct {
	SessionTTL time.Duration
}

// ReportsConfig covers evidence report rendering.
type ReportsConfig struct {
	SkillHubFallback string
	FetchTimeout     time.Duration
}

// EvidenceConfig tunes the evidence listing cache.
type EvidenceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// CleanupConfig tunes the background photo-cleanup queue.
type CleanupConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
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
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Auth = AuthConfig{
		AdminUsername:     v.GetString("AUTH_ADMIN_USERNAME"),
		AdminPasswordHash: v.GetString("AUTH_ADMIN_PASSWORD_HASH"),
		AllowFloating:     v.GetBool("AUTH_ALLOW_FLOATING_ASSESSOR"),
		FloatingUsername:  v.GetString("AUTH_FLOATING_USERNAME"),
		FloatingPassword:  v.GetString("AUTH_FLOATING_PASSWORD"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Storage = StorageConfig{
		Provider:       v.GetString("STORAGE_PROVIDER"),
		CloudName:      v.GetString("CLOUDINARY_CLOUD_NAME"),
		UploadPreset:   v.GetString("CLOUDINARY_UPLOAD_PRESET"),
		APIKey:         v.GetString("CLOUDINARY_API_KEY"),
		APISecret:      v.GetString("CLOUDINARY_API_SECRET"),
		MinioEndpoint:  v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: v.GetString("MINIO_SECRET_KEY"),
		MinioBucket:    v.GetString("MINIO_BUCKET"),
		MinioUseSSL:    v.GetBool("MINIO_USE_SSL"),
		LocalDir:       v.GetString("STORAGE_LOCAL_DIR"),
		LocalBaseURL:   v.GetString("STORAGE_LOCAL_BASE_URL"),
		UploadTimeout:  parseDuration(v.GetString("STORAGE_UPLOAD_TIMEOUT"), 30*time.Second),
	}

	cfg.Geo = GeoConfig{
		GeocoderBaseURL: v.GetString("GEOCODER_BASE_URL"),
		GeocodeInterval: parseDuration(v.GetString("GEOCODE_MIN_INTERVAL"), 3*time.Second),
		GeocodeTimeout:  parseDuration(v.GetString("GEOCODE_TIMEOUT"), 10*time.Second),
		UserAgent:       v.GetString("GEOCODER_USER_AGENT"),
	}

	cfg.Capture = CaptureConfig{
		SessionTTL: parseDuration(v.GetString("CAPTURE_SESSION_TTL"), 30*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		SkillHubFallback: v.GetString("REPORTS_SKILL_HUB_FALLBACK"),
		FetchTimeout:     parseDuration(v.GetString("REPORTS_FETCH_TIMEOUT"), 20*time.Second),
	}

	cfg.Evidence = EvidenceConfig{
		CacheEnabled: v.GetBool("EVIDENCE_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("EVIDENCE_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Cleanup = CleanupConfig{
		Workers:    v.GetInt("CLEANUP_WORKERS"),
		MaxRetries: v.GetInt("CLEANUP_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("CLEANUP_RETRY_DELAY"), 5*time.Second),
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
	v.SetDefault("DB_NAME", "evidence_api")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "evidence-api")

	v.SetDefault("AUTH_ADMIN_USERNAME", "admin")
	v.SetDefault("AUTH_ADMIN_PASSWORD_HASH", "")
	v.SetDefault("AUTH_ALLOW_FLOATING_ASSESSOR", false)
	v.SetDefault("AUTH_FLOATING_USERNAME", "assessor")
	v.SetDefault("AUTH_FLOATING_PASSWORD", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORAGE_PROVIDER", "local")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_UPLOAD_PRESET", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "evidence-photos")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("STORAGE_LOCAL_BASE_URL", "/uploads")
	v.SetDefault("STORAGE_UPLOAD_TIMEOUT", "30s")

	v.SetDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODE_MIN_INTERVAL", "3s")
	v.SetDefault("GEOCODE_TIMEOUT", "10s")
	v.SetDefault("GEOCODER_USER_AGENT", "evidence-api/1.0")

	v.SetDefault("CAPTURE_SESSION_TTL", "30m")

	v.SetDefault("REPORTS_SKILL_HUB_FALLBACK", "NAC-Bhimavaram")
	v.SetDefault("REPORTS_FETCH_TIMEOUT", "20s")

	v.SetDefault("EVIDENCE_CACHE_ENABLED", false)
	v.SetDefault("EVIDENCE_CACHE_TTL", "5m")

	v.SetDefault("CLEANUP_WORKERS", 1)
	v.SetDefault("CLEANUP_MAX_RETRIES", 3)
	v.SetDefault("CLEANUP_RETRY_DELAY", "5s")
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
