package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the runtime configuration, read from the environment.
type Config struct {
	Port           string
	Env            string
	DBPath         string
	JWTSecret      string
	JWTTTL         time.Duration
	CacheSize      int
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	BcryptCost     int

	UploadDir      string
	UploadBaseURL  string
	UploadMaxBytes int64

	S3 S3Config
}

// S3Config selects the S3-compatible image store when Bucket is set.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

func (c Config) Development() bool { return c.Env == "development" }

// Load reads .env if present, then the environment. A missing JWT secret is
// only tolerated outside production.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		Env:            getenv("APP_ENV", "development"),
		DBPath:         getenv("DB_PATH", "data"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTL:         getDuration("JWT_TTL", 24*time.Hour),
		CacheSize:      getInt("CACHE_SIZE", 1000),
		CacheTTL:       getDuration("CACHE_TTL", 5*time.Minute),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		BcryptCost:     getInt("BCRYPT_COST", 12),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		UploadBaseURL:  getenv("UPLOAD_BASE_URL", "/uploads"),
		UploadMaxBytes: int64(getInt("UPLOAD_MAX_BYTES", 5<<20)),
		S3: S3Config{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          getenv("S3_REGION", "auto"),
			Bucket:          os.Getenv("S3_BUCKET"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
		},
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return cfg, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret"
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil && v > 0 {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil && v > 0 {
		return v
	}
	return def
}
