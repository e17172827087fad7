package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"

	MediaS3    = "s3"
	MediaLocal = "local"
)

type Config struct {
	Port string
	Env  string

	StorageDriver string
	DatabaseDSN   string
	DBMigrate     bool

	MediaDriver   string
	MediaFolder   string
	MediaLocalDir string
	MediaLocalURL string

	S3Region    string
	S3Bucket    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	StripeAPISecret string
	PaymentCurrency string

	CORSOrigins    []string
	AuthRateRPS    float64
	AuthRateBurst  int
	MaxUploadBytes int64
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Port: getEnv("PORT", "3000"),
		Env:  getEnv("ENV", "development"),

		StorageDriver: getEnv("STORAGE_DRIVER", StorageMySQL),
		DatabaseDSN:   getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/brocante?parseTime=true"),
		DBMigrate:     getBool("DB_MIGRATE", true, &errs),

		MediaDriver:   getEnv("MEDIA_DRIVER", MediaS3),
		MediaFolder:   getEnv("MEDIA_FOLDER", "offers"),
		MediaLocalDir: getEnv("MEDIA_LOCAL_DIR", "./media"),

		S3Region:    getEnv("S3_REGION", "eu-west-3"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		StripeAPISecret: getEnv("STRIPE_API_SECRET", ""),
		PaymentCurrency: strings.ToLower(getEnv("PAYMENT_CURRENCY", "eur")),

		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		AuthRateRPS:    getFloat("AUTH_RATE_RPS", 5, &errs),
		AuthRateBurst:  getInt("AUTH_RATE_BURST", 10, &errs),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 10<<20, &errs)),
	}
	cfg.MediaLocalURL = getEnv("MEDIA_LOCAL_URL", "http://localhost:"+cfg.Port+"/media")

	switch cfg.StorageDriver {
	case StorageMySQL, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMySQL, StorageMemory, cfg.StorageDriver))
	}
	switch cfg.MediaDriver {
	case MediaS3:
		if cfg.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET must be set when MEDIA_DRIVER is s3"))
		}
	case MediaLocal:
	default:
		errs = append(errs, fmt.Errorf("MEDIA_DRIVER must be %q or %q, got %q", MediaS3, MediaLocal, cfg.MediaDriver))
	}
	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	if cfg.IsProduction() {
		if cfg.StripeAPISecret == "" {
			errs = append(errs, errors.New("STRIPE_API_SECRET must be set in production environment"))
		}
		if cfg.StorageDriver == StorageMemory {
			errs = append(errs, errors.New("STORAGE_DRIVER=memory is not allowed in production environment"))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
