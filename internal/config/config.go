package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port     string
	Mode     string
	LogLevel string

	// MoMo gateway configuration
	MoMo MoMoConfig

	// Backend API configuration (program and user services)
	Backend BackendConfig

	// IPN processing
	IPNProcessingTimeout   time.Duration
	SubscriptionPeriodDays int
	TransactionCacheTTL    time.Duration

	// Database configuration
	DatabaseURL                  string
	ReconciliationJournalEnabled bool

	// Redis configuration
	RedisURL string

	// Auth configuration
	AdminAPIKey   string
	AuthJWTSecret string

	// Upload configuration
	Upload UploadConfig

	// Brevo email configuration
	BrevoAPIKey              string
	BrevoFromEmail           string
	ReconciliationAlertEmail string

	// Sentry configuration
	SentryDSN         string
	SentryEnvironment string
}

// MoMoConfig holds the gateway credentials and endpoints
type MoMoConfig struct {
	PartnerCode    string
	AccessKey      string
	SecretKey      string
	Endpoint       string
	RequestType    string
	Lang           string
	OrderInfoBrand string
	RedirectURL    string
	IPNURL         string
	Timeout        time.Duration
}

// BackendConfig holds the internal services endpoint
type BackendConfig struct {
	BaseURL                string
	APIKey                 string
	Timeout                time.Duration
	MembershipCheckTimeout time.Duration
}

// UploadConfig holds the object storage settings
type UploadConfig struct {
	Bucket        string
	Region        string
	URLExpiry     time.Duration
	MaxFileSizeMB int
}

// Load reads configuration from the environment, seeded by an optional .env file
func Load() (*Config, error) {
	// Ignore error if .env file doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Mode:     getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		MoMo: MoMoConfig{
			PartnerCode:    getEnv("MOMO_PARTNER_CODE", ""),
			AccessKey:      getEnv("MOMO_ACCESS_KEY", ""),
			SecretKey:      getEnv("MOMO_SECRET_KEY", ""),
			Endpoint:       getEnv("MOMO_ENDPOINT", ""),
			RequestType:    getEnv("MOMO_REQUEST_TYPE", "captureWallet"),
			Lang:           getEnv("MOMO_LANG", "vi"),
			OrderInfoBrand: getEnv("MOMO_ORDER_INFO_BRAND", "LeafLungs"),
			RedirectURL:    getEnv("FRONTEND_REDIRECT_URL", ""),
			IPNURL:         getEnv("IPN_URL", ""),
			Timeout:        getEnvSeconds("MOMO_TIMEOUT_SECONDS", 30),
		},
		Backend: BackendConfig{
			BaseURL:                strings.TrimRight(getEnv("BACKEND_API_URL", ""), "/"),
			APIKey:                 getEnv("BACKEND_API_KEY", ""),
			Timeout:                getEnvSeconds("BACKEND_TIMEOUT_SECONDS", 10),
			MembershipCheckTimeout: getEnvSeconds("MEMBERSHIP_CHECK_TIMEOUT_SECONDS", 5),
		},
		IPNProcessingTimeout:         getEnvSeconds("IPN_PROCESSING_TIMEOUT_SECONDS", 25),
		SubscriptionPeriodDays:       getEnvInt("SUBSCRIPTION_PERIOD_DAYS", 30),
		TransactionCacheTTL:          time.Duration(getEnvInt("TRANSACTION_CACHE_TTL_MINUTES", 10)) * time.Minute,
		DatabaseURL:                  getEnv("DATABASE_URL", ""),
		ReconciliationJournalEnabled: getEnvBool("RECONCILIATION_JOURNAL_ENABLED", true),
		RedisURL:                     getEnv("REDIS_URL", ""),
		AdminAPIKey:                  getEnv("ADMIN_API_KEY", ""),
		AuthJWTSecret:                getEnv("AUTH_JWT_SECRET", ""),
		Upload: UploadConfig{
			Bucket:        getEnv("S3_BUCKET_NAME", ""),
			Region:        getEnv("AWS_REGION", "ap-southeast-1"),
			URLExpiry:     getEnvSeconds("UPLOAD_URL_EXPIRY_SECONDS", 300),
			MaxFileSizeMB: getEnvInt("UPLOAD_MAX_FILE_SIZE_MB", 50),
		},
		BrevoAPIKey:              getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:           getEnv("BREVO_FROM_EMAIL", ""),
		ReconciliationAlertEmail: getEnv("RECONCILIATION_ALERT_EMAIL", ""),
		SentryDSN:                getEnv("SENTRY_DSN", ""),
		SentryEnvironment:        getEnv("SENTRY_ENVIRONMENT", "development"),
	}

	return cfg, nil
}

// Validate returns the names of missing settings the payment paths depend on.
// The server still starts without them; affected requests degrade instead.
func (c *Config) Validate() []string {
	required := []struct {
		key   string
		value string
	}{
		{"MOMO_PARTNER_CODE", c.MoMo.PartnerCode},
		{"MOMO_ACCESS_KEY", c.MoMo.AccessKey},
		{"MOMO_SECRET_KEY", c.MoMo.SecretKey},
		{"MOMO_ENDPOINT", c.MoMo.Endpoint},
		{"BACKEND_API_URL", c.Backend.BaseURL},
		{"BACKEND_API_KEY", c.Backend.APIKey},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	return missing
}

// SubscriptionPeriod is the renewal period applied to a paid notification
func (c *Config) SubscriptionPeriod() time.Duration {
	return time.Duration(c.SubscriptionPeriodDays) * 24 * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
