package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	FirebaseProjectID string `mapstructure:"FIREBASE_PROJECT_ID"`
	// FirebaseServiceAccountJSON carries the raw service-account JSON blob.
	// It takes priority over GoogleApplicationCredentials (a file path);
	// with neither set, Application Default Credentials are used.
	FirebaseServiceAccountJSON   string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	GoogleApplicationCredentials string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`

	ClientURL string `mapstructure:"CLIENT_URL"`
	// ClientReceiptURL is the fixed client page every payment return
	// redirects to, for all terminal outcomes.
	ClientReceiptURL string `mapstructure:"CLIENT_RECEIPT_URL"`

	WebpayBaseURL      string `mapstructure:"WEBPAY_BASE_URL"`
	WebpayCommerceCode string `mapstructure:"WEBPAY_COMMERCE_CODE"`
	WebpayAPIKey       string `mapstructure:"WEBPAY_API_KEY"`
	// WebpayReturnURL is the URL the gateway sends the browser back to
	// (this server's /retorno endpoint, reachable from the outside).
	WebpayReturnURL string `mapstructure:"WEBPAY_RETURN_URL"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	// PendingStoreDriver selects where pending transactions live:
	// "memory", "file" or "redis".
	PendingStoreDriver string `mapstructure:"PENDING_STORE_DRIVER"`
	PendingStorePath   string `mapstructure:"PENDING_STORE_PATH"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB"`

	SweepInterval  time.Duration `mapstructure:"SWEEP_INTERVAL"`
	PurgeBatchSize int           `mapstructure:"PURGE_BATCH_SIZE"`
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("WEBPAY_BASE_URL", "https://webpay3gint.transbank.cl")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("PENDING_STORE_DRIVER", "memory")
	viper.SetDefault("PENDING_STORE_PATH", "pending_transactions.json")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SWEEP_INTERVAL", time.Hour)
	viper.SetDefault("PURGE_BATCH_SIZE", 400)

	// Bind environment variables
	viper.BindEnv("PORT")
	viper.BindEnv("GIN_MODE")
	viper.BindEnv("FIREBASE_PROJECT_ID")
	viper.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON")
	viper.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("CLIENT_URL")
	viper.BindEnv("CLIENT_RECEIPT_URL")
	viper.BindEnv("WEBPAY_BASE_URL")
	viper.BindEnv("WEBPAY_COMMERCE_CODE")
	viper.BindEnv("WEBPAY_API_KEY")
	viper.BindEnv("WEBPAY_RETURN_URL")
	viper.BindEnv("GEMINI_API_KEY")
	viper.BindEnv("GEMINI_MODEL")
	viper.BindEnv("PENDING_STORE_DRIVER")
	viper.BindEnv("PENDING_STORE_PATH")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("REDIS_PASSWORD")
	viper.BindEnv("REDIS_DB")
	viper.BindEnv("SWEEP_INTERVAL")
	viper.BindEnv("PURGE_BATCH_SIZE")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// Validate required fields
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.WebpayCommerceCode == "" {
		return nil, errors.New("WEBPAY_COMMERCE_CODE is required")
	}
	if cfg.WebpayAPIKey == "" {
		return nil, errors.New("WEBPAY_API_KEY is required")
	}
	if cfg.WebpayReturnURL == "" {
		return nil, errors.New("WEBPAY_RETURN_URL is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	if cfg.ClientReceiptURL == "" {
		return nil, errors.New("CLIENT_RECEIPT_URL is required")
	}
	switch cfg.PendingStoreDriver {
	case "memory", "file", "redis":
	default:
		return nil, errors.New("PENDING_STORE_DRIVER must be one of: memory, file, redis")
	}
	if cfg.PurgeBatchSize <= 0 || cfg.PurgeBatchSize > 500 {
		// Firestore caps an atomic write batch at 500 operations.
		return nil, errors.New("PURGE_BATCH_SIZE must be between 1 and 500")
	}

	return &cfg, nil
}
