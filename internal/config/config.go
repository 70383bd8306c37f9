package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joshua-takyi/gylounge/internal/helpers"
)

const (
	DataStoreSupabase = "supabase"
	DataStorePostgres = "postgres"
	DataStoreMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DataStore              string
	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	DatabaseURL            string
	SeedFile               string

	MongoDBURI      string
	MongoDBDatabase string

	RedisAddr         string
	RedisPassword     string
	RateLimitBurst    int
	RateLimitInterval time.Duration // one token is added back per interval

	ResendAPIKey              string
	ResendFrom                string
	BookingNotificationEmails string

	MembershipFeeGHS          string
	BankTransferAccountName   string
	BankTransferAccountNumber string
	BankTransferBankName      string
	BankTransferInstructions  string

	CSRFAuthKey    string
	AllowedOrigins []string
	RedirectPath   string

	ReconcileAfter time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),

		DataStore:              strings.ToLower(getEnvWithDefault("DATA_STORE", DataStoreSupabase)),
		SupabaseURL:            os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:        os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseJWTSecret:      os.Getenv("SUPABASE_JWT_SECRET"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		SeedFile:               os.Getenv("SEED_FILE"),

		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBDatabase: getEnvWithDefault("MONGODB_DATABASE", "gylounge"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ResendAPIKey:              os.Getenv("RESEND_API_KEY"),
		ResendFrom:                os.Getenv("RESEND_FROM"),
		BookingNotificationEmails: os.Getenv("BOOKING_NOTIFICATION_EMAILS"),

		MembershipFeeGHS:          os.Getenv("MEMBERSHIP_FEE_GHS"),
		BankTransferAccountName:   os.Getenv("BANK_TRANSFER_ACCOUNT_NAME"),
		BankTransferAccountNumber: os.Getenv("BANK_TRANSFER_ACCOUNT_NUMBER"),
		BankTransferBankName:      os.Getenv("BANK_TRANSFER_BANK_NAME"),
		BankTransferInstructions:  os.Getenv("BANK_TRANSFER_INSTRUCTIONS"),

		CSRFAuthKey:    os.Getenv("CSRF_AUTH_KEY"),
		AllowedOrigins: helpers.SplitList(getEnvWithDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		RedirectPath:   getEnvWithDefault("REDIRECT_PATH", "/home"),
	}

	var err error
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnvWithDefault("RATE_LIMIT_BURST", "10")); err != nil || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer")
	}
	if cfg.RateLimitInterval, err = time.ParseDuration(getEnvWithDefault("RATE_LIMIT_INTERVAL", "6s")); err != nil || cfg.RateLimitInterval <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_INTERVAL must be a positive duration")
	}
	if cfg.ReconcileAfter, err = time.ParseDuration(getEnvWithDefault("RECONCILE_AFTER", "15m")); err != nil || cfg.ReconcileAfter <= 0 {
		return nil, fmt.Errorf("RECONCILE_AFTER must be a positive duration")
	}

	// Validate required fields
	switch cfg.DataStore {
	case DataStoreSupabase:
		if cfg.SupabaseURL == "" {
			return nil, fmt.Errorf("SUPABASE_URL is required")
		}
		if cfg.SupabaseServiceRoleKey == "" {
			return nil, fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
		}
	case DataStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case DataStoreMemory:
	default:
		return nil, fmt.Errorf("DATA_STORE must be one of %s, %s, %s", DataStoreSupabase, DataStorePostgres, DataStoreMemory)
	}
	if cfg.CSRFAuthKey != "" && len(cfg.CSRFAuthKey) != 32 {
		return nil, fmt.Errorf("CSRF_AUTH_KEY must be 32 bytes")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
