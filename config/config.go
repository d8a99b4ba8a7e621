package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"betpool/database"
	"betpool/domain/entities"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// HTTP configuration
	HTTPAddr string

	// Auth configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Wallet configuration
	StartingBalance decimal.Decimal

	// Bet policies
	AllowCreatorAsJudge bool
	NoWinnerPolicy      entities.NoWinnerPolicy
	Location            *time.Location // Zone used for timestamps given without an offset

	// Metrics export, in addition to /metrics
	OTelExporterType   string // "none", "otlp" or "console"
	OTelOTLPEndpoint   string
	OTelExportInterval time.Duration

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		NATSServers: os.Getenv("NATS_SERVERS"),

		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  72 * time.Hour,

		StartingBalance: decimal.Zero,

		AllowCreatorAsJudge: true,
		NoWinnerPolicy:      entities.NoWinnerPolicyForfeit,
		Location:            time.Local,

		OTelExporterType:   getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:   getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportInterval: 60 * time.Second,

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if ttl := os.Getenv("TOKEN_TTL_HOURS"); ttl != "" {
		hours, err := strconv.Atoi(ttl)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("TOKEN_TTL_HOURS must be a positive integer")
		}
		config.TokenTTL = time.Duration(hours) * time.Hour
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		parsed, err := decimal.NewFromString(balance)
		if err != nil || parsed.IsNegative() {
			return nil, fmt.Errorf("STARTING_BALANCE must be a non-negative decimal")
		}
		config.StartingBalance = parsed.Round(2)
	}
	if allow := os.Getenv("ALLOW_CREATOR_AS_JUDGE"); allow != "" {
		parsed, err := strconv.ParseBool(allow)
		if err != nil {
			return nil, fmt.Errorf("ALLOW_CREATOR_AS_JUDGE must be a boolean")
		}
		config.AllowCreatorAsJudge = parsed
	}
	if policy := os.Getenv("NO_WINNER_POLICY"); policy != "" {
		config.NoWinnerPolicy = entities.NoWinnerPolicy(strings.ToLower(strings.TrimSpace(policy)))
		if !config.NoWinnerPolicy.IsValid() {
			return nil, fmt.Errorf("NO_WINNER_POLICY must be %q or %q", entities.NoWinnerPolicyForfeit, entities.NoWinnerPolicyRefund)
		}
	}
	if zone := os.Getenv("LOCAL_TIMEZONE"); zone != "" {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("invalid LOCAL_TIMEZONE: %w", err)
		}
		config.Location = loc
	}

	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		millis, err := strconv.Atoi(interval)
		if err != nil || millis <= 0 {
			return nil, fmt.Errorf("OTEL_EXPORT_INTERVAL_MS must be a positive integer")
		}
		config.OTelExportInterval = time.Duration(millis) * time.Millisecond
	}
	switch config.OTelExporterType {
	case "none", "otlp", "console":
	default:
		return nil, fmt.Errorf("OTEL_EXPORTER_TYPE must be none, otlp or console")
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		HTTPAddr:            ":0",
		JWTSecret:           "test-secret",
		TokenTTL:            time.Hour,
		StartingBalance:     decimal.Zero,
		AllowCreatorAsJudge: true,
		NoWinnerPolicy:      entities.NoWinnerPolicyForfeit,
		Location:            time.UTC,
		OTelExporterType:    "none",
		LogLevel:            "debug",
	}
}
