package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string        `env:"DATABASE_URL"`
	Port               string        `env:"PORT" envDefault:"3000"`
	GoEnv              string        `env:"GO_ENV" envDefault:"development"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat          string        `env:"LOG_FORMAT" envDefault:"json"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	MigrateOnStart     bool          `env:"MIGRATE_ON_START" envDefault:"true"`
	DBMaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	DBMaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"railtrace"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	AWSRegion          string `env:"AWS_REGION" envDefault:"ap-south-1"`
	AWSS3Bucket        string `env:"AWS_S3_BUCKET"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`

	SarvamEnabled bool   `env:"SARVAM_ENABLED" envDefault:"true"`
	SarvamAPIKey  string `env:"SARVAM_API_KEY"`
	SarvamBaseURL string `env:"SARVAM_BASE_URL" envDefault:"https://api.sarvam.ai"`
	SarvamModel   string `env:"SARVAM_MODEL" envDefault:"saarika:v2.5"`

	GeminiEnabled bool   `env:"GEMINI_ENABLED" envDefault:"true"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	AIRequestTimeout time.Duration `env:"AI_REQUEST_TIMEOUT" envDefault:"30s"`

	RedisURL         string        `env:"REDIS_URL"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`

	BootstrapOfficerID       string `env:"BOOTSTRAP_OFFICER_ID"`
	BootstrapOfficerPassword string `env:"BOOTSTRAP_OFFICER_PASSWORD"`
	BootstrapOfficerName     string `env:"BOOTSTRAP_OFFICER_NAME" envDefault:"Administrator"`

	QRImageSize      int `env:"QR_IMAGE_SIZE" envDefault:"256"`
	MaxOrderQuantity int `env:"MAX_ORDER_QUANTITY" envDefault:"5000"`
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", goEnv)
	if err := godotenv.Load(envFile); err != nil {
		// In production, environment variables are set directly
		// so it's okay if .env files don't exist
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = cfg
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" && !c.IsTest() {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.QRImageSize < 64 {
		return fmt.Errorf("QR_IMAGE_SIZE must be at least 64, got %d", c.QRImageSize)
	}
	if c.MaxOrderQuantity < 1 {
		return fmt.Errorf("MAX_ORDER_QUANTITY must be at least 1, got %d", c.MaxOrderQuantity)
	}
	if c.BootstrapOfficerID != "" && !strings.HasPrefix(c.BootstrapOfficerID, "O-") {
		return fmt.Errorf("BOOTSTRAP_OFFICER_ID must start with O-")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// SigningKey returns the HMAC key used for access tokens.
// Outside production an unset secret falls back to a fixed development key.
func (c *Config) SigningKey() []byte {
	if c.JWTSecret == "" {
		return []byte("railtrace-development-secret")
	}
	return []byte(c.JWTSecret)
}

// StorageConfigured reports whether S3 credentials and bucket are present.
func (c *Config) StorageConfigured() bool {
	return c.AWSS3Bucket != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

// GetConfig returns the loaded configuration
func GetConfig() *Config {
	return appConfig
}

// SetConfig sets the configuration (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}
