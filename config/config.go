package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	HTTPPort    string `envconfig:"HTTP_PORT"    default:":8080"`
	GrpcPort    string `envconfig:"GRPC_PORT"    default:":50051"` // health checks only
	LogLevel    string `envconfig:"LOG_LEVEL"    default:"info"`

	JWTSecret   string        `envconfig:"JWT_SECRET"   required:"true"`
	JWTTTL      time.Duration `envconfig:"JWT_TTL"      default:"24h"`
	AdminEmails []string      `envconfig:"ADMIN_EMAILS"`

	Payment PaymentConfig
}

type PaymentConfig struct {
	BaseURL    string        `envconfig:"CASHFREE_BASE_URL"    default:"https://sandbox.cashfree.com/pg"`
	AppID      string        `envconfig:"CASHFREE_APP_ID"`
	SecretKey  string        `envconfig:"CASHFREE_SECRET_KEY"`
	APIVersion string        `envconfig:"CASHFREE_API_VERSION" default:"2023-08-01"`
	Timeout    time.Duration `envconfig:"CASHFREE_TIMEOUT"     default:"10s"`
	ReturnURL  string        `envconfig:"PAYMENT_RETURN_URL"   default:"http://localhost:5173/payment-status?order_id={order_id}"`
	Currency   string        `envconfig:"PAYMENT_CURRENCY"     default:"INR"`
}

// LoadConfig reads an optional .env file and then the process environment.
// The result is meant to be built once in main and passed down explicitly.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		logger.Warnf("Error loading .env file (but continuing): %v", err)
	} else if err == nil {
		logger.Info("Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s", cfg.HTTPPort, cfg.GrpcPort, cfg.LogLevel)
	if cfg.Payment.AppID == "" || cfg.Payment.SecretKey == "" {
		logger.Warn("Configuration: Cashfree credentials are not set, payment session calls will be rejected upstream")
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("configuration error: DATABASE_URL is not set")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("configuration error: JWT_SECRET must be at least 16 characters")
	}
	if c.JWTTTL <= 0 {
		return errors.New("configuration error: JWT_TTL must be positive")
	}
	if c.Payment.Timeout <= 0 {
		return errors.New("configuration error: CASHFREE_TIMEOUT must be positive")
	}
	return nil
}
