package config

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/storefront?sslmode=disable")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("ADMIN_EMAILS", "root@example.com,ops@example.com")

	cfg, err := LoadConfig(quietLogger())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPPort)
	assert.Equal(t, ":50051", cfg.GrpcPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"root@example.com", "ops@example.com"}, cfg.AdminEmails)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.Equal(t, "2023-08-01", cfg.Payment.APIVersion)
	assert.Equal(t, 10*time.Second, cfg.Payment.Timeout)
	assert.Contains(t, cfg.Payment.ReturnURL, "{order_id}")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/storefront")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("HTTP_PORT", ":9090")
	t.Setenv("CASHFREE_BASE_URL", "https://api.cashfree.com/pg")
	t.Setenv("CASHFREE_TIMEOUT", "3s")

	cfg, err := LoadConfig(quietLogger())
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPPort)
	assert.Equal(t, "https://api.cashfree.com/pg", cfg.Payment.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")

	_, err := LoadConfig(quietLogger())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabaseURL: "postgres://db/storefront",
			JWTSecret:   "0123456789abcdef",
			JWTTTL:      time.Hour,
			Payment:     PaymentConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no database", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"zero ttl", func(c *Config) { c.JWTTTL = 0 }, "JWT_TTL"},
		{"zero gateway timeout", func(c *Config) { c.Payment.Timeout = 0 }, "CASHFREE_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
