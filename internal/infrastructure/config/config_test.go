package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"POS_APP_NAME":                   os.Getenv("POS_APP_NAME"),
		"POS_APP_ENV":                    os.Getenv("POS_APP_ENV"),
		"POS_APP_PORT":                   os.Getenv("POS_APP_PORT"),
		"POS_APP_PUBLIC_URL":             os.Getenv("POS_APP_PUBLIC_URL"),
		"POS_DATABASE_HOST":              os.Getenv("POS_DATABASE_HOST"),
		"POS_DATABASE_PASSWORD":          os.Getenv("POS_DATABASE_PASSWORD"),
		"POS_DATABASE_SSLMODE":           os.Getenv("POS_DATABASE_SSLMODE"),
		"POS_DATABASE_MAX_OPEN_CONNS":    os.Getenv("POS_DATABASE_MAX_OPEN_CONNS"),
		"POS_DATABASE_MAX_IDLE_CONNS":    os.Getenv("POS_DATABASE_MAX_IDLE_CONNS"),
		"POS_JWT_SECRET":                 os.Getenv("POS_JWT_SECRET"),
		"POS_WEBHOOK_CONTACT_EMAIL":      os.Getenv("POS_WEBHOOK_CONTACT_EMAIL"),
		"POS_WEBHOOK_DEDUPE_TTL":         os.Getenv("POS_WEBHOOK_DEDUPE_TTL"),
		"POS_IZETTLE_INVENTORY_URL":      os.Getenv("POS_IZETTLE_INVENTORY_URL"),
		"POS_KAFKA_ENABLED":              os.Getenv("POS_KAFKA_ENABLED"),
		"POS_KAFKA_BROKERS":              os.Getenv("POS_KAFKA_BROKERS"),
		"POS_TELEMETRY_METRICS_EXPORTER": os.Getenv("POS_TELEMETRY_METRICS_EXPORTER"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "paypal-pos", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "http://localhost:8080", cfg.App.PublicURL)
		assert.Equal(t, "paypal_pos", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "https://inventory.izettle.com", cfg.IZettle.InventoryURL)
		assert.Equal(t, "https://pusher.izettle.com", cfg.IZettle.SubscriptionURL)
		assert.Equal(t, 24*time.Hour, cfg.Webhook.DedupeTTL)
		assert.Equal(t, 10*time.Minute, cfg.Sync.Interval)
		assert.Equal(t, 10*time.Minute, cfg.Sync.LockTTL)
		assert.Equal(t, 5*time.Second, cfg.Sync.LockWait)
		assert.Equal(t, "prometheus", cfg.Telemetry.MetricsExporter)
		assert.Equal(t, "paypal-pos", cfg.Telemetry.ServiceName)
		assert.False(t, cfg.Redis.Enabled)
	})

	t.Run("loads values from environment variables with POS prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("POS_APP_NAME", "pos-test")
		os.Setenv("POS_APP_PUBLIC_URL", "https://shop.example.com/")
		os.Setenv("POS_DATABASE_HOST", "testdb.local")
		os.Setenv("POS_WEBHOOK_CONTACT_EMAIL", "ops@example.com")
		os.Setenv("POS_WEBHOOK_DEDUPE_TTL", "2h")
		os.Setenv("POS_IZETTLE_INVENTORY_URL", "http://inventory.test")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pos-test", cfg.App.Name)
		assert.Equal(t, "https://shop.example.com", cfg.App.PublicURL)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, "ops@example.com", cfg.Webhook.ContactEmail)
		assert.Equal(t, 2*time.Hour, cfg.Webhook.DedupeTTL)
		assert.Equal(t, "http://inventory.test", cfg.IZettle.InventoryURL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("POS_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("POS_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown metrics exporter", func(t *testing.T) {
		clearEnv()
		os.Setenv("POS_TELEMETRY_METRICS_EXPORTER", "statsd")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metrics_exporter")
	})

	t.Run("kafka requires brokers", func(t *testing.T) {
		clearEnv()
		os.Setenv("POS_KAFKA_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kafka.brokers")
	})

	t.Run("production requires https public url", func(t *testing.T) {
		clearEnv()
		os.Setenv("POS_APP_ENV", "production")
		os.Setenv("POS_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		os.Setenv("POS_DATABASE_PASSWORD", "secret")
		os.Setenv("POS_DATABASE_SSLMODE", "require")
		os.Setenv("POS_APP_PUBLIC_URL", "http://shop.example.com")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "https")

		os.Setenv("POS_APP_PUBLIC_URL", "https://shop.example.com")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("production requires long jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("POS_APP_ENV", "production")
		os.Setenv("POS_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "pos",
		Password: "p@ss word",
		DBName:   "paypal_pos",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://pos:p%40ss%20word@db:5432/paypal_pos?sslmode=disable", d.DSN())
}

func TestConfig_WebhookDestination(t *testing.T) {
	cfg := &Config{App: AppConfig{PublicURL: "https://shop.example.com"}}

	assert.Equal(t,
		"https://shop.example.com/api/v1/_action/paypal/izettle/webhook/execute/0fa91ce3e96a4bc2be4bd9ce752c3425",
		cfg.WebhookDestination("0fa91ce3e96a4bc2be4bd9ce752c3425"),
	)
}
