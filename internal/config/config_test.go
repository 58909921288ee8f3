package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperAppliesDefaults(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "memory")
	v.Set("JWT_ACCESS_SECRET", "secret")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, 12*time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, "petition-notifications", cfg.Notify.Stream)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, 1, cfg.Notify.MaxRetries)
	assert.Equal(t, 3, cfg.Notify.WebhookAttempts)
}

func TestNotifyRetryLayersAreIndependent(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "memory")
	v.Set("JWT_ACCESS_SECRET", "secret")
	v.Set("NOTIFY_MAX_RETRIES", 0)
	v.Set("NOTIFY_WEBHOOK_ATTEMPTS", 5)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Notify.MaxRetries)
	assert.Equal(t, 5, cfg.Notify.WebhookAttempts)
}

func TestFromViperParsesValues(t *testing.T) {
	v := viper.New()
	v.Set("DB_DSN", "postgres://localhost/petitions")
	v.Set("JWT_ACCESS_SECRET", "secret")
	v.Set("JWT_ACCESS_TTL", "30m")
	v.Set("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	v.Set("NOTIFY_WORKERS", 4)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, 4, cfg.Notify.Workers)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
		errMsg string
	}{
		{name: "postgres without dsn", values: map[string]string{"JWT_ACCESS_SECRET": "s"}, errMsg: "DB_DSN is required"},
		{name: "missing secret", values: map[string]string{"STORE_DRIVER": "memory"}, errMsg: "JWT_ACCESS_SECRET is required"},
		{name: "unknown driver", values: map[string]string{"STORE_DRIVER": "mysql", "JWT_ACCESS_SECRET": "s"}, errMsg: "STORE_DRIVER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tc.values {
				v.Set(k, val)
			}
			_, err := fromViper(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
