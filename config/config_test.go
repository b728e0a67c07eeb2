package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MONGO_TRANSACTIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "pgmanager", cfg.DatabaseName)
	assert.False(t, cfg.MongoTransactions)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "inr", cfg.Currency)
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := Config{Env: "production", DatabaseName: "pg", TokenTTLHours: 1, JWTSecret: defaultJWTSecret, CORSOrigins: "http://a.test"}
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "a-real-secret"
	require.NoError(t, cfg.Validate())

	cfg.Env = "development"
	cfg.JWTSecret = defaultJWTSecret
	require.NoError(t, cfg.Validate())

	cfg.CORSOrigins = " , "
	require.Error(t, cfg.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
}

func TestTrustedProxies(t *testing.T) {
	cfg := Config{Env: "development", DatabaseName: "pg", TokenTTLHours: 1, CORSOrigins: "http://a.test"}
	assert.Empty(t, cfg.TrustedProxies())
	require.NoError(t, cfg.Validate())

	cfg.TrustedProxiesCSV = "10.0.0.0/8, 192.168.1.10"
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.TrustedProxies())
	require.NoError(t, cfg.Validate())

	cfg.TrustedProxiesCSV = "10.0.0.0/8,proxy.internal"
	require.Error(t, cfg.Validate())
}
