package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "local", cfg.Auth.Provider)
	assert.Equal(t, 30, cfg.Tokens.PlanDays)
	assert.Equal(t, 24*time.Hour, cfg.Integrations.CNPJCacheTTL)
	assert.Empty(t, cfg.Redis.Address)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CRM_SERVER_ADDRESS", ":9090")
	t.Setenv("CRM_POSTGRES_DBNAME", "crm_test")
	t.Setenv("CRM_REDIS_ADDRESS", "localhost:6379")
	t.Setenv("CRM_TOKENS_PLAN_DAYS", "45")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "crm_test", cfg.Postgres.DBName)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 45, cfg.Tokens.PlanDays)
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CRM_AUTH_PROVIDER", "firebase")

	_, err := NewConfig()
	require.Error(t, err)
}
