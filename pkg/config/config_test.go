package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("peopledesk")
	require.NoError(t, err)

	assert.Equal(t, "peopledesk", cfg.ServiceName)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "tenant_", cfg.Tenant.DBPrefix)
	assert.Equal(t, 128, cfg.Tenant.MaxCachedHandles)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "peopledesk_central")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")
	t.Setenv("TENANT_DB_PREFIX", "pd_")
	t.Setenv("TENANT_MAX_CACHED_HANDLES", "16")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load("peopledesk")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "peopledesk_central", cfg.DB.DBName)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "pd_", cfg.Tenant.DBPrefix)
	assert.Equal(t, 16, cfg.Tenant.MaxCachedHandles)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDSNBuilders(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")

	cfg, err := config.Load("peopledesk")
	require.NoError(t, err)

	assert.Contains(t, cfg.DB.GetDSN(), "dbname=peopledesk")
	assert.Contains(t, cfg.DB.TenantDSN("tenant_acme"), "dbname=tenant_acme")
	assert.Contains(t, cfg.DB.TenantDSN("tenant_acme"), "password=s3cret")
}
