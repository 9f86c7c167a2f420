package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SWEEP_INTERVAL", "")
	t.Setenv("AUDIT_BUFFER", "")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 256, cfg.AuditBuffer)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_PORT", "")
	t.Setenv("COMPLETED_SESSION_TTL", "90s")
	t.Setenv("CATALOG_TIMEOUT", "not-a-duration")
	t.Setenv("SUBSCRIBER_BUFFER", "8")
	t.Setenv("AUDIT_BUFFER", "-3")

	cfg := Load()
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, 90*time.Second, cfg.CompletedTTL)
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, 8, cfg.SubscriberBuffer)
	assert.Equal(t, 256, cfg.AuditBuffer)
}
