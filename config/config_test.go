package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 3, cfg.Admission.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.Admission.InitialDelay)
	assert.Equal(t, "enrollment-hub:events", cfg.Redis.StreamKey)
	assert.Equal(t, "@every 15m", cfg.Scheduler.AuditSchedule)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestLoad_BuildsURLFromParts(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:secret@db:5432/enrollment?sslmode=disable", cfg.Database.URL)
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &Config{
		Store:     StoreConfig{Driver: "sqlite"},
		HTTP:      HTTPConfig{Port: 0},
		Admission: AdmissionConfig{MaxAttempts: 0},
		Scheduler: SchedulerConfig{Enabled: true},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "ADMISSION_MAX_ATTEMPTS")
	assert.Contains(t, err.Error(), "SCHEDULER_AUDIT_SCHEDULE")
}

func TestGetEnvSlice(t *testing.T) {
	t.Setenv("TEST_ORIGINS", " http://a , ,http://b")
	assert.Equal(t, []string{"http://a", "http://b"}, getEnvSlice("TEST_ORIGINS", nil))
	assert.Equal(t, []string{"x"}, getEnvSlice("TEST_ORIGINS_UNSET", []string{"x"}))
}
