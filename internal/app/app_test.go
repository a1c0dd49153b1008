package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/config"
	"github.com/alem-hub/enrollment-hub/internal/app"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/scheduler/jobs"
	"github.com/alem-hub/enrollment-hub/pkg/logger"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:            "enrollment-hub",
			Environment:     config.EnvDevelopment,
			Version:         "test",
			Location:        time.UTC,
			ShutdownTimeout: time.Second,
		},
		Store:     config.StoreConfig{Driver: config.StoreMemory},
		Redis:     config.RedisConfig{Disabled: true},
		Admission: config.AdmissionConfig{MaxAttempts: 2, InitialDelay: time.Millisecond},
		Scheduler: config.SchedulerConfig{
			Enabled:       true,
			AuditSchedule: "@every 1h",
			JobTimeout:    5 * time.Second,
		},
		Observability: config.ObservabilityConfig{LogLevel: "error", LogFormat: "json"},
	}
}

func TestNew_MemoryStore(t *testing.T) {
	cfg := memoryConfig()
	a, err := app.New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.Bus)
	assert.Nil(t, a.Stream, "redis is disabled")

	status := a.Health.Check(context.Background())
	assert.Equal(t, "test", status.Version)

	admission := a.AdmissionConfig()
	assert.Equal(t, 2, admission.MaxAttempts)
	assert.Equal(t, time.Millisecond, admission.InitialDelay)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store.Driver = "sqlite"

	_, err := app.New(context.Background(), cfg, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestNewScheduler_AuditRunsOnEmptyStore(t *testing.T) {
	a, err := app.New(context.Background(), memoryConfig(), logger.Nop())
	require.NoError(t, err)
	defer a.Close()

	sched, err := a.NewScheduler()
	require.NoError(t, err)

	result, err := sched.RunNow(context.Background(), jobs.AuditInvariantsJobName)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Manual)
}

func TestNewScheduler_BadSchedule(t *testing.T) {
	cfg := memoryConfig()
	cfg.Scheduler.AuditSchedule = "every now and then"

	a, err := app.New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.NewScheduler()
	require.Error(t, err)
}
