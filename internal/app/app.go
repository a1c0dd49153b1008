// Package app wires configuration, logging, the entity store and the event
// pipeline together. Both binaries build on it.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alem-hub/enrollment-hub/config"
	"github.com/alem-hub/enrollment-hub/internal/application/command"
	"github.com/alem-hub/enrollment-hub/internal/application/eventhandler"
	"github.com/alem-hub/enrollment-hub/internal/application/query"
	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/messaging"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/persistence/postgres"
	redisstream "github.com/alem-hub/enrollment-hub/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/scheduler"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/scheduler/jobs"
	"github.com/alem-hub/enrollment-hub/internal/interface/http/handlers"
	"github.com/alem-hub/enrollment-hub/pkg/logger"
	"github.com/alem-hub/enrollment-hub/pkg/retry"
)

// App holds the long-lived components of a process.
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Store    enrollment.UnitOfWorkFactory
	Bus      *messaging.InMemoryEventBus
	Stream   *redisstream.EventStream
	AuditLog *eventhandler.AuditLogHandler
	Health   *handlers.CompositeHealthChecker

	closers []func()
}

// NewLogger builds the process logger from the observability settings.
func NewLogger(cfg *config.Config) *logger.Logger {
	format := cfg.Observability.LogFormat
	if cfg.IsDevelopment() && format == "" {
		format = "console"
	}
	return logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    format,
		AddCaller: true,
	}).With(
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)
}

// New opens the store and builds the event pipeline. On error everything
// opened so far is closed.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *App, err error) {
	a := &App{
		Config: cfg,
		Log:    log,
		Health: handlers.NewCompositeHealthChecker(cfg.App.Version, cfg.App.HealthCheckTimeout),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	a.Bus = messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 4,
		Logger:         log,
		EnableMetrics:  true,
	})
	a.closers = append(a.closers, func() { _ = a.Bus.Close() })

	a.AuditLog = eventhandler.NewAuditLogHandler(log)
	if err := a.AuditLog.Register(a.Bus); err != nil {
		return nil, fmt.Errorf("subscribe audit log: %w", err)
	}

	if err := a.openStream(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.Store.Driver {
	case config.StoreMemory:
		a.Log.Warn("using in-process store; data is lost on restart")
		a.Store = memory.NewStore()
		return nil

	case config.StorePostgres:
		db := a.Config.Database
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = db.URL
		pgCfg.MaxConns = int32(db.MaxOpenConns)
		pgCfg.MinConns = int32(db.MaxIdleConns)
		pgCfg.MaxConnLifetime = db.ConnMaxLifetime
		pgCfg.MaxConnIdleTime = db.ConnMaxIdleTime

		var conn *postgres.Connection
		err := retry.DatabaseRetrier().Do(ctx, func(ctx context.Context) error {
			c, err := postgres.NewConnection(ctx, pgCfg)
			if err != nil {
				a.Log.Warn("database not reachable yet", logger.Err(err))
				return retry.Retryable(err)
			}
			conn = c
			return nil
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		a.Health.AddCheck("database", func(ctx context.Context) (string, error) {
			h, err := conn.Health(ctx)
			if err != nil {
				return "", err
			}
			return h.String(), nil
		})

		if db.AutoMigrate {
			applied, err := postgres.NewMigrator(conn).Migrate(ctx)
			if err != nil {
				return err
			}
			a.Log.Info("schema up to date", logger.Int("applied", applied))
		}

		a.Store = postgres.NewUnitOfWorkFactory(conn)
		return nil

	default:
		return fmt.Errorf("unknown store driver %q", a.Config.Store.Driver)
	}
}

func (a *App) openStream(ctx context.Context) error {
	rc := a.Config.Redis
	if rc.Disabled {
		a.Log.Info("redis outcome stream disabled")
		return nil
	}

	client, err := redisstream.NewClient(ctx, redisstream.Config{
		URL:          rc.URL,
		Host:         rc.Host,
		Port:         rc.Port,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	})
	if err != nil {
		if a.Config.IsProduction() {
			return err
		}
		a.Log.Warn("redis unavailable, outcome stream off", logger.Err(err))
		return nil
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	a.Stream = redisstream.NewEventStream(client, redisstream.EventStreamConfig{
		Key:     rc.StreamKey,
		MaxLen:  rc.StreamMaxLen,
		Timeout: rc.WriteTimeout,
		Logger:  a.Log,
	})
	// The stream keeps publish order; plain async handlers would not.
	if err := a.Bus.SubscribeOrdered(a.Stream.Handler()); err != nil {
		return fmt.Errorf("subscribe outcome stream: %w", err)
	}
	a.Health.AddCheck("redis", handlers.NewPingCheck(a.Stream))

	a.Log.Info("publishing outcomes to redis stream", logger.String("stream", a.Stream.Key()))
	return nil
}

// AdmissionConfig maps the admission settings onto the command handler.
func (a *App) AdmissionConfig() command.EnrollStudentHandlerConfig {
	return command.EnrollStudentHandlerConfig{
		MaxAttempts:  a.Config.Admission.MaxAttempts,
		InitialDelay: a.Config.Admission.InitialDelay,
	}
}

// NewScheduler builds a scheduler with the invariant audit registered.
func (a *App) NewScheduler() (*scheduler.Scheduler, error) {
	s := scheduler.New(scheduler.Config{
		Logger:     a.Log,
		Location:   a.Config.App.Location,
		JobTimeout: a.Config.Scheduler.JobTimeout,
	})

	job := jobs.NewAuditInvariantsJob(query.NewProjector(a.Store), a.Bus, a.Log)
	spec := strings.TrimSpace(a.Config.Scheduler.AuditSchedule)
	if err := s.Register(job, spec); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.Log.Sync()
}
