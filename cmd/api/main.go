// Package main - точка входа REST API Enrollment Hub.
//
// API принимает команды (запись на курс, прогресс, мягкое удаление, CRUD)
// и отдаёт проекции. Каждое изменение фиксируется одной транзакцией
// хранилища; события после коммита уходят в журнал и в Redis Stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/alem-hub/enrollment-hub/config"
	"github.com/alem-hub/enrollment-hub/internal/app"
	apihttp "github.com/alem-hub/enrollment-hub/internal/interface/http"
	"github.com/alem-hub/enrollment-hub/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := app.NewLogger(cfg)
	log.Info("starting Enrollment Hub API",
		logger.String("store", string(cfg.Store.Driver)),
		logger.String("address", cfg.HTTP.Addr()),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ХРАНИЛИЩЕ И СОБЫТИЯ
	// ─────────────────────────────────────────────────────────────────────────
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	deps := apihttp.NewDependencies(a.Store, a.Bus, a.AdmissionConfig(), log)
	deps.HealthChecker = a.Health

	server := apihttp.NewServer(apihttp.Config{
		Host:            cfg.HTTP.Host,
		Port:            cfg.HTTP.Port,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:  1 << 20,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		RequestTimeout:  cfg.HTTP.RequestTimeout,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		Version:         cfg.App.Version,
	}, deps)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	// Без внешней БД воркер не увидит данные процесса, поэтому аудит
	// in-memory хранилища выполняется здесь же.
	if cfg.Scheduler.Enabled && cfg.Store.Driver == config.StoreMemory {
		sched, err := a.NewScheduler()
		if err != nil {
			return err
		}
		if err := sched.Start(gctx); err != nil {
			return err
		}
		defer func() { _ = sched.Stop() }()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	snapshot := a.Bus.Metrics().Snapshot()
	log.Info("API stopped",
		logger.Int64("events_published", snapshot.TotalPublished),
		logger.Int64("audit_log_events", a.AuditLog.Handled()),
	)
	return nil
}
