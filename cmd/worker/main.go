// Package main - точка входа фоновых процессов (Worker) Enrollment Hub.
//
// Worker по расписанию сверяет инварианты хранилища: не более одной живой
// записи на пару студент/курс, лимит мест, соответствие completed и progress,
// ссылки записей на живые сущности. Каждое нарушение публикуется как
// событие и попадает в журнал и в Redis Stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/alem-hub/enrollment-hub/config"
	"github.com/alem-hub/enrollment-hub/internal/app"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/scheduler"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/scheduler/jobs"
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
	// 1. КОНФИГУРАЦИЯ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := app.NewLogger(cfg).With(logger.Component("worker"))

	if !cfg.Scheduler.Enabled {
		log.Info("scheduler disabled, nothing to do")
		return nil
	}
	// In-memory хранилище живёт внутри процесса API, воркеру сверять нечего.
	if cfg.Store.Driver != config.StorePostgres {
		return fmt.Errorf("worker requires STORE_DRIVER=postgres, got %q", cfg.Store.Driver)
	}

	log.Info("starting Enrollment Hub worker",
		logger.String("audit_schedule", cfg.Scheduler.AuditSchedule),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ХРАНИЛИЩЕ И СОБЫТИЯ
	// ─────────────────────────────────────────────────────────────────────────
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	sched, err := a.NewScheduler()
	if err != nil {
		return err
	}

	sched.OnJobComplete(func(result scheduler.JobResult) {
		if !result.Success {
			log.Warn("job failed",
				logger.String("job", result.JobName),
				logger.String("error", result.Error),
			)
		}
	})

	// Первая сверка сразу при старте, не дожидаясь расписания.
	if _, err := sched.RunNow(ctx, jobs.AuditInvariantsJobName); err != nil {
		log.Warn("initial audit failed", logger.Err(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return sched.Stop()
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ОЖИДАНИЕ СИГНАЛА
	// ─────────────────────────────────────────────────────────────────────────
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("worker stopped",
		logger.Int("history", len(sched.History(0))),
		logger.Int64("violations_logged", a.AuditLog.Violations()),
	)
	return nil
}
