// Package jobs contains implementations of scheduled jobs for Enrollment Hub.
package jobs

import (
	"context"
	"sync/atomic"

	"github.com/alem-hub/enrollment-hub/internal/application/query"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUDIT INVARIANTS JOB
// ══════════════════════════════════════════════════════════════════════════════

// AuditInvariantsJobName is the registration name of the audit job.
const AuditInvariantsJobName = "audit_invariants"

// Auditor produces an invariant report over one consistent snapshot.
type Auditor interface {
	AuditInvariants(ctx context.Context) (*query.AuditReport, error)
}

// AuditInvariantsJob re-checks stored data against the aggregate rules and
// publishes one InvariantViolatedEvent per finding. Findings do not fail
// the job; only a failed read does.
type AuditInvariantsJob struct {
	auditor   Auditor
	publisher shared.EventPublisher
	logger    *logger.Logger

	lastReport atomic.Pointer[query.AuditReport]
}

// NewAuditInvariantsJob creates the job.
func NewAuditInvariantsJob(auditor Auditor, publisher shared.EventPublisher, log *logger.Logger) *AuditInvariantsJob {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuditInvariantsJob{
		auditor:   auditor,
		publisher: publisher,
		logger:    log.With(logger.String("job", AuditInvariantsJobName)),
	}
}

// Name implements scheduler.Job.
func (j *AuditInvariantsJob) Name() string { return AuditInvariantsJobName }

// Description implements scheduler.Job.
func (j *AuditInvariantsJob) Description() string {
	return "Checks progress, completion, uniqueness, capacity and date rules over stored data"
}

// Run implements scheduler.Job.
func (j *AuditInvariantsJob) Run(ctx context.Context) error {
	report, err := j.auditor.AuditInvariants(ctx)
	if err != nil {
		return err
	}
	j.lastReport.Store(report)

	for _, v := range report.Violations {
		if err := j.publisher.Publish(shared.NewInvariantViolatedEvent(v.Rule, v.Entity, v.EntityID, v.Detail)); err != nil {
			j.logger.Warn("failed to publish violation", logger.String("rule", v.Rule), logger.Err(err))
		}
	}

	if report.OK() {
		j.logger.Info("audit clean",
			logger.Int("students", report.Students),
			logger.Int("courses", report.Courses),
			logger.Int("enrollments", report.Enrollments),
		)
	} else {
		j.logger.Warn("audit found violations", logger.Int("violations", len(report.Violations)))
	}
	return nil
}

// LastReport returns the report of the latest successful run, or nil.
func (j *AuditInvariantsJob) LastReport() *query.AuditReport {
	return j.lastReport.Load()
}
