package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/application/query"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

type stubAuditor struct {
	report *query.AuditReport
	err    error
}

func (s stubAuditor) AuditInvariants(context.Context) (*query.AuditReport, error) {
	return s.report, s.err
}

type recorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recorder) Publish(e shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func TestAuditInvariantsJob_PublishesViolations(t *testing.T) {
	rec := &recorder{}
	report := &query.AuditReport{Violations: []query.Violation{
		{Rule: query.RuleCapacity, Entity: "course", EntityID: 4, Detail: "3 active of 2"},
		{Rule: query.RuleProgressRange, Entity: "enrollment", EntityID: 9, Detail: "progress 140"},
	}}
	job := NewAuditInvariantsJob(stubAuditor{report: report}, rec, nil)

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, rec.events, 2)

	first, ok := rec.events[0].(shared.InvariantViolatedEvent)
	require.True(t, ok)
	assert.Equal(t, query.RuleCapacity, first.Rule)
	assert.Equal(t, "4", first.AggregateID())
	assert.Same(t, report, job.LastReport())
}

func TestAuditInvariantsJob_CleanReport(t *testing.T) {
	rec := &recorder{}
	job := NewAuditInvariantsJob(stubAuditor{report: &query.AuditReport{}}, rec, nil)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, rec.events)
	assert.Equal(t, AuditInvariantsJobName, job.Name())
}

func TestAuditInvariantsJob_ReadFailure(t *testing.T) {
	boom := errors.New("snapshot failed")
	job := NewAuditInvariantsJob(stubAuditor{err: boom}, nil, nil)

	assert.ErrorIs(t, job.Run(context.Background()), boom)
	assert.Nil(t, job.LastReport())
}
