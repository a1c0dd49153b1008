package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

func TestAuditInvariants_Clean(t *testing.T) {
	s, p := newSeed(t)
	a := s.student("Alice", "Archer")
	c := s.course("Operating Systems", start, 2)
	s.enroll(a, c, 100)

	report, err := p.AuditInvariants(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 1, report.Students)
	assert.Equal(t, 1, report.Courses)
	assert.Equal(t, 1, report.Enrollments)
}

func TestAuditInvariants_DetectsCorruption(t *testing.T) {
	s, p := newSeed(t)
	a := s.student("Alice", "Archer")
	b := s.student("Bob", "Baker")
	c := s.course("Operating Systems", start, 1)
	e := s.enroll(a, c, 0)
	s.enroll(b, c, 0)

	// Курс переполнен записью в обход приёма, прогресс изменён без
	// пересчёта Completed.
	s.write(func(ctx context.Context, uow enrollment.UnitOfWork) error {
		en, err := uow.Enrollments().Get(ctx, e)
		if err != nil {
			return err
		}
		en.Progress = shared.Progress(100)
		en.Completed = false
		return uow.Enrollments().UpdateProgress(ctx, en)
	})

	report, err := p.AuditInvariants(context.Background())
	require.NoError(t, err)
	require.False(t, report.OK())

	rules := make(map[string]int64)
	for _, v := range report.Violations {
		rules[v.Rule] = v.EntityID
	}
	assert.Equal(t, e, rules[RuleCompletedMatchesProgress])
	assert.Equal(t, c, rules[RuleCapacity])
}
