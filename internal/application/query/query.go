// Package query contains read operations (CQRS - Queries).
// Каждый запрос выполняется в транзакции только для чтения, видящей один
// согласованный снимок. Кеширования нет: результат всегда отражает
// последнее закоммиченное состояние.
package query

import (
	"context"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// Projector собирает представления сущностей и их связей.
type Projector struct {
	uow enrollment.UnitOfWorkFactory
}

// NewProjector создаёт проектор над фабрикой единиц работы.
func NewProjector(uow enrollment.UnitOfWorkFactory) *Projector {
	return &Projector{uow: uow}
}

// view выполняет fn в снимке и приводит ошибки хранилища к ErrInternal.
func (p *Projector) view(ctx context.Context, domain, op string, fn func(uow enrollment.UnitOfWork) error) error {
	err := p.uow.Run(ctx, enrollment.ReadOnlySnapshot, fn)
	if err == nil || shared.IsDomain(err) {
		return err
	}
	return shared.Internal(domain, op, err)
}
